package main

import (
	"fmt"
	"strings"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

func formatRankedResult(question string, result *domain.RankedResult) string {
	if result.Inventory != nil {
		return formatInventory(result.Inventory)
	}
	if len(result.Candidates) == 0 {
		return fmt.Sprintf("No fragments found for: %s", question)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Fragments for: %s\n\n", question)
	if result.Degraded {
		degraded := make([]string, 0, len(result.DegradedStrategies))
		for _, s := range result.DegradedStrategies {
			degraded = append(degraded, string(s))
		}
		fmt.Fprintf(&b, "> Partial result: degraded strategies: %s\n\n", strings.Join(degraded, ", "))
	}
	for i, candidate := range result.Candidates {
		fragment := candidate.Fragment
		fmt.Fprintf(&b, "## %d. %s (chunk %d", i+1, fragment.SourceDocument, fragment.ChunkIndex)
		if fragment.Page > 0 {
			fmt.Fprintf(&b, ", page %d", fragment.Page)
		}
		fmt.Fprintf(&b, ")\n")
		fmt.Fprintf(&b, "- strategy: %s, score: %.3f\n", candidate.Strategy, candidate.WeightedScore)
		if len(fragment.Labels) > 0 {
			fmt.Fprintf(&b, "- labels: %s\n", strings.Join(fragment.Labels, ", "))
		}
		fmt.Fprintf(&b, "\n%s\n\n", fragment.Text)
	}
	return b.String()
}

func formatAnswer(answer *domain.Answer) string {
	var b strings.Builder
	b.WriteString(answer.Text)
	if len(answer.Sources) > 0 {
		b.WriteString("\n\n## Sources\n")
		for i, source := range answer.Sources {
			fmt.Fprintf(&b, "%d. %s (chunk %d, score %.3f)\n",
				i+1, source.Fragment.SourceDocument, source.Fragment.ChunkIndex, source.WeightedScore)
		}
	}
	if answer.Degraded {
		b.WriteString("\n> Partial result: one or more retrieval strategies were unavailable.\n")
	}
	return b.String()
}

func formatInventory(inv *domain.Inventory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Indexed documents: %d (%d fragments)\n\n", inv.TotalDocuments, inv.TotalFragments)
	for _, source := range inv.Sources {
		fmt.Fprintf(&b, "- %s: %d fragments", source.SourceDocument, source.FragmentCount)
		if len(source.Labels) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(source.Labels, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
