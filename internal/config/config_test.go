package config

import "testing"

func TestLoadIncludesRetrievalDefaults(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "")
	t.Setenv("SIMILARITY_THRESHOLD", "")
	t.Setenv("SEMANTIC_WEIGHT", "")
	t.Setenv("LEXICAL_WEIGHT", "")
	t.Setenv("DIVERSITY_THRESHOLD", "")
	t.Setenv("MAX_PER_SOURCE", "")

	cfg := Load()
	if cfg.RetrievalTopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.RetrievalTopK)
	}
	if cfg.SimilarityThreshold != 0.3 {
		t.Fatalf("expected default similarity threshold 0.3, got %v", cfg.SimilarityThreshold)
	}
	if cfg.SemanticWeight != 0.6 {
		t.Fatalf("expected default semantic weight 0.6, got %v", cfg.SemanticWeight)
	}
	if cfg.LexicalWeight != 0.4 {
		t.Fatalf("expected default lexical weight 0.4, got %v", cfg.LexicalWeight)
	}
	if cfg.DiversityThreshold != 0.85 {
		t.Fatalf("expected default diversity threshold 0.85, got %v", cfg.DiversityThreshold)
	}
	if cfg.MaxPerSource != 3 {
		t.Fatalf("expected default max per source 3, got %d", cfg.MaxPerSource)
	}
}

func TestLoadParsesRetrievalOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "10")
	t.Setenv("SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("SEMANTIC_WEIGHT", "0.7")
	t.Setenv("STRATEGY_TIMEOUT_SECONDS", "3")
	t.Setenv("API_RATE_LIMIT_RPS", "25.5")

	cfg := Load()
	if cfg.RetrievalTopK != 10 {
		t.Fatalf("expected top k 10, got %d", cfg.RetrievalTopK)
	}
	if cfg.SimilarityThreshold != 0.5 {
		t.Fatalf("expected similarity threshold 0.5, got %v", cfg.SimilarityThreshold)
	}
	if cfg.SemanticWeight != 0.7 {
		t.Fatalf("expected semantic weight 0.7, got %v", cfg.SemanticWeight)
	}
	if cfg.StrategyTimeoutSeconds != 3 {
		t.Fatalf("expected strategy timeout 3, got %d", cfg.StrategyTimeoutSeconds)
	}
	if cfg.APIRateLimitRPS != 25.5 {
		t.Fatalf("expected rate limit 25.5, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "many")
	t.Setenv("SIMILARITY_THRESHOLD", "high")

	cfg := Load()
	if cfg.RetrievalTopK != 5 {
		t.Fatalf("expected fallback top k 5, got %d", cfg.RetrievalTopK)
	}
	if cfg.SimilarityThreshold != 0.3 {
		t.Fatalf("expected fallback similarity threshold 0.3, got %v", cfg.SimilarityThreshold)
	}
}
