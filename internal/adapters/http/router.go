package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jlozanoz/normateca/internal/core/domain"
	"github.com/jlozanoz/normateca/internal/core/ports"
	"github.com/jlozanoz/normateca/internal/observability/metrics"
)

// RouterConfig tunes the HTTP surface; zero values disable the optional
// gates (rate limit, backpressure, auth).
type RouterConfig struct {
	Service          string
	APIKey           string
	DefaultTopK      int
	RetrievalConfig  domain.RetrievalConfig
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	MaxInFlightWait  time.Duration
}

type Router struct {
	retriever ports.FragmentRetriever
	answerer  ports.AnswerService
	inventory ports.InventoryService
	admitter  ports.FragmentAdmitter
	tasks     ports.TaskReader

	cfg     RouterConfig
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	retriever ports.FragmentRetriever,
	answerer ports.AnswerService,
	inventory ports.InventoryService,
	admitter ports.FragmentAdmitter,
	tasks ports.TaskReader,
	cfg RouterConfig,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	if cfg.Service == "" {
		cfg.Service = "api"
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}
	return &Router{
		retriever: retriever,
		answerer:  answerer,
		inventory: inventory,
		admitter:  admitter,
		tasks:     tasks,
		cfg:       cfg,
		metrics:   serverMetrics,
	}
}

func (rt *Router) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("/v1/retrieve", rt.retrieveFragments)
	mux.HandleFunc("/v1/answer", rt.answerQuestion)
	mux.HandleFunc("/v1/inventory", rt.getInventory)
	mux.HandleFunc("/v1/sources/", rt.admitFragments)
	mux.HandleFunc("/v1/tasks/", rt.getTask)

	validator, err := newRequestValidator()
	if err != nil {
		return nil, err
	}

	var handler http.Handler = validator.middleware(mux)
	if rt.cfg.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.MaxInFlightWait)
	}
	if rt.cfg.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.cfg.Service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler, nil
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) retrieveFragments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question            string   `json:"question"`
		TopK                int      `json:"top_k"`
		SimilarityThreshold *float64 `json:"similarity_threshold"`
		SemanticWeight      *float64 `json:"semantic_weight"`
		LexicalWeight       *float64 `json:"lexical_weight"`
		DiversityThreshold  *float64 `json:"diversity_threshold"`
		MaxPerSource        *int     `json:"max_per_source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	cfg := rt.cfg.RetrievalConfig
	if req.SimilarityThreshold != nil {
		cfg.SimilarityThreshold = *req.SimilarityThreshold
	}
	if req.SemanticWeight != nil {
		cfg.SemanticWeight = *req.SemanticWeight
	}
	if req.LexicalWeight != nil {
		cfg.LexicalWeight = *req.LexicalWeight
	}
	if req.DiversityThreshold != nil {
		cfg.DiversityThreshold = *req.DiversityThreshold
	}
	if req.MaxPerSource != nil {
		cfg.MaxPerSource = *req.MaxPerSource
	}

	topK := req.TopK
	if topK <= 0 {
		topK = rt.cfg.DefaultTopK
	}

	start := time.Now()
	result, err := rt.retriever.Retrieve(r.Context(), req.Question, topK, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.recordRetrieval("/v1/retrieve", result, time.Since(start))

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) answerQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(rt.cfg.Service, "/v1/answer", len(answer.Sources), answer.Degraded, time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) getInventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	inventory, err := rt.inventory.ListInventory(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inventory)
}

func (rt *Router) admitFragments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if rt.cfg.APIKey != "" && !isAuthorizedBearerHeader(r.Header.Get("Authorization"), rt.cfg.APIKey) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	source, ok := sourceFromPath(r.URL.Path)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source document name is required"})
		return
	}

	var req struct {
		Fragments []domain.FragmentInput `json:"fragments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	task, err := rt.admitter.Admit(r.Context(), source, req.Fragments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, task)
}

func (rt *Router) getTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/tasks/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "task id is required"})
		return
	}

	task, err := rt.tasks.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (rt *Router) recordRetrieval(endpoint string, result *domain.RankedResult, duration time.Duration) {
	if rt.metrics == nil || result == nil {
		return
	}
	rt.metrics.RecordRetrieval(rt.cfg.Service, endpoint, len(result.Candidates), result.Degraded, duration)
	for strategy, count := range result.StrategyCandidates {
		rt.metrics.RecordStrategyCandidates(rt.cfg.Service, string(strategy), count)
	}
}

// sourceFromPath extracts {source} from /v1/sources/{source}/fragments.
func sourceFromPath(path string) (string, bool) {
	rest := strings.TrimPrefix(path, "/v1/sources/")
	source, tail, found := strings.Cut(rest, "/")
	if !found || tail != "fragments" || source == "" {
		return "", false
	}
	return source, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
