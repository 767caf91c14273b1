package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jlozanoz/normateca/internal/core/domain"
)

type httpRetrieverFake struct {
	result *domain.RankedResult
	err    error
	topK   int
	cfg    domain.RetrievalConfig
}

func (f *httpRetrieverFake) Retrieve(_ context.Context, _ string, topK int, cfg domain.RetrievalConfig) (*domain.RankedResult, error) {
	f.topK = topK
	f.cfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type httpAnswererFake struct {
	answer *domain.Answer
	err    error
}

func (f *httpAnswererFake) Answer(context.Context, string, int) (*domain.Answer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type httpInventoryFake struct {
	inventory *domain.Inventory
	err       error
}

func (f *httpInventoryFake) ListInventory(context.Context) (*domain.Inventory, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.inventory, nil
}

type httpAdmitterFake struct {
	source string
	inputs []domain.FragmentInput
	task   *domain.IndexTask
	err    error
}

func (f *httpAdmitterFake) Admit(_ context.Context, source string, inputs []domain.FragmentInput) (*domain.IndexTask, error) {
	f.source = source
	f.inputs = inputs
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

type httpTaskReaderFake struct {
	task *domain.IndexTask
	err  error
}

func (f *httpTaskReaderFake) GetTask(context.Context, string) (*domain.IndexTask, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

type routerFakes struct {
	retriever *httpRetrieverFake
	answerer  *httpAnswererFake
	inventory *httpInventoryFake
	admitter  *httpAdmitterFake
	tasks     *httpTaskReaderFake
}

func newTestHandler(t *testing.T, cfg RouterConfig) (http.Handler, *routerFakes) {
	t.Helper()
	fakes := &routerFakes{
		retriever: &httpRetrieverFake{result: &domain.RankedResult{Candidates: []domain.ScoredCandidate{}}},
		answerer:  &httpAnswererFake{answer: &domain.Answer{Text: "respuesta"}},
		inventory: &httpInventoryFake{inventory: &domain.Inventory{TotalDocuments: 1}},
		admitter:  &httpAdmitterFake{task: &domain.IndexTask{ID: "t1", Status: domain.TaskPending}},
		tasks:     &httpTaskReaderFake{task: &domain.IndexTask{ID: "t1", Status: domain.TaskReady}},
	}
	router := NewRouter(fakes.retriever, fakes.answerer, fakes.inventory, fakes.admitter, fakes.tasks, cfg, nil)
	handler, err := router.Handler()
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	return handler, fakes
}

func TestHealthzSetsRequestID(t *testing.T) {
	handler, _ := newTestHandler(t, RouterConfig{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRetrieveAppliesOverridesAndTopK(t *testing.T) {
	handler, fakes := newTestHandler(t, RouterConfig{
		DefaultTopK: 5,
		RetrievalConfig: domain.RetrievalConfig{
			SimilarityThreshold: 0.3,
			SemanticWeight:      0.6,
			LexicalWeight:       0.4,
		},
	})
	fakes.retriever.result = &domain.RankedResult{Candidates: []domain.ScoredCandidate{
		{Fragment: domain.Fragment{Key: "a:0", SourceDocument: "a.pdf"}, Strategy: domain.StrategySemantic, WeightedScore: 0.9},
	}}

	body := `{"question":"¿qué dice el decreto?","top_k":3,"similarity_threshold":0.5,"max_per_source":1}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fakes.retriever.topK != 3 {
		t.Fatalf("expected topK 3, got %d", fakes.retriever.topK)
	}
	if fakes.retriever.cfg.SimilarityThreshold != 0.5 {
		t.Fatalf("expected threshold override, got %v", fakes.retriever.cfg.SimilarityThreshold)
	}
	if fakes.retriever.cfg.MaxPerSource != 1 {
		t.Fatalf("expected max-per-source override, got %d", fakes.retriever.cfg.MaxPerSource)
	}
	if fakes.retriever.cfg.SemanticWeight != 0.6 {
		t.Fatalf("expected untouched semantic weight, got %v", fakes.retriever.cfg.SemanticWeight)
	}

	var result domain.RankedResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].Fragment.Key != "a:0" {
		t.Fatalf("unexpected candidates %+v", result.Candidates)
	}
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	handler, fakes := newTestHandler(t, RouterConfig{DefaultTopK: 7})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(`{"question":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fakes.retriever.topK != 7 {
		t.Fatalf("expected default topK, got %d", fakes.retriever.topK)
	}
}

func TestRetrieveRejectsMissingQuestion(t *testing.T) {
	handler, _ := newTestHandler(t, RouterConfig{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(`{"top_k":3}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRetrieveMethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t, RouterConfig{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/retrieve", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestRetrieveMapsStoreUnavailableTo503(t *testing.T) {
	handler, fakes := newTestHandler(t, RouterConfig{})
	fakes.retriever.err = domain.WrapError(domain.ErrStoreUnavailable, "retrieve", errors.New("db down"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(`{"question":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestAnswerReturnsAnswer(t *testing.T) {
	handler, fakes := newTestHandler(t, RouterConfig{})
	fakes.answerer.answer = &domain.Answer{Text: "respuesta fundamentada", Degraded: true}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(`{"question":"¿qué dice?"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var answer domain.Answer
	if err := json.NewDecoder(rec.Body).Decode(&answer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if answer.Text != "respuesta fundamentada" || !answer.Degraded {
		t.Fatalf("unexpected answer %+v", answer)
	}
}

func TestInventoryReturnsSummaries(t *testing.T) {
	handler, fakes := newTestHandler(t, RouterConfig{})
	fakes.inventory.inventory = &domain.Inventory{
		TotalDocuments: 2,
		TotalFragments: 9,
		Sources: []domain.SourceSummary{
			{SourceDocument: "a.pdf", FragmentCount: 4},
			{SourceDocument: "b.pdf", FragmentCount: 5},
		},
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/inventory", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var inventory domain.Inventory
	if err := json.NewDecoder(rec.Body).Decode(&inventory); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if inventory.TotalFragments != 9 || len(inventory.Sources) != 2 {
		t.Fatalf("unexpected inventory %+v", inventory)
	}
}

func TestAdmitAcceptsFragments(t *testing.T) {
	handler, fakes := newTestHandler(t, RouterConfig{})

	body := `{"fragments":[{"text":"artículo primero","page":1,"labels":["decreto"]}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sources/Decreto%20123.pdf/fragments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if fakes.admitter.source != "Decreto 123.pdf" {
		t.Fatalf("unexpected source %q", fakes.admitter.source)
	}
	if len(fakes.admitter.inputs) != 1 || fakes.admitter.inputs[0].Text != "artículo primero" {
		t.Fatalf("unexpected inputs %+v", fakes.admitter.inputs)
	}
	var task domain.IndexTask
	if err := json.NewDecoder(rec.Body).Decode(&task); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if task.ID != "t1" || task.Status != domain.TaskPending {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestAdmitRequiresBearerToken(t *testing.T) {
	handler, _ := newTestHandler(t, RouterConfig{APIKey: "secreto"})

	body := `{"fragments":[{"text":"uno"}]}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sources/doc.pdf/fragments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/sources/doc.pdf/fragments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer otro")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/sources/doc.pdf/fragments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer secreto")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdmitRejectsEmptyFragmentText(t *testing.T) {
	handler, _ := newTestHandler(t, RouterConfig{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sources/doc.pdf/fragments", strings.NewReader(`{"fragments":[{"page":1}]}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for schema violation, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetTaskNotFound(t *testing.T) {
	handler, fakes := newTestHandler(t, RouterConfig{})
	fakes.tasks.err = domain.WrapError(domain.ErrTaskNotFound, "get task", errors.New("id=nope"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tasks/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetTaskReturnsTask(t *testing.T) {
	handler, _ := newTestHandler(t, RouterConfig{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tasks/t1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var task domain.IndexTask
	if err := json.NewDecoder(rec.Body).Decode(&task); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if task.ID != "t1" || task.Status != domain.TaskReady {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestSourceFromPath(t *testing.T) {
	cases := []struct {
		path   string
		source string
		ok     bool
	}{
		{"/v1/sources/doc.pdf/fragments", "doc.pdf", true},
		{"/v1/sources/doc.pdf/other", "", false},
		{"/v1/sources//fragments", "", false},
		{"/v1/sources/doc.pdf", "", false},
	}
	for _, tc := range cases {
		source, ok := sourceFromPath(tc.path)
		if source != tc.source || ok != tc.ok {
			t.Fatalf("sourceFromPath(%q) = %q, %v", tc.path, source, ok)
		}
	}
}
