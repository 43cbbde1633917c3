package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ragline-labs/ragline-core/internal/adapters/driven/auth"
	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven/mocks"
	"github.com/ragline-labs/ragline-core/internal/core/services"
	"github.com/ragline-labs/ragline-core/internal/runtime"
)

const testAPIKey = "test-api-key"

type serverFixture struct {
	server     *Server
	generation *mocks.MockGenerationService
	taskQueue  *mocks.MockTaskQueue
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	embedding := mocks.NewMockEmbeddingService()
	generation := mocks.NewMockGenerationService()
	aiServices := runtime.NewServices()
	aiServices.SetEmbeddingService(embedding)
	aiServices.SetGenerationService(generation)

	documentStore := mocks.NewMockDocumentStore()
	chunkStore := mocks.NewMockChunkStore()
	qaStore := mocks.NewMockQAStore()
	taskQueue := mocks.NewMockTaskQueue()

	ingestService, err := services.NewIngestService(services.IngestServiceConfig{
		DocumentStore: documentStore,
		ChunkStore:    chunkStore,
		Services:      aiServices,
	})
	if err != nil {
		t.Fatalf("NewIngestService failed: %v", err)
	}

	documentService := services.NewDocumentService(services.DocumentServiceConfig{
		DocumentStore: documentStore,
		ChunkStore:    chunkStore,
		Ingest:        ingestService,
	})

	qaService := services.NewQAService(services.QAServiceConfig{
		ChunkStore: chunkStore,
		QAStore:    qaStore,
		Services:   aiServices,
	})

	authService, err := services.NewAuthService(services.AuthServiceConfig{
		Adapter:     auth.NewAdapterWithCost("test-secret", bcrypt.MinCost),
		AdminAPIKey: testAPIKey,
	})
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}

	server := NewServer(DefaultConfig(), authService, documentService, qaService, taskQueue, nil, nil)
	return &serverFixture{
		server:     server,
		generation: generation,
		taskQueue:  taskQueue,
	}
}

func (f *serverFixture) token(t *testing.T) string {
	t.Helper()

	body := fmt.Sprintf(`{"api_key": %q}`, testAPIKey)
	rec := f.do(t, "POST", "/api/v1/auth/token", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("token request failed with status %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse token response: %v", err)
	}
	return resp.Token
}

func (f *serverFixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	f := newServerFixture(t)

	for _, path := range []string{"/health", "/ready", "/version"} {
		rec := f.do(t, "GET", path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestIssueToken_WrongKey(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, "POST", "/api/v1/auth/token", `{"api_key": "wrong"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, "GET", "/api/v1/documents", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = f.do(t, "GET", "/api/v1/documents", "", "garbage-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestCreateAndGetDocument(t *testing.T) {
	f := newServerFixture(t)
	token := f.token(t)

	rec := f.do(t, "POST", "/api/v1/documents",
		`{"title": "Test", "content": "some document content"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var doc domain.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}

	rec = f.do(t, "GET", "/api/v1/documents/"+doc.ID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = f.do(t, "GET", "/api/v1/documents", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to parse list: %v", err)
	}
	if list.Count != 1 {
		t.Errorf("expected 1 document, got %d", list.Count)
	}
}

func TestCreateDocument_Invalid(t *testing.T) {
	f := newServerFixture(t)
	token := f.token(t)

	rec := f.do(t, "POST", "/api/v1/documents", `{"title": "", "content": ""}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	f := newServerFixture(t)
	token := f.token(t)

	rec := f.do(t, "GET", "/api/v1/documents/missing", "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAsk_ReturnsRecordWithTrace(t *testing.T) {
	f := newServerFixture(t)
	token := f.token(t)
	f.generation.SetAnswer("the answer")

	rec := f.do(t, "POST", "/api/v1/documents",
		`{"title": "Test", "content": "the sky is blue"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("document creation failed: %d", rec.Code)
	}

	rec = f.do(t, "POST", "/api/v1/qa/ask", `{"question": "what color is the sky?"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var record domain.QARecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("failed to parse record: %v", err)
	}
	if record.Answer != "the answer" {
		t.Errorf("unexpected answer: %q", record.Answer)
	}
	if record.Trace == nil || len(record.Trace.Nodes) == 0 {
		t.Error("expected a trace graph on the record")
	}
}

func TestAsk_Stream(t *testing.T) {
	f := newServerFixture(t)
	token := f.token(t)
	f.generation.SetAnswer("two words")

	rec := f.do(t, "POST", "/api/v1/qa/ask",
		`{"question": "anything?", "stream": true}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("expected NDJSON content type, got %s", ct)
	}

	var events []domain.StreamEvent
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev domain.StreamEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("failed to parse event line %q: %v", line, err)
		}
		events = append(events, ev)
	}

	if len(events) != 3 {
		t.Fatalf("expected 1 trace + 2 token events, got %d", len(events))
	}
	if events[0].Type != domain.StreamEventTrace {
		t.Errorf("expected trace event first, got %s", events[0].Type)
	}
	if events[1].Type != domain.StreamEventToken || events[1].Data != "two " {
		t.Errorf("unexpected first token event: %+v", events[1])
	}
	if events[2].Data != "words " {
		t.Errorf("unexpected second token event: %+v", events[2])
	}
}

func TestAsk_GenerationFailure(t *testing.T) {
	f := newServerFixture(t)
	token := f.token(t)
	f.generation.SetFailNext(true)

	rec := f.do(t, "POST", "/api/v1/qa/ask", `{"question": "anything?"}`, token)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	f := newServerFixture(t)
	token := f.token(t)

	for i := 0; i < 2; i++ {
		rec := f.do(t, "POST", "/api/v1/qa/ask", `{"question": "anything?"}`, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("ask failed: %d", rec.Code)
		}
	}

	rec := f.do(t, "GET", "/api/v1/qa/history?limit=1", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to parse history: %v", err)
	}
	if list.Count != 1 {
		t.Errorf("expected 1 record with limit=1, got %d", list.Count)
	}
}

func TestTaskStats(t *testing.T) {
	f := newServerFixture(t)
	token := f.token(t)

	rec := f.do(t, "GET", "/api/v1/tasks/stats", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	f := newServerFixture(t)
	token := f.token(t)

	rec := f.do(t, "POST", "/api/v1/documents",
		`{"title": "Test", "content": "content"}`, token)
	var doc domain.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}

	rec = f.do(t, "DELETE", "/api/v1/documents/"+doc.ID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = f.do(t, "GET", "/api/v1/documents/"+doc.ID, "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}
