package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/stream"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// CreateDocumentRequest is the body for document creation
type CreateDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AskRequest is the body for a QA run
type AskRequest struct {
	Question string `json:"question"`

	// Stream switches the response to newline-delimited JSON events
	Stream bool `json:"stream"`
}

// ListResponse wraps a paginated collection
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and queue connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backend dependency is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	if s.queue != nil {
		if err := s.queue.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "queue unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleIssueToken godoc
// @Summary      Issue access token
// @Description  Exchange the admin API key for a JWT access token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.TokenRequest  true  "API key"
// @Success      200      {object}  domain.TokenResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid API key"
// @Router       /auth/token [post]
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.IssueToken(r.Context(), req.APIKey)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid API key")
		} else {
			writeError(w, http.StatusInternalServerError, "token issuance failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Document endpoints

// handleCreateDocument godoc
// @Summary      Create document
// @Description  Store a document and schedule it for chunking and embedding
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        request  body      CreateDocumentRequest  true  "Document"
// @Success      201      {object}  domain.Document
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Router       /documents [post]
// @Security     BearerAuth
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := s.documentService.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "failed to create document")
		}
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// handleListDocuments godoc
// @Summary      List documents
// @Tags         Documents
// @Produce      json
// @Param        limit   query     int  false  "Page size"     default(20)
// @Param        offset  query     int  false  "Page offset"   default(0)
// @Success      200     {object}  ListResponse
// @Router       /documents [get]
// @Security     BearerAuth
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	docs, err := s.documentService.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: docs, Count: len(docs)})
}

// handleGetDocument godoc
// @Summary      Get document
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  domain.Document
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id} [get]
// @Security     BearerAuth
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to get document")
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleGetDocumentChunks godoc
// @Summary      Get document with chunks
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  domain.DocumentWithChunks
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id}/chunks [get]
// @Security     BearerAuth
func (s *Server) handleGetDocumentChunks(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentService.GetWithChunks(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to get document chunks")
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocument godoc
// @Summary      Delete document
// @Description  Removes a document and all of its chunks
// @Tags         Documents
// @Param        id   path  string  true  "Document ID"
// @Success      204  "Deleted"
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id} [delete]
// @Security     BearerAuth
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	err := s.documentService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to delete document")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QA endpoints

// handleAsk godoc
// @Summary      Ask a question
// @Description  Runs the retrieve and generate pipeline. With stream=true the
// @Description  response is newline-delimited JSON: one trace event followed
// @Description  by one event per answer token.
// @Tags         QA
// @Accept       json
// @Produce      json
// @Param        request  body      AskRequest  true  "Question"
// @Success      200      {object}  domain.QARecord
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      502      {object}  ErrorResponse  "Retrieval or generation failed"
// @Router       /qa/ask [post]
// @Security     BearerAuth
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.qaService.Ask(r.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrRetrievalFailed), errors.Is(err, domain.ErrGenerationFailed):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "question answering failed")
		}
		return
	}

	if !req.Stream {
		writeJSON(w, http.StatusOK, record)
		return
	}

	s.streamResult(w, r, record)
}

// streamResult replays a completed run as NDJSON events
func (s *Server) streamResult(w http.ResponseWriter, r *http.Request, record *domain.QARecord) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	result := &domain.QAResult{
		Question: record.Question,
		Answer:   record.Answer,
		Trace:    record.Trace,
	}
	for ev := range stream.Emit(r.Context(), result) {
		if err := enc.Encode(ev); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// handleHistory godoc
// @Summary      QA history
// @Description  Returns past QA runs, newest first, including trace graphs
// @Tags         QA
// @Produce      json
// @Param        limit   query     int  false  "Page size"     default(20)
// @Param        offset  query     int  false  "Page offset"   default(0)
// @Success      200     {object}  ListResponse
// @Router       /qa/history [get]
// @Security     BearerAuth
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	records, err := s.qaService.History(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if records == nil {
		records = []*domain.QARecord{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: records, Count: len(records)})
}

// Task endpoints

// handleTaskStats godoc
// @Summary      Queue statistics
// @Tags         Tasks
// @Produce      json
// @Success      200  {object}  driven.QueueStats
// @Failure      503  {object}  ErrorResponse  "No task queue configured"
// @Router       /tasks/stats [get]
// @Security     BearerAuth
func (s *Server) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	if s.taskQueue == nil {
		writeError(w, http.StatusServiceUnavailable, "no task queue configured")
		return
	}

	stats, err := s.taskQueue.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get queue stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Helpers

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
