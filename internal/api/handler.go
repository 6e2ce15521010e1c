package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lunabriana98-creator/luna-app/internal/coach"
	"github.com/lunabriana98-creator/luna-app/internal/database"
	"github.com/lunabriana98-creator/luna-app/internal/models"
	"github.com/lunabriana98-creator/luna-app/pkg/metrics"
	"github.com/lunabriana98-creator/luna-app/pkg/tracing"
)

// maxTextSize caps a single rewrite request body to keep the regex engine
// away from pathological inputs.
const maxTextSize = 1 << 20 // 1 MiB

// Handler handles HTTP requests
type Handler struct {
	db          *database.DB
	coach       *coach.Coach
	queueClient interface {
		EnqueueRewriteText(ctx context.Context, revisionID, text string) (string, error)
		EnqueueBatchRewrite(ctx context.Context, revisionIDs, texts []string) ([]string, error)
	}
	businessMetrics *metrics.BusinessMetrics
	mux             *http.ServeMux
}

// NewHandler creates a new API handler with CORS support and metrics
func NewHandler(db *database.DB, c *coach.Coach, queueClient interface {
	EnqueueRewriteText(ctx context.Context, revisionID, text string) (string, error)
	EnqueueBatchRewrite(ctx context.Context, revisionIDs, texts []string) ([]string, error)
}, bm *metrics.BusinessMetrics) http.Handler {
	h := &Handler{
		db:              db,
		coach:           c,
		queueClient:     queueClient,
		businessMetrics: bm,
		mux:             http.NewServeMux(),
	}

	h.setupRoutes()

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return corsHandler.Handler(h.mux)
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.Handler()) // Prometheus metrics endpoint
	h.mux.HandleFunc("/api/rewrite", h.handleRewrite)
	h.mux.HandleFunc("/api/rewrite/batch", h.handleBatchRewrite)
	h.mux.HandleFunc("/api/score", h.handleScore)
	h.mux.HandleFunc("/api/jobs/", h.handleJobStatus)
	h.mux.HandleFunc("/api/revisions", h.handleListRevisions)
	h.mux.HandleFunc("/api/revisions/", h.handleRevisionOperations)
	h.mux.HandleFunc("/api/search", h.handleSearchByChangeType)
	h.mux.HandleFunc("/api/stats", h.handleStats)
	h.mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleRewrite rewrites a text synchronously and persists the revision
func (h *Handler) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, ok := h.decodeTextRequest(w, r)
	if !ok {
		return
	}

	// Queue the rewrite instead of running it inline when requested
	if r.URL.Query().Get("async") == "true" {
		if h.queueClient == nil {
			respondError(w, "Queue is not enabled", http.StatusServiceUnavailable)
			return
		}

		revisionID := generateID()
		taskID, err := h.queueClient.EnqueueRewriteText(r.Context(), revisionID, req.Text)
		if err != nil {
			respondError(w, fmt.Sprintf("Failed to enqueue rewrite: %v", err), http.StatusInternalServerError)
			return
		}

		respondJSON(w, map[string]interface{}{
			"job_id":  revisionID,
			"task_id": taskID,
			"status":  "queued",
			"message": "Rewrite queued for processing",
		}, http.StatusAccepted)
		return
	}

	ctx, span := otel.Tracer("lunacoach").Start(r.Context(), "coach.rewrite")
	defer span.End()

	tracing.SetSpanAttributes(ctx,
		attribute.Int("text.length", len(req.Text)))

	timer := time.Now()
	report := h.coach.Transform(req.Text)

	span.SetAttributes(
		attribute.Int("rewrite.total_changes", report.TotalChanges),
		attribute.Float64("rewrite.confidence_before", report.ConfidenceBefore),
		attribute.Float64("rewrite.confidence_after", report.ConfidenceAfter),
	)

	if h.businessMetrics != nil {
		h.businessMetrics.ObserveDurationWithExemplar(ctx, time.Since(timer).Seconds(), "success")
		h.businessMetrics.RewritesTotal.WithLabelValues("success").Inc()
		h.businessMetrics.ConfidenceGain.Observe(report.ConfidenceAfter - report.ConfidenceBefore)
		h.businessMetrics.WordsRemovedTotal.Add(float64(report.TotalWordsRemoved))
		for _, ch := range report.Changes {
			h.businessMetrics.ChangesTotal.WithLabelValues(string(ch.ChangeType)).Inc()
		}
	}

	revisionID := generateID()
	now := time.Now()
	revision := &models.Revision{
		ID:        revisionID,
		Report:    report,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Persist when storage is attached; the engine result is still returned
	// if the save fails.
	if h.db != nil {
		if err := h.db.SaveRevision(revision); err != nil {
			respondError(w, fmt.Sprintf("Failed to save revision: %v", err), http.StatusInternalServerError)
			return
		}
	}

	respondJSON(w, revision, http.StatusOK)
}

// handleScore scores a text without rewriting it
func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, ok := h.decodeTextRequest(w, r)
	if !ok {
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("text.length", len(req.Text)))

	score := h.coach.Score(req.Text)

	respondJSON(w, map[string]interface{}{
		"confidence": score,
	}, http.StatusOK)
}

// handleBatchRewrite enqueues texts for asynchronous rewriting
func (h *Handler) handleBatchRewrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.queueClient == nil {
		respondError(w, "Queue is not enabled", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Texts []string `json:"texts"`
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextSize)).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Texts) == 0 {
		respondError(w, "Texts field is required", http.StatusBadRequest)
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("batch.size", len(req.Texts)))

	revisionIDs := make([]string, 0, len(req.Texts))
	for _, text := range req.Texts {
		if strings.TrimSpace(text) == "" {
			respondError(w, "Text field is required", http.StatusBadRequest)
			return
		}
		revisionIDs = append(revisionIDs, generateID())
	}

	taskIDs, err := h.queueClient.EnqueueBatchRewrite(r.Context(), revisionIDs, req.Texts)
	if err != nil {
		respondError(w, fmt.Sprintf("Failed to enqueue rewrites: %v", err), http.StatusInternalServerError)
		return
	}

	jobs := make([]map[string]string, 0, len(req.Texts))
	for i, revisionID := range revisionIDs {
		jobs = append(jobs, map[string]string{
			"job_id":  revisionID,
			"task_id": taskIDs[i],
		})
	}

	respondJSON(w, map[string]interface{}{
		"jobs":    jobs,
		"status":  "queued",
		"message": "Rewrites queued for processing",
	}, http.StatusAccepted)
}

// handleJobStatus handles job status requests
func (h *Handler) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Extract job ID from path
	jobID := r.URL.Path[len("/api/jobs/"):]
	if idx := strings.Index(jobID, "/"); idx != -1 {
		jobID = jobID[:idx]
	}

	if jobID == "" {
		respondError(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	revision, err := h.db.GetRevision(jobID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSON(w, map[string]interface{}{
				"job_id":  jobID,
				"status":  "pending",
				"message": "Revision not found - it may still be queued or has expired",
			}, http.StatusNotFound)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"job_id":     jobID,
		"status":     "completed",
		"created_at": revision.CreatedAt,
		"updated_at": revision.UpdatedAt,
		"revision":   revision,
	}, http.StatusOK)
}

// handleListRevisions handles listing all revisions with pagination
func (h *Handler) handleListRevisions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	// Fetch revisions in a goroutine
	resultChan := make(chan []*models.Revision)
	errorChan := make(chan error)

	go func() {
		revisions, err := h.db.ListRevisions(limit, offset)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- revisions
	}()

	select {
	case revisions := <-resultChan:
		respondJSON(w, revisions, http.StatusOK)
	case err := <-errorChan:
		respondError(w, err.Error(), http.StatusInternalServerError)
	case <-time.After(30 * time.Second):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleRevisionOperations handles GET and DELETE for specific revisions
func (h *Handler) handleRevisionOperations(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/api/revisions/"):]
	if id == "" {
		respondError(w, "Revision ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getRevision(w, r, id)
	case http.MethodDelete:
		h.deleteRevision(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// getRevision retrieves a specific revision
func (h *Handler) getRevision(w http.ResponseWriter, r *http.Request, id string) {
	resultChan := make(chan *models.Revision)
	errorChan := make(chan error)

	go func() {
		revision, err := h.db.GetRevision(id)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- revision
	}()

	select {
	case revision := <-resultChan:
		respondJSON(w, revision, http.StatusOK)
	case err := <-errorChan:
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, err.Error(), http.StatusNotFound)
		} else {
			respondError(w, err.Error(), http.StatusInternalServerError)
		}
	case <-time.After(30 * time.Second):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// deleteRevision deletes a specific revision
func (h *Handler) deleteRevision(w http.ResponseWriter, r *http.Request, id string) {
	errorChan := make(chan error)
	doneChan := make(chan bool)

	go func() {
		if err := h.db.DeleteRevision(id); err != nil {
			errorChan <- err
			return
		}
		doneChan <- true
	}()

	select {
	case <-doneChan:
		w.WriteHeader(http.StatusNoContent)
	case err := <-errorChan:
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, err.Error(), http.StatusNotFound)
		} else {
			respondError(w, err.Error(), http.StatusInternalServerError)
		}
	case <-time.After(30 * time.Second):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleSearchByChangeType handles searching revisions by change type
func (h *Handler) handleSearchByChangeType(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	changeType := models.ChangeType(r.URL.Query().Get("change_type"))
	if changeType == "" {
		respondError(w, "change_type parameter is required", http.StatusBadRequest)
		return
	}
	if !changeType.Valid() {
		respondError(w, fmt.Sprintf("Unknown change type: %s", changeType), http.StatusBadRequest)
		return
	}

	// Search in a goroutine
	resultChan := make(chan []*models.Revision)
	errorChan := make(chan error)

	go func() {
		revisions, err := h.db.GetRevisionsByChangeType(changeType)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- revisions
	}()

	select {
	case revisions := <-resultChan:
		respondJSON(w, revisions, http.StatusOK)
	case err := <-errorChan:
		respondError(w, err.Error(), http.StatusInternalServerError)
	case <-time.After(30 * time.Second):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleStats returns aggregate statistics over stored revisions
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resultChan := make(chan *models.SessionStats)
	errorChan := make(chan error)

	go func() {
		stats, err := h.db.Stats()
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- stats
	}()

	select {
	case stats := <-resultChan:
		respondJSON(w, stats, http.StatusOK)
	case err := <-errorChan:
		respondError(w, err.Error(), http.StatusInternalServerError)
	case <-time.After(30 * time.Second):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// decodeTextRequest reads and validates the common {"text": ...} request body
func (h *Handler) decodeTextRequest(w http.ResponseWriter, r *http.Request) (req struct {
	Text string `json:"text"`
}, ok bool) {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextSize)).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, "Text exceeds maximum size", http.StatusRequestEntityTooLarge)
			return req, false
		}
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}

	if req.Text == "" {
		respondError(w, "Text field is required", http.StatusBadRequest)
		return req, false
	}

	return req, true
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// generateID generates a UUID for a revision
func generateID() string {
	uuid := make([]byte, 16)
	_, err := rand.Read(uuid)
	if err != nil {
		// Fallback to timestamp-based ID if random generation fails
		return time.Now().Format("20060102150405") + "-" + strconv.FormatInt(time.Now().UnixNano()%1000000, 10)
	}

	// Set version (4) and variant bits according to RFC 4122
	uuid[6] = (uuid[6] & 0x0f) | 0x40 // Version 4
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // Variant bits

	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hex.EncodeToString(uuid[0:4]),
		hex.EncodeToString(uuid[4:6]),
		hex.EncodeToString(uuid[6:8]),
		hex.EncodeToString(uuid[8:10]),
		hex.EncodeToString(uuid[10:16]))
}
