package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mreyes/reel-server/internal/cache"
	"github.com/mreyes/reel-server/internal/config"
	"github.com/mreyes/reel-server/internal/db"
	"github.com/mreyes/reel-server/internal/models"
	"github.com/mreyes/reel-server/internal/studio"
	"github.com/mreyes/reel-server/internal/synopsis"
)

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Code:  code,
	})
}

type Handlers struct {
	cfg      *config.Config
	db       *db.DB
	producer *studio.Producer
	store    *cache.Store
	provider synopsis.Provider
}

func NewHandlers(cfg *config.Config, database *db.DB, producer *studio.Producer, store *cache.Store, provider synopsis.Provider) *Handlers {
	return &Handlers{
		cfg:      cfg,
		db:       database,
		producer: producer,
		store:    store,
		provider: provider,
	}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.db.CountAnecdotes()
	if err != nil {
		log.Printf("health: counting anecdotes: %v", err)
	}

	resp := models.HealthResponse{
		Status:    "ok",
		Anecdotes: count,
		Synopsis:  h.checkSynopsis(),
		Version:   "1.0.0",
	}
	if build, err := h.producer.Latest(); err == nil && build != nil {
		resp.LastBuild = build.BuildID
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (h *Handlers) checkSynopsis() string {
	if h.provider == nil {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if !h.provider.IsAvailable(ctx) {
		return "unreachable"
	}
	return "connected"
}

// CreateAnecdote handles POST /anecdotes
func (h *Handlers) CreateAnecdote(w http.ResponseWriter, r *http.Request) {
	var a models.Anecdote
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	models.SanitizeAnecdote(&a)
	if a.Title == "" && a.Story == "" {
		writeError(w, http.StatusBadRequest, "title or story is required", "MISSING_STORY")
		return
	}

	if a.ID == "" {
		a.ID = generateID("anc")
	} else {
		existing, err := h.db.GetAnecdote(a.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
			return
		}
		if existing != nil {
			writeError(w, http.StatusConflict, "anecdote already exists", "DUPLICATE_ID")
			return
		}
	}

	if err := h.db.SaveAnecdote(a); err != nil {
		log.Printf("Failed to save anecdote %s: %v", a.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to save anecdote", "SAVE_ERROR")
		return
	}

	resp := models.AnecdoteResponse{
		ID:        a.ID,
		Status:    models.StatusStored,
		UIMessage: "Got it",
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// ListAnecdotes handles GET /anecdotes
func (h *Handlers) ListAnecdotes(w http.ResponseWriter, r *http.Request) {
	anecdotes, err := h.db.ListAnecdotes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}

	resp := models.AnecdotesResponse{
		Anecdotes: anecdotes,
		Count:     len(anecdotes),
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// GetAnecdote handles GET /anecdotes/{id}
func (h *Handlers) GetAnecdote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.db.GetAnecdote(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "anecdote not found", "NOT_FOUND")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(a)
}

// UpdateAnecdote handles PUT /anecdotes/{id}
func (h *Handlers) UpdateAnecdote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var a models.Anecdote
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	// The path wins over whatever id the body carries.
	a.ID = id
	models.SanitizeAnecdote(&a)
	if a.Title == "" && a.Story == "" {
		writeError(w, http.StatusBadRequest, "title or story is required", "MISSING_STORY")
		return
	}

	updated, err := h.db.UpdateAnecdote(a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update anecdote", "UPDATE_ERROR")
		return
	}
	if !updated {
		resp := models.AnecdoteResponse{
			ID:        id,
			Status:    models.StatusNotFound,
			UIMessage: "Not found",
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(resp)
		return
	}

	resp := models.AnecdoteResponse{
		ID:        id,
		Status:    models.StatusUpdated,
		UIMessage: "Updated",
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// DeleteAnecdote handles DELETE /anecdotes/{id}
func (h *Handlers) DeleteAnecdote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.db.DeleteAnecdote(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete anecdote", "DELETE_ERROR")
		return
	}
	if !deleted {
		resp := models.AnecdoteResponse{
			ID:        id,
			Status:    models.StatusNotFound,
			UIMessage: "Not found",
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(resp)
		return
	}

	resp := models.AnecdoteResponse{
		ID:        id,
		Status:    models.StatusDeleted,
		UIMessage: "Deleted",
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Storylines handles GET /storylines
func (h *Handlers) Storylines(w http.ResponseWriter, r *http.Request) {
	build, err := h.producer.Latest()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}
	if build == nil {
		writeError(w, http.StatusNotFound, "no storyline build yet", "NO_BUILD")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(buildResponse(build))
}

// Rebuild handles POST /storylines/rebuild
func (h *Handlers) Rebuild(w http.ResponseWriter, r *http.Request) {
	build, err := h.producer.Rebuild(models.TriggerAPI)
	if err != nil {
		log.Printf("Rebuild failed: %v", err)
		writeError(w, http.StatusInternalServerError, "rebuild failed", "REBUILD_ERROR")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(buildResponse(build))
}

// Storyline handles GET /storylines/{id}
func (h *Handlers) Storyline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s, err := h.producer.Storyline(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}
	if s == nil {
		writeError(w, http.StatusNotFound, "storyline not found", "NOT_FOUND")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(s)
}

// Synopsis handles POST /storylines/{id}/synopsis
func (h *Handlers) Synopsis(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		writeError(w, http.StatusServiceUnavailable, "synopsis provider not configured", "NOT_CONFIGURED")
		return
	}

	id := chi.URLParam(r, "id")

	s, err := h.producer.Storyline(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error", "DB_ERROR")
		return
	}
	if s == nil {
		writeError(w, http.StatusNotFound, "storyline not found", "NOT_FOUND")
		return
	}

	if text, ok := h.store.Synopsis(id); ok {
		h.writeSynopsis(w, id, text)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	text, err := h.provider.Generate(ctx, *s)
	if err != nil {
		log.Printf("Synopsis generation failed for %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "synopsis generation failed", "GENERATION_FAILED")
		return
	}

	h.store.PutSynopsis(id, text)
	h.writeSynopsis(w, id, text)
}

func (h *Handlers) writeSynopsis(w http.ResponseWriter, id, text string) {
	resp := models.SynopsisResponse{
		StorylineID: id,
		Provider:    h.provider.Name(),
		Model:       h.provider.ModelName(),
		Text:        text,
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func buildResponse(b *models.Build) models.StorylinesResponse {
	return models.StorylinesResponse{
		BuildID:    b.BuildID,
		Trigger:    b.Trigger,
		ItemCount:  b.ItemCount,
		CreatedAt:  b.CreatedAt,
		Storylines: b.Storylines,
	}
}

func generateID(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}
