package notes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"notes-api/internal/middleware"
	"notes-api/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	h := &handler{svc: svc, log: log}

	r.Route("/api/notes", func(nr chi.Router) {
		nr.Get("/", h.list)
		nr.Post("/", h.create)
		nr.Get("/{id}", h.get)
		nr.Patch("/{id}", h.update)
		nr.Delete("/{id}", h.delete)
	})
}

type handler struct {
	svc *Service
	log logger.Logger
}

// noteResponse es la representación JSON de una nota.
type noteResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createNoteRequest: title obligatorio, content opcional.
type createNoteRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

// updateNoteRequest: al menos uno de los campos.
type updateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

// list godoc
// @Summary Listar notas
// @Description Devuelve todas las notas ordenadas por fecha de creación (más recientes primero).
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} noteResponse
// @Failure 401 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/notes [get]
func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to fetch notes", err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(items, func(n Note, _ int) noteResponse {
		return toNoteResponse(n)
	}))
}

// get godoc
// @Summary Obtener nota
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de la nota"
// @Success 200 {object} noteResponse
// @Failure 400 {object} errorResponse "Invalid note ID"
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse "Note not found"
// @Failure 500 {object} errorResponse
// @Router /api/notes/{id} [get]
func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	n, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Note not found")
			return
		}
		h.internalError(w, r, "Failed to fetch note", err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(n))
}

// create godoc
// @Summary Crear nota
// @Description Crea una nota. `title` es obligatorio; `content` es opcional (vacío se guarda como null).
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body createNoteRequest true "Datos de la nota"
// @Success 201 {object} noteResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/notes [post]
func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeObject(w, r)
	if !ok {
		return
	}

	var req createNoteRequest

	title, present, ok := stringField(raw, "title")
	if !present || !ok || title == nil || *title == "" {
		writeError(w, http.StatusBadRequest, "Title is required and must be a string")
		return
	}
	req.Title = *title

	content, present, ok := stringField(raw, "content")
	if present && !ok {
		writeError(w, http.StatusBadRequest, "Content must be a string")
		return
	}
	req.Content = content

	n, err := h.svc.Create(r.Context(), CreateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "Title is required and must be a string")
			return
		}
		h.internalError(w, r, "Failed to create note", err)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteResponse(n))
}

// update godoc
// @Summary Actualizar nota
// @Description Actualiza parcialmente una nota (PATCH real: solo los campos enviados).
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de la nota"
// @Param payload body updateNoteRequest true "Campos a actualizar"
// @Success 200 {object} noteResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse "Note not found"
// @Failure 500 {object} errorResponse
// @Router /api/notes/{id} [patch]
func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	raw, ok := decodeObject(w, r)
	if !ok {
		return
	}

	var req updateNoteRequest

	// En PATCH null no es válido: presente => tiene que ser string.
	title, present, ok := stringField(raw, "title")
	if present {
		if !ok || title == nil {
			writeError(w, http.StatusBadRequest, "Title must be a string")
			return
		}
		req.Title = title
	}

	content, present, ok := stringField(raw, "content")
	if present {
		if !ok || content == nil {
			writeError(w, http.StatusBadRequest, "Content must be a string")
			return
		}
		req.Content = content
	}

	in := UpdateInput{Title: req.Title, Content: req.Content}
	if in.IsEmpty() {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	n, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Note not found")
			return
		}
		h.internalError(w, r, "Failed to update note", err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(n))
}

// delete godoc
// @Summary Eliminar nota
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de la nota"
// @Success 200 {object} deleteResponse
// @Failure 400 {object} errorResponse "Invalid note ID"
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse "Note not found"
// @Failure 500 {object} errorResponse
// @Router /api/notes/{id} [delete]
func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Note not found")
			return
		}
		h.internalError(w, r, "Failed to delete note", err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}

func (h *handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.log.Error(msg, map[string]any{
		"request_id": middleware.GetRequestID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"err":        err,
	})
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg, Details: err.Error()})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid note ID")
		return 0, false
	}
	return id, true
}

// decodeObject exige un objeto JSON. Se decodifica a RawMessage para poder
// distinguir campo ausente, null y tipo incorrecto.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return raw, true
}

// stringField devuelve (valor, presente, esString). null => (nil, true, true).
func stringField(raw map[string]json.RawMessage, key string) (*string, bool, bool) {
	v, exists := raw[key]
	if !exists {
		return nil, false, true
	}
	if string(v) == "null" {
		return nil, true, true
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, true, false
	}
	return &s, true, true
}

func toNoteResponse(n Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
