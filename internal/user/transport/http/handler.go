package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"rgarchitects/internal/api/dto"
	"rgarchitects/internal/user"
	"rgarchitects/internal/user/service"
)

const basePath = "/api/users"

type Handler struct {
	UserService *service.UserService
}

func NewHandler(us *service.UserService) *Handler {
	return &Handler{UserService: us}
}

// Register вешает маршруты ресурса на роутер. {id} только целое число,
// остальное не совпадает с маршрутом и даёт 404.
func (h *Handler) Register(r chi.Router) {
	r.Route(basePath, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id:[0-9]+}", h.Get)
		r.Put("/{id:[0-9]+}", h.Update)
		r.Delete("/{id:[0-9]+}", h.Delete)
	})
}

// ValidationProblem тело ответа 400 при незаполненных полях.
type ValidationProblem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Errors map[string][]string `json:"errors"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	u, err := h.UserService.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUser(w, r)
	if !ok {
		return
	}

	u, err := h.UserService.Create(r.Context(), req.ToUser())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", basePath, u.ID))
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	req, ok := decodeUser(w, r)
	if !ok {
		return
	}

	if err := h.UserService.Update(r.Context(), id, req.ToUser()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.UserService.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		// id за пределами int64 ведёт себя как несовпавший маршрут
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func decodeUser(w http.ResponseWriter, r *http.Request) (dto.UserRequest, bool) {
	var req dto.UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return req, false
	}

	if err := dto.Validate.Struct(req); err != nil {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ValidationProblem{
			Title:  "One or more validation errors occurred.",
			Status: http.StatusBadRequest,
			Errors: dto.FieldErrors(err),
		})
		return req, false
	}

	return req, true
}

// writeServiceError переводит ошибки сервиса в HTTP статус. Всё неизвестное
// (включая user.ErrConflict) отдаётся как 500 без структурированного тела.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrIDMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled user service error")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
