package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"timed-exam-service/internal/app"
	"timed-exam-service/internal/domain"
)

// AdminSecretHeader carries the administrator secret on /admin routes.
const AdminSecretHeader = "X-Admin-Secret"

// RESTHandler exposes session start/inspection/finish and the admin results panel.
type RESTHandler struct {
	service   *app.ExamService
	validator *requestValidator
	log       zerolog.Logger
}

func NewRESTHandler(service *app.ExamService, log zerolog.Logger) *RESTHandler {
	return &RESTHandler{
		service:   service,
		validator: newRequestValidator(),
		log:       log.With().Str("component", "http").Logger(),
	}
}

type startRequest struct {
	FullName         string `json:"fullName" validate:"required,max=120"`
	CollegiateNumber string `json:"collegiateNumber" validate:"required,max=32"`
	QuizType         string `json:"quizType" validate:"required,oneof=OFFICIAL PRACTICE"`
	Secret           string `json:"secret"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type resultsResponse struct {
	Results []domain.ExamResult `json:"results"`
	Count   int                 `json:"count"`
}

// Register mounts the REST routes on r.
func (h *RESTHandler) Register(r *mux.Router) {
	r.HandleFunc("/sessions", h.StartSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/finish", h.FinishSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", h.ReleaseSession).Methods(http.MethodDelete)
	r.HandleFunc("/admin/results", h.ListResults).Methods(http.MethodGet)
	r.HandleFunc("/admin/results", h.ClearResults).Methods(http.MethodDelete)
}

func (h *RESTHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if fields := h.validator.Struct(req); fields != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields})
		return
	}

	session, err := h.service.Start(r.Context(), app.StartRequest{
		User:     domain.User{FullName: req.FullName, CollegiateNumber: req.CollegiateNumber},
		QuizType: domain.QuizType(req.QuizType),
		Secret:   req.Secret,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session.View())
}

func (h *RESTHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Session(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

func (h *RESTHandler) FinishSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.service.Finish(id); err != nil {
		h.writeError(w, err)
		return
	}
	session, err := h.service.Session(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

func (h *RESTHandler) ReleaseSession(w http.ResponseWriter, r *http.Request) {
	h.service.Release(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Results(r.Context(), r.Header.Get(AdminSecretHeader), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if results == nil {
		results = []domain.ExamResult{}
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results, Count: len(results)})
}

func (h *RESTHandler) ClearResults(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearResults(r.Context(), r.Header.Get(AdminSecretHeader)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		h.log.Warn().Err(err).Msg("question bank missing, run migrate --seed-bank")
		writeJSON(w, status, errorResponse{Error: "question bank unavailable"})
		return
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidUser),
		errors.Is(err, domain.ErrInvalidQuizType),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAttemptTaken), errors.Is(err, domain.ErrSessionSubmitted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBankNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
