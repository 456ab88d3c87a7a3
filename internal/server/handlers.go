package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nao1215/idguard/internal/hygiene"
	"github.com/nao1215/idguard/internal/model"
	"github.com/nao1215/idguard/internal/service"
)

type exposureRequest struct {
	Email string `json:"email"`
	Query string `json:"query"`
}

// hygieneRequest accepts answer values as JSON numbers or numeric strings,
// as HTML forms send them.
type hygieneRequest struct {
	Answers map[string]json.Number `json:"answers"`
}

// checkResponse is the body of a successful exposure or hygiene submission.
type checkResponse struct {
	ReportID  int64    `json:"report_id,omitempty"`
	Saved     bool     `json:"saved"`
	SaveError string   `json:"save_error,omitempty"`
	Skipped   []string `json:"skipped_answers,omitempty"`
	Report    any      `json:"report"`
}

type questionnaireCategory struct {
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	Questions   []model.Question `json:"questions"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExposure(w http.ResponseWriter, r *http.Request) {
	var req exposureRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, cancel := s.checkContext(r.Context())
	defer cancel()

	out, err := s.backend.CheckExposure(ctx, req.Email, req.Query)
	if errors.Is(err, service.ErrNoInput) {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, outcomeResponse(out, nil))
}

func (s *Server) handleHygiene(w http.ResponseWriter, r *http.Request) {
	var req hygieneRequest
	if !s.decode(w, r, &req) {
		return
	}

	form := make(map[string]string, len(req.Answers))
	for k, v := range req.Answers {
		form[k] = v.String()
	}
	answers, skipped := hygiene.ParseAnswers(form)

	ctx, cancel := s.checkContext(r.Context())
	defer cancel()

	out, err := s.backend.AssessHygiene(ctx, answers)
	switch {
	case errors.Is(err, hygiene.ErrNoAnswers):
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, outcomeResponse(out, skipped))
}

func outcomeResponse[T any](out *service.Outcome[T], skipped []string) checkResponse {
	resp := checkResponse{
		ReportID: out.ReportID,
		Saved:    out.Saved(),
		Skipped:  skipped,
		Report:   out.Report,
	}
	if out.SaveErr != nil {
		resp.SaveError = "report not saved"
	}
	return resp
}

func (s *Server) handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	categories := s.backend.Questionnaire()
	out := make([]questionnaireCategory, len(categories))
	for i, c := range categories {
		out[i] = questionnaireCategory{
			Name:        c.Name,
			DisplayName: hygiene.DisplayName(c.Name),
			Questions:   c.Questions,
		}
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"categories": out})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var moduleType model.ModuleType
	if t := strings.TrimSpace(q.Get("type")); t != "" {
		mt, err := model.ParseModuleType(t)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		moduleType = mt
	}
	limit, ok := s.intParam(w, r, "limit", s.pageSize)
	if !ok {
		return
	}
	page, ok := s.intParam(w, r, "page", 1)
	if !ok {
		return
	}

	result, err := s.backend.History(r.Context(), moduleType, page, min(limit, MaxPageSize))
	if errors.Is(err, service.ErrNoStore) {
		s.writeError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := s.backend.Report(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		s.writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoStore):
		s.writeError(w, r, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		s.internalError(w, r, err)
	default:
		s.writeJSON(w, r, http.StatusOK, report)
	}
}

func (s *Server) checkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.checkTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.checkTimeout)
}

// intParam reads a positive integer query parameter, writing a 400 when it is malformed.
func (s *Server) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		s.writeError(w, r, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}

// decode reads a JSON body into v, writing a 400 when it cannot.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "request_id", RequestIDFrom(r.Context()), "error", err)
	s.writeError(w, r, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, errorResponse{Error: msg, RequestID: RequestIDFrom(r.Context())})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "request_id", RequestIDFrom(r.Context()), "error", err)
	}
}
