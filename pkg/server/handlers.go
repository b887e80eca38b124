package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	gotheme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/logger"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/persistence"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/steps"
	"github.com/goliatone/go-formbuilder/pkg/theme"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StepResult is the body of a step validation response.
type StepResult struct {
	Step     int                 `json:"step"`
	Valid    bool                `json:"valid"`
	Errors   validation.ErrorMap `json:"errors"`
	NextStep int                 `json:"next_step,omitempty"`
	Last     bool                `json:"last"`
}

// SubmitResult is the body of a submission response.
type SubmitResult struct {
	Submitted bool                `json:"submitted"`
	Message   string              `json:"message,omitempty"`
	Errors    validation.ErrorMap `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			logger.FromContext(r.Context()).Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sharedForm loads the form of the request. It writes the failure response
// itself and reports false when there is nothing to serve.
func (s *Server) sharedForm(w http.ResponseWriter, r *http.Request, page bool) (model.Document, string, bool) {
	id := chi.URLParam(r, "shareID")
	doc, err := s.forms.Shared(r.Context(), id)
	if err == nil {
		return doc, id, true
	}
	if errors.Is(err, persistence.ErrNotFound) {
		if page {
			s.handleNotFound(w, r)
		} else {
			writeError(w, http.StatusNotFound, "form_not_found", render.NotFoundMessage)
		}
		return model.Document{}, id, false
	}
	logger.FromContext(r.Context()).Error("load shared form", zap.String("share_id", id), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	return model.Document{}, id, false
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	body, err := s.html.RenderNotFound(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("render not found page", zap.Error(err))
		http.Error(w, render.NotFoundMessage, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", s.html.ContentType())
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(body)
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	doc, id, ok := s.sharedForm(w, r, true)
	if !ok {
		return
	}
	options := render.RenderOptions{
		Step:   queryStep(r),
		Action: "/form/" + url.PathEscape(id),
		Theme:  s.resolveTheme(r),
	}
	body, err := s.html.RenderDocument(r.Context(), doc, options)
	if err != nil {
		logger.FromContext(r.Context()).Error("render shared form", zap.String("share_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	w.Header().Set("Content-Type", s.html.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, _, ok := s.sharedForm(w, r, false)
	if !ok {
		return
	}
	values, ok := decodeValues(w, r)
	if !ok {
		return
	}

	seq := steps.Compute(doc.Fields)
	step := queryStep(r)
	if step == 0 {
		step = steps.First(seq)
	}
	if !steps.Contains(seq, step) {
		writeError(w, http.StatusBadRequest, "unknown_step", "unknown step "+strconv.Itoa(step))
		return
	}

	errs := s.validator.Validate(steps.Filter(doc.Fields, step), values)
	result := StepResult{
		Step:   step,
		Valid:  errs.Empty(),
		Errors: errs,
		Last:   step == steps.Last(seq),
	}
	if next, ok := steps.Next(seq, step); ok && result.Valid {
		result.NextStep = next
	}
	s.metrics.observeValidation("step", result.Valid)

	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if isFormPost(r) {
		s.handlePagePost(w, r)
		return
	}
	doc, id, ok := s.sharedForm(w, r, false)
	if !ok {
		return
	}
	values, ok := decodeValues(w, r)
	if !ok {
		return
	}
	log := logger.FromContext(r.Context()).With(zap.String("share_id", id))

	if errs := s.validator.Validate(doc.Fields, values); !errs.Empty() {
		s.metrics.observeValidation("submit", false)
		writeJSON(w, http.StatusUnprocessableEntity, SubmitResult{Errors: errs})
		return
	}
	if err := openapi.ValidateSubmission(doc, values); err != nil {
		s.metrics.observeValidation("submit", false)
		log.Debug("submission rejected by schema", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "schema_mismatch", err.Error())
		return
	}

	s.metrics.observeValidation("submit", true)
	log.Info("form submitted", zap.Int("values", len(values)))
	writeJSON(w, http.StatusOK, SubmitResult{Submitted: true, Message: render.SubmittedMessage})
}

// Page actions posted by the buttons of a rendered step.
const (
	actionNext   = "next"
	actionBack   = "back"
	actionSubmit = "submit"
)

// handlePagePost drives the shared form page: every button posts the step
// back to /form/{shareID} and the response is the page to show next.
func (s *Server) handlePagePost(w http.ResponseWriter, r *http.Request) {
	doc, id, ok := s.sharedForm(w, r, true)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid form body: "+err.Error())
		return
	}
	log := logger.FromContext(r.Context()).With(zap.String("share_id", id))

	seq := steps.Compute(doc.Fields)
	step, err := strconv.Atoi(r.PostForm.Get("_step"))
	if err != nil || !steps.Contains(seq, step) {
		step = steps.First(seq)
	}
	values := formValues(doc.Fields, r.PostForm)
	options := render.RenderOptions{
		Step:   step,
		Values: values,
		Action: "/form/" + url.PathEscape(id),
		Theme:  s.resolveTheme(r),
	}
	status := http.StatusOK

	switch action := r.PostForm.Get("_action"); action {
	case actionBack:
		if prev, ok := steps.Prev(seq, step); ok {
			options.Step = prev
		}
	case actionNext:
		errs := s.validator.Validate(steps.Filter(doc.Fields, step), values)
		s.metrics.observeValidation("step", errs.Empty())
		if !errs.Empty() {
			options.Errors = errs
			status = http.StatusUnprocessableEntity
			break
		}
		if next, ok := steps.Next(seq, step); ok {
			options.Step = next
		}
	case actionSubmit:
		errs := s.validator.Validate(doc.Fields, values)
		if errs.Empty() {
			if err := openapi.ValidateSubmission(doc, values); err != nil {
				log.Debug("submission rejected by schema", zap.Error(err))
				errs = openapi.FieldErrors(err)
			}
		}
		s.metrics.observeValidation("submit", errs.Empty())
		if !errs.Empty() {
			options.Errors = errs
			options.Step = firstStepWithError(doc.Fields, seq, errs, step)
			status = http.StatusUnprocessableEntity
			break
		}
		log.Info("form submitted", zap.Int("values", len(values)))
		options.Submitted = true
	default:
		writeError(w, http.StatusBadRequest, "unknown_action", "unknown action "+strconv.Quote(action))
		return
	}

	body, err := s.html.RenderDocument(r.Context(), doc, options)
	if err != nil {
		log.Error("render shared form", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	w.Header().Set("Content-Type", s.html.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// firstStepWithError picks the earliest step holding a field in errs, or
// fallback when no such field exists.
func firstStepWithError(fields []model.Field, seq []int, errs validation.ErrorMap, fallback int) int {
	for _, step := range seq {
		for _, field := range steps.Filter(fields, step) {
			if _, ok := errs[field.ID]; ok {
				return step
			}
		}
	}
	return fallback
}

func isFormPost(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

// formValues reads the answers of a posted page. Checkbox groups become
// option lists and toggles booleans; absent controls are left out.
func formValues(fields []model.Field, form url.Values) validation.Values {
	values := validation.Values{}
	for _, field := range fields {
		posted, ok := form[field.ID]
		switch {
		case field.Type == model.FieldTypeToggle:
			values[field.ID] = ok && len(posted) > 0 && posted[0] == "true"
		case !ok:
		case field.Type.IsMultiValue():
			values[field.ID] = append([]string(nil), posted...)
		default:
			values[field.ID] = posted[0]
		}
	}
	return values
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	doc, id, ok := s.sharedForm(w, r, false)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, openapi.Document(doc, id))
}

func (s *Server) resolveTheme(r *http.Request) *gotheme.RendererConfig {
	if s.themes == nil {
		return nil
	}
	if variant := r.URL.Query().Get("theme"); variant != "" {
		selection, err := s.themes.Select("", variant)
		if err == nil {
			return theme.RendererConfig(selection)
		}
	}
	if s.themeStore == nil {
		selection, err := s.themes.Select("", "")
		if err != nil {
			return nil
		}
		return theme.RendererConfig(selection)
	}
	cfg, err := theme.Resolve(r.Context(), s.themeStore, s.themes)
	if err != nil {
		logger.FromContext(r.Context()).Warn("resolve theme", zap.Error(err))
		return nil
	}
	return cfg
}

func queryStep(r *http.Request) int {
	raw := r.URL.Query().Get("step")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func decodeValues(w http.ResponseWriter, r *http.Request) (validation.Values, bool) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	values := validation.Values{}
	if err := json.NewDecoder(body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return nil, false
	}
	for key, value := range values {
		if list, ok := value.([]any); ok {
			values[key] = optionList(list)
		}
	}
	return values, true
}

// optionList converts a decoded JSON array of option labels.
func optionList(list []any) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
