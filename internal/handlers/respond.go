package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/db"
	"github.com/tablesideapp/tableside/internal/ordering"
	"github.com/tablesideapp/tableside/internal/services"
	"github.com/tablesideapp/tableside/internal/session"
	"github.com/tablesideapp/tableside/ui/views"
)

const maxRequestBodyBytes = 64 << 10 // 64 KB

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (h *Handlers) writeJSON(w http.ResponseWriter, ctx context.Context, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.loggerFromContext(ctx).Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) render(w http.ResponseWriter, ctx context.Context, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(ctx, w); err != nil {
		h.loggerFromContext(ctx).Error("failed to render fragment", "error", err)
	}
}

// respond renders fragment for htmx requests and v as JSON otherwise.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, status int, v any, fragment func() templ.Component) {
	if isHTMX(r) && fragment != nil {
		h.render(w, r.Context(), fragment())
		return
	}
	h.writeJSON(w, r.Context(), status, v)
}

func (h *Handlers) renderSuccess(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if isHTMX(r) {
		h.render(w, r.Context(), views.Toast(msg, true))
		return
	}
	h.writeJSON(w, r.Context(), status, map[string]string{"message": msg})
}

// writeError maps err to a status. htmx requests get a toast swapped into
// #toast so the fragment they targeted keeps its state.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status, msg := errorStatus(err)

	logger := h.loggerFromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Info("request rejected", "status", status, "error", err)
	}

	if isHTMX(r) {
		w.Header().Set("HX-Retarget", "#toast")
		w.Header().Set("HX-Reswap", "innerHTML")
		h.render(w, ctx, views.Toast(msg, false))
		return
	}

	body := map[string]any{"error": msg}
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		body["fields"] = validation.Fields
	}
	h.writeJSON(w, ctx, status, body)
}

func errorStatus(err error) (int, string) {
	var validation *services.ValidationError
	var apiErr *backend.APIError

	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, "Please check the highlighted fields"
	case errors.Is(err, session.ErrNoSession), errors.Is(err, services.ErrAuthInvalidToken):
		return http.StatusUnauthorized, "Please sign in again"
	case errors.Is(err, db.ErrDraftForbidden):
		return http.StatusForbidden, "This draft belongs to another employee"
	case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrDraftNotFound), backend.IsNotFound(err):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, ordering.ErrOutOfStock):
		return http.StatusConflict, ordering.LabelOutOfStock
	case errors.Is(err, ordering.ErrNotResolved):
		return http.StatusConflict, "Choose an option for every axis"
	case errors.Is(err, services.ErrProductUnavailable):
		return http.StatusConflict, ordering.LabelNotAvailable
	case errors.Is(err, services.ErrDraftEmpty):
		return http.StatusConflict, "Add something to the order first"
	case errors.Is(err, ordering.ErrNoProduct),
		errors.Is(err, ordering.ErrUnknownAxis),
		errors.Is(err, ordering.ErrUnknownOption),
		errors.Is(err, ordering.ErrSingleVariant),
		errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusServiceUnavailable, "The kitchen is not reachable right now, please retry"
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
			return apiErr.StatusCode, apiErr.Message
		}
		return http.StatusBadGateway, "The kitchen is not reachable right now, please retry"
	default:
		return http.StatusInternalServerError, "Something went wrong"
	}
}

// fields holds request input from either a JSON object or a form.
type fields map[string]string

func readFields(r *http.Request) (fields, error) {
	out := fields{}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var raw map[string]any
		decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes))
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: malformed JSON body: %v", services.ErrInvalidInput, err)
		}
		for key, value := range raw {
			switch v := value.(type) {
			case string:
				out[key] = v
			case float64:
				out[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				out[key] = strconv.FormatBool(v)
			}
		}
		return out, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: malformed form: %v", services.ErrInvalidInput, err)
	}
	for key, values := range r.Form {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out, nil
}

func (f fields) String(key string) string {
	return strings.TrimSpace(f[key])
}

// Raw returns key untouched, for values compared against catalog labels.
func (f fields) Raw(key string) string {
	return f[key]
}

// Int parses key, reporting whether it was present.
func (f fields) Int(key string) (int, bool, error) {
	raw := f.String(key)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s must be a whole number", services.ErrInvalidInput, key)
	}
	return n, true, nil
}
