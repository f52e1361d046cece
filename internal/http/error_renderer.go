package httpx

import (
	"context"
	"errors"
	"maps"
	"net/http"

	apperrors "github.com/target/maintdesk/internal/errors"
)

const errMsgFixBelow = "Please fix the errors below."

// ErrorRenderer renders an error template with the given data.
type ErrorRenderer func(w http.ResponseWriter, r *http.Request, data map[string]any)

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W http.ResponseWriter
	R *http.Request
	// Err is the error that occurred (optional when only FieldErrors are set)
	Err error
	// FieldErrors maps form field name to message
	FieldErrors map[string]string
	Renderer    ErrorRenderer
	PageMeta    PageMeta
	// Data is merged into the template data, e.g. to preserve form input
	Data map[string]any
	// StatusCode defaults to DetermineErrorStatus(Err) for non-htmx requests
	StatusCode int
	// ShowToast sends an Hx-Trigger showToast event with the message
	ShowToast bool
}

// DetermineErrorStatus returns the status a form error response should carry.
// Rejected input, conflicts and permission failures keep their status;
// everything else returns 0. Only non-htmx responses use it.
func DetermineErrorStatus(err error) int {
	switch {
	case err == nil:
		return 0
	case apperrors.IsValidation(err):
		return http.StatusUnprocessableEntity
	case apperrors.IsConflict(err):
		return http.StatusConflict
	case apperrors.IsForbidden(err):
		return http.StatusForbidden
	default:
		return 0
	}
}

// RenderError re-renders a page with a general message and field errors derived from err.
func RenderError(opts ErrorOpts) {
	if opts.Renderer == nil {
		http.Error(opts.W, "misconfigured error renderer", http.StatusInternalServerError)
		return
	}

	builder := NewTemplateData(opts.R, opts.PageMeta)
	fieldErrors := maps.Clone(opts.FieldErrors)
	generalError := processError(opts.Err, &fieldErrors)

	if len(fieldErrors) > 0 {
		builder.WithFieldErrors(fieldErrors)
	}
	if generalError != "" {
		builder.WithError(generalError)
	} else if len(fieldErrors) > 0 {
		builder.WithError(errMsgFixBelow)
	}
	for k, v := range opts.Data {
		builder.With(k, v)
	}

	if opts.ShowToast && generalError != "" {
		triggerToast(opts.W, generalError, "error")
	}

	status := opts.StatusCode
	if status == 0 && !IsHTMX(opts.R) {
		status = DetermineErrorStatus(opts.Err)
	}
	if status != 0 {
		opts.W.Header().Set("Content-Type", "text/html; charset=utf-8")
		opts.W.WriteHeader(status)
	}

	opts.Renderer(opts.W, opts.R, builder.Build())
}

// processError turns err into the message shown to the user. A field-scoped
// validation error is attached to that field instead.
func processError(err error, fieldErrors *map[string]string) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || apperrors.IsTimeout(err) {
		return "Request timed out. Please try again."
	}
	if errors.Is(err, context.Canceled) || apperrors.IsCanceled(err) {
		return "Request was canceled."
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return "An error occurred. Please try again."
	}

	if appErr.Field != "" && fieldErrors != nil {
		if *fieldErrors == nil {
			*fieldErrors = make(map[string]string)
		}
		(*fieldErrors)[appErr.Field] = appErr.Message
		return errMsgFixBelow
	}

	switch appErr.Code {
	case apperrors.ErrCodeInternal:
		return "An error occurred. Please try again."
	case apperrors.ErrCodeNetwork:
		if appErr.Message == "" {
			return "The maintenance service is unreachable. Please try again."
		}
	}
	return apperrors.Message(appErr)
}

// triggerToast sends a standardized Hx-Trigger payload for toast notifications.
func triggerToast(w http.ResponseWriter, message, toastType string) {
	if w == nil || message == "" {
		return
	}
	HTMX(w).Trigger("showToast", map[string]any{
		"message": message,
		"type":    toastType,
	})
}
