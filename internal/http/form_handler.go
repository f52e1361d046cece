package httpx

import (
	"context"
	"errors"
	"net/http"
)

// FormParser parses form data from an HTTP request and returns the parsed data
// along with any field-level validation errors.
type FormParser[T any] func(r *http.Request) (T, map[string]string)

// FormSubmitter sends the parsed form to the backend. id is empty in create mode.
type FormSubmitter[T any] func(ctx context.Context, id string, data T) error

// FormRenderer renders the form template with the given data.
type FormRenderer func(w http.ResponseWriter, r *http.Request, data map[string]any)

// FormMode represents the mode of a form (create or edit).
type FormMode string

const (
	FormModeEdit   FormMode = "edit"
	FormModeCreate FormMode = "create"
)

// FormHandlerOpts contains all options needed to handle a form submission.
type FormHandlerOpts[T any] struct {
	W        http.ResponseWriter
	R        *http.Request
	Mode     FormMode
	Parser   FormParser[T]
	Submit   FormSubmitter[T]
	Renderer FormRenderer
	// SuccessURL may be computed from the request when it depends on the result.
	SuccessURL string
	PageMeta   PageMeta
	// ExtraData is passed to the template on error, e.g. select options
	ExtraData map[string]any
	// GetID defaults to r.PathValue("id")
	GetID func(r *http.Request) string
}

// HandleForm parses, submits and redirects; on failure it re-renders the form
// with field errors or the backend's detail message.
func HandleForm[T any](opts FormHandlerOpts[T]) {
	if opts.Parser == nil || opts.Submit == nil || opts.Renderer == nil {
		http.Error(opts.W, "misconfigured form handler", http.StatusInternalServerError)
		return
	}
	if opts.Mode == "" {
		opts.Mode = FormModeCreate
	}

	id := ""
	if opts.Mode == FormModeEdit {
		id = getFormID(opts)
		if id == "" {
			http.NotFound(opts.W, opts.R)
			return
		}
	}

	data, fieldErrors := opts.Parser(opts.R)
	if len(fieldErrors) > 0 {
		opts.renderFormError(fieldErrors, nil, data)
		return
	}

	if err := opts.Submit(opts.R.Context(), id, data); err != nil {
		if errors.Is(err, context.Canceled) {
			http.Error(opts.W, "request canceled", http.StatusRequestTimeout)
			return
		}
		opts.renderFormError(nil, err, data)
		return
	}

	redirectAfterPost(opts.W, opts.R, opts.SuccessURL)
}

func getFormID[T any](opts FormHandlerOpts[T]) string {
	if opts.GetID != nil {
		return opts.GetID(opts.R)
	}
	return opts.R.PathValue("id")
}

func (fh FormHandlerOpts[T]) renderFormError(fieldErrors map[string]string, err error, data T) {
	extra := map[string]any{"Mode": fh.Mode, "FormData": data}
	for k, v := range fh.ExtraData {
		if _, ok := extra[k]; !ok {
			extra[k] = v
		}
	}
	status := 0
	if err == nil && len(fieldErrors) > 0 && !IsHTMX(fh.R) {
		status = http.StatusUnprocessableEntity
	}
	RenderError(ErrorOpts{
		W:           fh.W,
		R:           fh.R,
		Err:         err,
		FieldErrors: fieldErrors,
		Renderer:    ErrorRenderer(fh.Renderer),
		PageMeta:    fh.PageMeta,
		Data:        extra,
		StatusCode:  status,
	})
}

// redirectAfterPost sends htmx an Hx-Redirect and browsers a 303.
func redirectAfterPost(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		HTMX(w).Redirect(url)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
