package httpx

import (
	"context"
	"net/http"
	"strings"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	apperrors "github.com/target/maintdesk/internal/errors"
	"github.com/target/maintdesk/internal/http/validation"
	"github.com/target/maintdesk/internal/ports"
)

// loginForm is the parsed sign-in form.
type loginForm struct {
	Email string
	Next  string
}

// registerForm is the parsed registration form.
type registerForm struct {
	Email string
	Role  string
}

func loginMeta() PageMeta {
	return PageMeta{Title: "Sign in", PageTitle: "Sign in", CurrentPage: PageLogin}
}

func registerMeta() PageMeta {
	return PageMeta{Title: "Create account", PageTitle: "Create account", CurrentPage: PageRegister}
}

// LoginPage renders the sign-in form. Signed-in visitors go straight to their destination.
// GET /login.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if CurrentIdentity(r.Context()) != nil {
		redirectAfterPost(w, r, h.afterLogin(next))
		return
	}

	data := NewTemplateData(r, loginMeta()).
		With("FormData", loginForm{Next: next}).
		With("Registered", r.URL.Query().Get("registered") != "").
		Build()
	h.renderPage(w, r, data)
}

// LoginSubmit authenticates against the backend and rotates the browser session.
// POST /login.
func (h *UIHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	form := loginForm{
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Next:  r.PostFormValue("next"),
	}

	_, err := rs.Auth.Login(r.Context(), form.Email, r.PostFormValue("password"))
	h.Gate.metrics.Login(err)
	if err != nil {
		status := 0
		if !IsHTMX(r) {
			status = http.StatusUnauthorized
			if apperrors.IsValidation(err) {
				status = http.StatusUnprocessableEntity
			}
		}
		// The login may have reached the backend before identity lookup failed.
		h.Gate.Commit(w, r, rs)
		RenderError(ErrorOpts{
			W:          w,
			R:          r,
			Err:        err,
			Renderer:   h.renderPage,
			PageMeta:   loginMeta(),
			Data:       map[string]any{"FormData": form},
			StatusCode: status,
		})
		return
	}

	if err := h.Gate.Rotate(r, rs); err != nil {
		h.logger().WarnContext(r.Context(), "rotate session after login failed", "error", err)
	}
	h.Gate.Commit(w, r, rs)
	redirectAfterPost(w, r, h.afterLogin(form.Next))
}

// afterLogin returns the same-origin next path, or the landing page.
func (h *UIHandlers) afterLogin(next string) string {
	dest := h.destinations()
	target := safeRedirectPath(next)
	if target == "/" || strings.HasPrefix(target, dest.Login) {
		return dest.Landing
	}
	return target
}

// RegisterPage renders the account registration form.
// GET /register.
func (h *UIHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, registerMeta()).
		With("FormData", registerForm{}).
		With("Roles", []domainauth.Role{domainauth.RoleUser, domainauth.RoleAdmin}).
		Build()
	h.renderPage(w, r, data)
}

// RegisterSubmit creates an account. It never signs the visitor in.
// POST /register.
func (h *UIHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	HandleForm(FormHandlerOpts[ports.RegisterInput]{
		W:      w,
		R:      r,
		Parser: parseRegisterForm,
		Submit: func(ctx context.Context, _ string, in ports.RegisterInput) error {
			_, err := rs.Auth.Register(ctx, in)
			return err
		},
		Renderer:   h.renderRegisterForm,
		SuccessURL: h.destinations().Login + "?registered=1",
		PageMeta:   registerMeta(),
		ExtraData:  map[string]any{"Roles": []domainauth.Role{domainauth.RoleUser, domainauth.RoleAdmin}},
	})
}

func parseRegisterForm(r *http.Request) (ports.RegisterInput, map[string]string) {
	in := ports.RegisterInput{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	confirm := r.PostFormValue("confirm_password")
	v := validation.New().
		Validate("email", in.Email, validation.Email("Email", maxNameLen)).
		Validate("password", in.Password, validation.Required("Password", maxNameLen)).
		Check("confirm_password", confirm == "" || confirm == in.Password, "Passwords do not match.")
	if raw := strings.TrimSpace(r.PostFormValue("role")); raw != "" {
		v.Validate("role", raw, validation.OneOf("Role", []string{string(domainauth.RoleAdmin), string(domainauth.RoleUser)}))
		in.Role, _ = domainauth.ParseRole(raw)
	}
	errs := v.Errors()
	return in, errs
}

// renderRegisterForm hides the submitted password from the re-rendered form.
func (h *UIHandlers) renderRegisterForm(w http.ResponseWriter, r *http.Request, data map[string]any) {
	if in, ok := data["FormData"].(ports.RegisterInput); ok {
		data["FormData"] = registerForm{Email: in.Email, Role: string(in.Role)}
	}
	h.renderPage(w, r, data)
}

// Logout ends the backend session and the browser session. It always succeeds.
// POST /logout.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	rs.Auth.Logout(r.Context())
	h.Gate.End(w, r, rs)

	login := h.destinations().Login
	switch {
	case IsHTMX(r):
		HTMX(w).Redirect(login)
	case IsBrowserRequest(r):
		http.Redirect(w, r, login, http.StatusSeeOther)
	default:
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
	}
}

// authStatusUser is the public identity in /auth/status.
type authStatusUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthStatus reports the resolved identity as JSON.
// GET /auth/status.
func (h *UIHandlers) AuthStatus(w http.ResponseWriter, r *http.Request) {
	id := CurrentIdentity(r.Context())
	if id == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          authStatusUser{ID: id.ID, Email: id.Email, Role: string(id.Role)},
	})
}
