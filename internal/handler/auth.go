package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bienesraices/boutique/internal/config"
	"github.com/bienesraices/boutique/internal/flash"
	"github.com/bienesraices/boutique/internal/form"
	"github.com/bienesraices/boutique/internal/middleware"
	"github.com/bienesraices/boutique/internal/service"
	"github.com/bienesraices/boutique/internal/service/identity"
	"github.com/bienesraices/boutique/internal/ui"
)

const oauthStateCookie = "oauth_state"

// authFormData backs the login and register templates.
type authFormData struct {
	Values         map[string]string
	Errors         form.Errors
	Providers      []string
	CaptchaSiteKey string
}

type AuthHandler struct {
	auth      *service.AuthService
	captcha   *service.CaptchaVerifier
	providers *identity.Registry
	renderer  *ui.Renderer
	cfg       *config.Config
}

func NewAuthHandler(auth *service.AuthService, captcha *service.CaptchaVerifier, providers *identity.Registry, renderer *ui.Renderer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		captcha:   captcha,
		providers: providers,
		renderer:  renderer,
		cfg:       cfg,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, &authFormData{Providers: h.providers.Names()})
}

// Login runs one password attempt and phrases the outcome for the
// visitor. Lockout escalation is decided in the service; this only
// translates states to messages.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	schema := form.Login()
	values, errs := schema.Validate(r.PostForm)
	if errs.Any() {
		h.renderLogin(w, r, &authFormData{Values: values, Errors: errs, Providers: h.providers.Names()})
		return
	}

	result, err := h.auth.Login(values["identifier"], r.PostFormValue("password"))
	if err != nil {
		slog.Error("login failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	switch result.Status {
	case service.LoginOK:
		token, err := h.auth.GenerateJWT(result.User)
		if err != nil {
			slog.Error("failed to generate session token", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		h.auth.SetSessionCookie(w, token)
		http.Redirect(w, r, "/adminis", http.StatusSeeOther)
		return

	case service.LoginUnknownUser:
		flash.Set(w, r, flash.Error, "El usuario no existe.")

	case service.LoginBadPassword:
		flash.Set(w, r, flash.Error,
			fmt.Sprintf("Contraseña incorrecta. Intentos restantes: %d", result.RemainingAttempts))

	case service.LoginTempLocked:
		if result.JustLocked {
			flash.Set(w, r, flash.Error,
				fmt.Sprintf("Has fallado %d veces. Usuario bloqueado temporalmente. Intenta nuevamente en %d segundos.",
					result.FailedAttempts, result.RetryAfterSeconds))
		} else {
			flash.Set(w, r, flash.Error,
				fmt.Sprintf("Usuario bloqueado temporalmente. Intenta nuevamente en %d segundos.",
					result.RetryAfterSeconds))
		}

	case service.LoginPermanentlyLocked:
		flash.Set(w, r, flash.Error,
			"Usuario bloqueado permanentemente por demasiados intentos fallidos. Contacta a "+h.cfg.SupportEmail+".")

	case service.LoginEmailUnconfirmed:
		flash.Set(w, r, flash.Error, "Tu cuenta no está confirmada. Revisa tu correo.")
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearSessionCookie(w)
	flash.Set(w, r, flash.Info, "Sesión cerrada.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, &authFormData{CaptchaSiteKey: h.captcha.SiteKey()})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	schema := form.Registration(h.cfg.MinPasswordLength)
	values, errs := schema.Validate(r.PostForm)

	err = h.captcha.Verify(r.Context(), r.PostFormValue("g-recaptcha-response"), clientIP(r))
	if errors.Is(err, service.ErrCaptchaRequired) || errors.Is(err, service.ErrCaptchaRejected) {
		errs.Add("captcha", "Completa el captcha para continuar.")
	} else if err != nil {
		slog.Warn("captcha verification failed", "error", err)
	}

	if errs.Any() {
		h.renderRegister(w, r, &authFormData{Values: values, Errors: errs, CaptchaSiteKey: h.captcha.SiteKey()})
		return
	}

	_, err = h.auth.Register(values["gmail"], values["username"], r.PostFormValue("password"))
	switch {
	case errors.Is(err, service.ErrDuplicateGmail):
		errs.Add("gmail", "Ya existe una cuenta con ese correo.")
	case errors.Is(err, service.ErrDuplicateUsername):
		errs.Add("username", "Ese nombre de usuario ya está en uso.")
	case err != nil:
		slog.Error("registration failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if errs.Any() {
		h.renderRegister(w, r, &authFormData{Values: values, Errors: errs, CaptchaSiteKey: h.captcha.SiteKey()})
		return
	}

	flash.Set(w, r, flash.Success, "Cuenta creada. Revisa tu correo para confirmarla.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Confirm consumes an email confirmation token. Expired links get a
// different message than invalid or reused ones, and both send the
// visitor back to registration.
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	_, err := h.auth.ConfirmEmail(token)
	switch {
	case err == nil:
		flash.Set(w, r, flash.Success, "Cuenta confirmada. Ya puedes iniciar sesión.")
	case errors.Is(err, service.ErrAlreadyConfirmed):
		flash.Set(w, r, flash.Info, "Tu cuenta ya estaba confirmada.")
	case errors.Is(err, service.ErrTokenExpired):
		flash.Set(w, r, flash.Error, "El enlace de confirmación ha expirado. Regístrate de nuevo para recibir otro.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	case errors.Is(err, service.ErrInvalidToken):
		flash.Set(w, r, flash.Error, "El enlace de confirmación no es válido.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	default:
		slog.Error("email confirmation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// OAuthStart redirects to the provider's consent page with a state
// cookie for the callback to verify.
func (h *AuthHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	provider, err := h.providers.Get(r.PathValue("provider"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusSeeOther)
}

func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider, err := h.providers.Get(r.PathValue("provider"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		flash.Set(w, r, flash.Error, "La sesión de autenticación expiró. Intenta de nuevo.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		flash.Set(w, r, flash.Error, "No se pudo completar la autenticación.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	profile, err := provider.Profile(r.Context(), code)
	if err != nil {
		slog.Warn("oauth profile fetch failed", "provider", provider.Name(), "error", err)
		flash.Set(w, r, flash.Error, "No se pudo obtener tu perfil del proveedor.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := h.auth.AuthenticateOAuth(provider.Name(), profile)
	if errors.Is(err, service.ErrAccountLocked) {
		flash.Set(w, r, flash.Error, "Usuario bloqueado permanentemente. Contacta a "+h.cfg.SupportEmail+".")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.Error("oauth authentication failed", "provider", provider.Name(), "error", err)
		flash.Set(w, r, flash.Error, "No se pudo iniciar sesión con el proveedor.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	token, err := h.auth.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate session token", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.auth.SetSessionCookie(w, token)
	http.Redirect(w, r, "/adminis", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, data *authFormData) {
	if data.Values == nil {
		data.Values = map[string]string{}
	}
	h.renderer.Render(w, r, "login", "Iniciar sesión", data)
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, data *authFormData) {
	if data.Values == nil {
		data.Values = map[string]string{}
	}
	h.renderer.Render(w, r, "register", "Crear cuenta", data)
}

func generateState() string {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func clientIP(r *http.Request) string {
	return middleware.ClientIP(r)
}
