package routes

import (
	"net/http"

	"github.com/bienesraices/boutique/internal/app"
	"github.com/bienesraices/boutique/internal/handler"
	"github.com/bienesraices/boutique/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.PropertyService, app.Renderer)
	auth := handler.NewAuthHandler(app.AuthService, app.Captcha, app.Providers, app.Renderer, app.Cfg)
	admin := handler.NewAdminHandler(app.PropertyService, app.Renderer)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static files (stylesheets and locally stored listing images)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("./static"))))

	// Catalog
	mux.HandleFunc("GET /{$}", home.Home)
	mux.HandleFunc("GET /catalogo", home.Catalog)
	mux.HandleFunc("GET /property/{id}", home.PropertyDetail)

	// Auth flow (rate limited)
	rateLimiter := middleware.RateLimitAuth(app.AuthLimiter)

	mux.HandleFunc("GET /login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /login", rateLimiter(middleware.RequireGuest(auth.Login)))
	// Logout answers GET too so plain links and old bookmarks work.
	mux.HandleFunc("GET /logout", auth.Logout)
	mux.HandleFunc("POST /logout", auth.Logout)

	mux.HandleFunc("GET /register", middleware.RequireGuest(auth.RegisterPage))
	mux.HandleFunc("POST /register", rateLimiter(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("GET /confirm/{token}", auth.Confirm)

	// OAuth
	mux.HandleFunc("GET /auth/{provider}", rateLimiter(middleware.RequireGuest(auth.OAuthStart)))
	mux.HandleFunc("GET /auth/{provider}/callback", rateLimiter(auth.OAuthCallback))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /adminis", middleware.RequireAuth(admin.Dashboard))
	mux.HandleFunc("GET /add_property", middleware.RequireAuth(admin.AddPropertyPage))
	mux.HandleFunc("POST /add_property", middleware.RequireAuth(admin.AddProperty))
	mux.HandleFunc("GET /edit_property/{id}", middleware.RequireAuth(admin.EditPropertyPage))
	mux.HandleFunc("POST /edit_property/{id}", middleware.RequireAuth(admin.EditProperty))
	mux.HandleFunc("POST /delete_property/{id}", middleware.RequireAuth(admin.DeleteProperty))
	mux.HandleFunc("POST /remove_repertory_image", middleware.RequireAuth(admin.RemoveRepertoryImage))

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService, app.UserRepository),
		middleware.WithURLPath,
	)

	return h
}
