package api

import (
	"net/http"
	"time"

	"papergen/internal/api/handler"
	"papergen/internal/api/middleware"
	"papergen/internal/app/service"
	"papergen/internal/common/security"
	"papergen/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Auth     *service.AuthService
	Settings *service.SettingsService
	Papers   *service.PaperService
	Bank     *service.BankService
	Sessions *service.SessionService
	Share    *service.ShareService
	Tokens   *security.TokenIssuer
}

func NewRouter(svc Services, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Looks for "Authorization: Bearer T" and puts the verified token in context.
	r.Use(jwtauth.Verifier(svc.Tokens.JWTAuth()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	shareHandler := handler.NewShareHandler(svc.Share, log)
	r.Get("/view/{token}", shareHandler.View)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/auth", handler.NewAuthHandler(svc.Auth, log).RegisterRoutes)
		v1.Route("/share", shareHandler.RegisterRoutes)

		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.Authenticator)

			paperHandler := handler.NewPaperHandler(svc.Papers, svc.Share, log)
			authed.Route("/papers", paperHandler.RegisterRoutes)
			authed.Route("/attended", paperHandler.RegisterAttendedRoutes)
			authed.Route("/bank", handler.NewBankHandler(svc.Bank, log).RegisterRoutes)
			authed.Route("/settings", handler.NewSettingsHandler(svc.Settings, svc.Auth, log).RegisterRoutes)

			sessionHandler := handler.NewSessionHandler(svc.Sessions, log)
			authed.Route("/session", sessionHandler.RegisterRoutes)
			authed.Route("/generate", sessionHandler.RegisterGenerateRoutes)
		})
	})

	return r
}
