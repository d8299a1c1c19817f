package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/notes-api/internal/application/attachment"
	"github.com/notes-api/internal/application/auth"
	"github.com/notes-api/internal/application/note"
	"github.com/notes-api/internal/application/user"
	"github.com/notes-api/internal/config"
	"github.com/notes-api/internal/pkg/otp"
	"github.com/notes-api/internal/transport/http/handler"
	appmiddleware "github.com/notes-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10. The auth endpoints all trigger
	// credential checks or outbound email, so they share one tight bucket.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo})
	authSvc := auth.NewService(auth.ServiceDeps{
		Users:          userSvc,
		OTP:            otp.NewIssuer(userSvc),
		Mailer:         deps.Mailer,
		JWTProvider:    deps.JWTProvider,
		GoogleVerifier: deps.GoogleVerifier,
	})
	attachmentSvc := attachment.NewService(attachment.ServiceDeps{
		AttachmentRepo: deps.AttachmentRepo,
		NoteRepo:       deps.NoteRepo,
		Blobs:          deps.S3Store,
	})
	noteSvc := note.NewService(note.ServiceDeps{
		NoteRepo:    deps.NoteRepo,
		Attachments: attachmentSvc,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	noteH := handler.NewNoteHandler(noteSvc)
	attachH := handler.NewAttachmentHandler(attachmentSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", healthH.Check)

		// ── Public auth routes ───────────────────────────────────────────────
		r.Route("/auth", func(r chi.Router) {
			r.Use(sensitiveRL.Limit)

			r.Post("/signup", authH.Signup)
			r.Post("/verify-otp", authH.VerifyOTP)
			r.Post("/signin", authH.Signin)
			r.Post("/resend-otp", authH.ResendOTP)
			r.Post("/google", authH.GoogleAuth)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me/password", userH.ChangePassword)

			r.Post("/notes", noteH.Create)
			r.Get("/notes", noteH.List)
			r.Get("/notes/{id}", noteH.Get)
			r.Put("/notes/{id}", noteH.Update)
			r.Delete("/notes/{id}", noteH.Delete)

			r.Post("/notes/{id}/attachments", attachH.Upload)
			r.Get("/notes/{id}/attachments", attachH.List)
			r.Get("/attachments/{id}", attachH.Download)
			r.Delete("/attachments/{id}", attachH.Delete)
		})
	})

	return r
}
