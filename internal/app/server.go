package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/tevslin/emailai/internal/api/handlers"
	appMiddleware "github.com/tevslin/emailai/internal/api/middlewares"
	"github.com/tevslin/emailai/internal/config"
	"github.com/tevslin/emailai/internal/core"
	ingestor "github.com/tevslin/emailai/internal/core/ingestion_engine"
	"github.com/tevslin/emailai/internal/core/mailpage"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        logrus.FieldLogger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, obj core.ObjectClient, ing ingestor.Ingestor, engine *mailpage.Engine, log logrus.FieldLogger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, obj, ing, engine, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// NewRouter returns the chi router serving the API.
func NewRouter(cfg *config.Config, obj core.ObjectClient, ing ingestor.Ingestor, engine *mailpage.Engine, log logrus.FieldLogger) http.Handler {
	docHandler := handlers.NewDocumentHandler(obj, ing, engine, cfg, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", handlers.Health)

	r.Route("/api", func(api chi.Router) {
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
			protected.Post("/documents/parse", docHandler.ParseDocuments)
			protected.Post("/documents/upload", docHandler.UploadDocument)
			protected.Post("/documents/ingest", docHandler.IngestDocument)
			protected.Get("/jobs/{id}", docHandler.GetJob)
		})
	})

	return r
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
