// Package server exposes an analysis session over a JSON HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/pipeline"
)

// APIPrefix is the mount point of every route.
const APIPrefix = "/api/v1"

// Server routes API requests to a pipeline session.
type Server struct {
	session *pipeline.Session
	schemas schemas
	router  chi.Router
}

// New builds the router for sess.
func New(sess *pipeline.Session, cfg config.ServerConfig) (*Server, error) {
	sc, err := loadSchemas()
	if err != nil {
		return nil, err
	}

	s := &Server{session: sess, schemas: sc}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", s.health)

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", s.listProperties)
			r.Post("/", s.createProperty)
			r.Post("/batch", s.createBatch)
			r.Get("/top", s.topProperties)
			r.Get("/{id}", s.getProperty)
			r.Delete("/{id}", s.deleteProperty)
		})

		r.Get("/summary", s.summary)

		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.putSettings)
		r.Get("/settings/history", s.settingsHistory)

		r.Get("/export.csv", s.exportCSV)
		r.Get("/export.xlsx", s.exportXLSX)
	})

	s.router = r
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// HTTPServer wraps the handler in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("server: request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
