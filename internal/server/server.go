package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"

	"github.com/nakambe-watch/nakambe-dashboard/internal/delivery"
	"github.com/nakambe-watch/nakambe-dashboard/internal/logging"
	"github.com/nakambe-watch/nakambe-dashboard/internal/notification"
	"github.com/nakambe-watch/nakambe-dashboard/web"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	dash    *delivery.Dashboard
	origins []string
}

func New(dash *delivery.Dashboard, origins []string) *Server {
	return &Server{dash: dash, origins: origins}
}

// Routes wires middlewares and endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: accessLog{}, NoColor: true}))
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(web.IndexHTML)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(web.OpenAPI)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/api/openapi.yaml"),
	))

	r.Route("/api", func(api chi.Router) {
		api.Get("/years", s.handleYears)
		api.Route("/maps/{year}", func(mr chi.Router) {
			mr.Get("/", s.handleMap)
			mr.Get("/download", s.handleDownload)
		})
		api.Get("/compare", s.handleCompare)
		api.Get("/indices", s.handleIndices)
		api.Get("/indices/chart.png", s.handleChart)
		api.Get("/timelapse.avi", s.handleTimelapse)
		api.Get("/assets", s.handleAssets)
		api.Get("/basin", s.handleBasin)
	})

	return r
}

// accessLog sends chi request lines through the application logger.
type accessLog struct{}

func (accessLog) Print(v ...interface{}) {
	logging.Infof("%s", fmt.Sprint(v...))
}

// recoverer logs a handler panic, reports it to Discord and answers 500.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			stack := debug.Stack()
			logging.Errorf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, stack)
			msg := fmt.Sprintf("Nakambé dashboard panic:\n\n%v\n\nRequest: %s %s\n\nStack trace:\n%s", rec, r.Method, r.URL.Path, stack)
			if err := notification.SendDiscordErrorNotification(msg); err != nil {
				logging.Warnf("failed to send notification: %v", err)
			}
			writeError(w, http.StatusInternalServerError, "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Infof("Nakambé dashboard listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Infof("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
