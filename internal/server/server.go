package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/comment"
	"github.com/SergeyParamoshkin/blog/internal/config"
	"github.com/SergeyParamoshkin/blog/internal/logging"
	"github.com/SergeyParamoshkin/blog/internal/metrics"
	"github.com/SergeyParamoshkin/blog/internal/stats"
	"github.com/SergeyParamoshkin/blog/internal/upload"
	"github.com/SergeyParamoshkin/blog/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

type Server struct {
	cfg     *config.Config
	logger  *zap.SugaredLogger
	metrics *metrics.Instruments
	limiter *RateLimiter

	articles *article.API
	comments *comment.API
	users    *user.API
	stats    *stats.Service
	images   *upload.API
	storage  upload.Storage
}

// New wires every store, service and handler on top of db and store.
func New(cfg *config.Config, db *gorm.DB, store cache.Store, logger *zap.SugaredLogger, m *metrics.Instruments) *Server {
	userStore := user.NewStore(db)
	articleStore := article.NewStore(db)

	articleService := article.NewService(articleStore, userStore, store, cfg.Cache.TTL, m)
	commentService := comment.NewService(comment.NewStore(db), articleStore, userStore, store)

	storage := upload.Storage{Root: cfg.Storage.Root}
	processor := upload.NewProcessor(storage.ImagesPath(), upload.ImagingCodec{MaxPixels: cfg.Upload.MaxPixels}, cfg.Upload.Quality)

	return &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		limiter: NewRateLimiter(cfg.Limit.RPS, cfg.Limit.Burst),

		articles: article.NewAPI(articleService),
		comments: comment.NewAPI(commentService),
		users:    user.NewAPI(userStore),
		stats:    stats.NewService(db, store, cfg.Cache.TTL, m),
		images:   upload.NewAPI(processor, storage, cfg.Upload.MaxBytes, m),
		storage:  storage,
	}
}

// Router builds the public API router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.cfg.HTTP.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(logging.Middleware(s.logger))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("root.")); err != nil {
			logging.FromContext(r.Context()).Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("pong")); err != nil {
			logging.FromContext(r.Context()).Errorw(err.Error())
		}
	})

	r.Route("/articles", func(r chi.Router) {
		r.Get("/", s.articles.ListArticles)         // GET /articles
		r.Post("/", s.articles.CreateArticle)       // POST /articles
		r.Get("/search", s.articles.SearchArticles) // GET /articles/search?q=

		r.Route("/{articleID}", func(r chi.Router) {
			r.Use(s.articles.ArticleCtx) // Load the *Article on the request context
			r.Get("/", s.articles.GetArticle)
			r.Put("/", s.articles.UpdateArticle)
			r.Patch("/", s.articles.UpdateArticle)
			r.Delete("/", s.articles.DeleteArticle)
			r.Get("/comments", s.comments.ListComments)
		})
	})

	r.Route("/comments", s.comments.Routes)
	r.Route("/users", s.users.Routes)
	r.Get("/stats", s.stats.GetStats)

	r.Route("/images", func(r chi.Router) {
		r.With(s.limiter.Middleware, middleware.Timeout(s.cfg.HTTP.UploadTimeout)).Post("/", s.images.UploadImage)
		r.Delete("/", s.images.DeleteImage)
	})

	FileServer(r, "/storage", filesOnly{fs: http.Dir(s.storage.Root)})

	return r
}

// DiagRouter serves operational endpoints on a separate port.
func DiagRouter(metricsHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

// Run serves the API on cfg.Addr and diag on cfg.DiagAddr until ctx is
// cancelled or either listener fails, then shuts both down.
func (s *Server) Run(ctx context.Context, diag http.Handler) error {
	api := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}
	diagSrv := &http.Server{
		Addr:        s.cfg.DiagAddr,
		Handler:     diag,
		ReadTimeout: s.cfg.HTTP.ReadTimeout,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.limiter.Run(ctx, sweepInterval)

	errs := make(chan error, 2)
	serve := func(name string, srv *http.Server) {
		s.logger.Infow("listening", "server", name, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err

			return
		}
		errs <- nil
	}
	go serve("api", api)
	go serve("diag", diagSrv)

	var err error
	pending := 2
	select {
	case <-ctx.Done():
	case err = <-errs:
		pending--
		if err != nil {
			s.logger.Errorw("server failed", "error", err)
		}
	}

	s.logger.Infow("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	err = multierr.Combine(
		err,
		api.Shutdown(shutdownCtx),
		diagSrv.Shutdown(shutdownCtx),
	)
	for ; pending > 0; pending-- {
		err = multierr.Append(err, <-errs)
	}

	return err
}
