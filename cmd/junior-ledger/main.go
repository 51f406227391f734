package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/danielpj17/junior-ledger/api/swagger"
	"github.com/danielpj17/junior-ledger/internal/canvas"
	"github.com/danielpj17/junior-ledger/internal/extract"
	"github.com/danielpj17/junior-ledger/internal/handler"
	"github.com/danielpj17/junior-ledger/internal/ical"
	"github.com/danielpj17/junior-ledger/internal/llm"
	"github.com/danielpj17/junior-ledger/internal/middleware"
	"github.com/danielpj17/junior-ledger/internal/refresh"
	"github.com/danielpj17/junior-ledger/internal/service"
	"github.com/danielpj17/junior-ledger/internal/store"
	"github.com/danielpj17/junior-ledger/pkg/cache"
	"github.com/danielpj17/junior-ledger/pkg/config"
	"github.com/danielpj17/junior-ledger/pkg/jobs"
	"github.com/danielpj17/junior-ledger/pkg/logger"
	corsmiddleware "github.com/danielpj17/junior-ledger/pkg/middleware/cors"
	reqidmiddleware "github.com/danielpj17/junior-ledger/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// @title Junior Ledger API
// @version 0.1.0
// @description Study dashboard backend: Canvas course aggregation, cached file sync, assistant chat and a practice ledger
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	st, err := newStore(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init store", "driver", cfg.Store.Driver, "error", err)
	}
	st = service.NewMeasuredStore(st, metrics)

	gateway := canvas.NewClient(canvas.ClientParams{
		Config:           cfg.Canvas,
		MaxDownloadBytes: cfg.Sync.MaxFileSizeBytes,
		Logger:           logr,
		Observer:         metrics,
	})
	extractor := extract.New(logr)

	documents := service.NewDocumentService(service.DocumentServiceParams{
		Store:     st,
		Extractor: extractor,
		Metrics:   metrics,
		Logger:    logr,
	})
	courses := service.NewCourseService(service.CourseServiceParams{
		Gateway: gateway,
		Store:   st,
		Logger:  logr,
	})
	syncSvc := service.NewSyncService(service.SyncServiceParams{
		Gateway:   gateway,
		Extractor: extractor,
		Documents: documents,
		Store:     st,
		Metrics:   metrics,
		Logger:    logr,
		Config:    cfg.Sync,
	})
	agenda := service.NewAgendaService(service.AgendaServiceParams{
		Courses: courses,
		Colors:  courses,
		Gateway: gateway,
		Store:   st,
		Logger:  logr,
		Config:  cfg.Agenda,
	})
	calendar := service.NewCalendarService(service.CalendarServiceParams{
		Courses: courses,
		Colors:  courses,
		Gateway: gateway,
		Feed:    ical.NewFeedClient(cfg.Calendar.FeedTimeout, logr),
		Store:   st,
		Logger:  logr,
	})
	uploads := service.NewUploadService(service.UploadServiceParams{
		Store:        st,
		Extractor:    extractor,
		Documents:    documents,
		Logger:       logr,
		MaxSizeBytes: cfg.Uploads.MaxFileSizeBytes,
	})

	chatParams := service.ChatServiceParams{
		Documents:  documents,
		Courses:    courses,
		Store:      st,
		Logger:     logr,
		MaxHistory: cfg.Assistant.MaxHistory,
	}
	if cfg.Assistant.Enabled && cfg.Assistant.APIKey != "" {
		chatParams.Assistant = llm.NewAssistant(llm.AssistantParams{Config: cfg.Assistant, Logger: logr})
	} else {
		logr.Info("assistant disabled; chat will report it as unconfigured")
	}
	chat := service.NewChatService(chatParams)

	settings := refresh.NewSettings(refresh.SettingsParams{
		Store:           st,
		DefaultInterval: cfg.Refresh.DefaultInterval,
		Logger:          logr,
	})
	settings.Load(ctx)

	syncQueue := jobs.NewQueue("course-sync", func(ctx context.Context, job jobs.Job) error {
		courseID, ok := job.Payload.(int64)
		if !ok {
			return fmt.Errorf("unexpected payload %T", job.Payload)
		}
		token := storedToken(ctx, st)
		if token == "" {
			return nil
		}
		_, err := syncSvc.Sync(ctx, token, courseID)
		return err
	}, jobs.QueueConfig{
		Workers:    cfg.Sync.QueueWorkers,
		BufferSize: cfg.Sync.QueueSize,
		Logger:     logr,
	})
	syncQueue.Start(ctx)

	courseSync := refresh.NewScheduler(refresh.SchedulerParams{
		Name:     "course-sync",
		Settings: settings,
		Logger:   logr,
		Observer: metrics,
		Task: func(ctx context.Context) {
			token := storedToken(ctx, st)
			if token == "" {
				return
			}
			visible, err := courses.List(ctx, token, false)
			if err != nil {
				logr.Warn("background course listing failed", zap.Error(err))
				return
			}
			for _, course := range visible {
				job := jobs.Job{
					Key:     fmt.Sprintf("course-sync:%d", course.ID),
					Type:    "course-sync",
					Payload: course.ID,
				}
				if err := syncQueue.Enqueue(job); err != nil {
					logr.Warn("failed to enqueue course sync", zap.Int64("course_id", course.ID), zap.Error(err))
				}
			}
		},
	})
	courseSync.Start(ctx)

	agendaWarm := refresh.NewScheduler(refresh.SchedulerParams{
		Name:     "agenda",
		Settings: settings,
		Logger:   logr,
		Observer: metrics,
		Task: func(ctx context.Context) {
			token := storedToken(ctx, st)
			if token == "" {
				return
			}
			if _, _, err := agenda.Agenda(ctx, token); err != nil {
				logr.Warn("background agenda refresh failed", zap.Error(err))
			}
		},
	})
	agendaWarm.Start(ctx)

	courseHandler := handler.NewCourseHandler(courses)
	fileHandler := handler.NewFileHandler(syncSvc)
	documentHandler := handler.NewDocumentHandler(documents)
	uploadHandler := handler.NewUploadHandler(uploads)
	agendaHandler := handler.NewAgendaHandler(agenda)
	calendarHandler := handler.NewCalendarHandler(calendar)
	settingsHandler := handler.NewSettingsHandler(settings, calendar, st)
	chatHandler := handler.NewChatHandler(chat)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	canvasRoutes := api.Group("", middleware.RequireToken(st, logr))
	{
		canvasRoutes.GET("/courses", courseHandler.List)
		canvasRoutes.PATCH("/courses/:courseID", courseHandler.Update)
		canvasRoutes.GET("/courses/:courseID/color", courseHandler.Color)
		canvasRoutes.GET("/courses/:courseID/files", fileHandler.Tree)
		canvasRoutes.POST("/courses/:courseID/files/sync", fileHandler.Sync)
		canvasRoutes.GET("/courses/:courseID/files/:fileID/content", fileHandler.Content)
		canvasRoutes.GET("/courses/:courseID/documents", documentHandler.List)
		canvasRoutes.GET("/agenda", agendaHandler.Agenda)
		canvasRoutes.GET("/calendar", calendarHandler.Month)
		canvasRoutes.POST("/courses/:courseID/chat", chatHandler.Send)
		canvasRoutes.GET("/courses/:courseID/chat", chatHandler.History)
		canvasRoutes.DELETE("/courses/:courseID/chat", chatHandler.Clear)
	}

	api.GET("/uploads", uploadHandler.List)
	api.POST("/uploads", uploadHandler.Create)
	api.DELETE("/uploads/:uploadID", uploadHandler.Delete)
	api.GET("/calendar/selection", calendarHandler.GetSelection)
	api.PUT("/calendar/selection", calendarHandler.PutSelection)
	api.GET("/settings/refresh", settingsHandler.GetRefresh)
	api.PUT("/settings/refresh", settingsHandler.PutRefresh)
	api.GET("/settings/feed", settingsHandler.GetFeed)
	api.PUT("/settings/feed", settingsHandler.PutFeed)
	api.GET("/settings/token", settingsHandler.GetToken)
	api.PUT("/settings/token", settingsHandler.PutToken)

	if cfg.Ledger.Enabled {
		ledgerHandler := handler.NewLedgerHandler(service.NewLedgerService(st, nil, logr))
		api.GET("/ledger", ledgerHandler.State)
		api.POST("/ledger/entries", ledgerHandler.Post)
		api.DELETE("/ledger", ledgerHandler.Reset)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)

	select {
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	case err := <-serverErr:
		logr.Sugar().Fatalw("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown incomplete", zap.Error(err))
	}

	courseSync.Stop()
	agendaWarm.Stop()
	syncQueue.Stop()
	logr.Info("server stopped")
}

func newStore(cfg *config.Config, logr *zap.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(client, logr), nil
	case config.StoreDriverFile:
		return store.NewFileStore(cfg.Store.Dir, logr)
	case config.StoreDriverMemory:
		return store.NewMemoryStore(cfg.Store.MemoryQuotaBytes), nil
	case config.StoreDriverNone:
		return store.NewNoopStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// storedToken reads the remembered Canvas token, or returns "" when none is
// stored. Background tasks skip their run instead of failing on a miss.
func storedToken(ctx context.Context, st store.Store) string {
	var token string
	if err := st.Get(ctx, store.KeyToken, &token); err != nil {
		return ""
	}
	return token
}
