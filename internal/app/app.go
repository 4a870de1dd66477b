package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"interview_prep_backend/internal/analytics"
	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/controller"
	"interview_prep_backend/internal/middleware"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/service"
	"interview_prep_backend/pkg/database"
	"interview_prep_backend/pkg/logger"
	"interview_prep_backend/pkg/monitoring"
	"interview_prep_backend/pkg/security"
	"interview_prep_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Engine   *analytics.Engine
	Services *Services

	// 关闭时逆序执行
	closers         []func(context.Context) error
	configCallbacks []func(*config.Config)
	cancel          context.CancelFunc
}

type repositories struct {
	session  *repository.SessionRepository
	feedback *repository.FeedbackRepository
}

type Services struct {
	Interview *service.InterviewService
	Analytics *service.AnalyticsService
}

type controllers struct {
	interview *controller.InterviewController
	analytics *controller.AnalyticsController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 把重新加载的配置交给所有回调
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		session:  repository.NewSessionRepository(db),
		feedback: repository.NewFeedbackRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Services, error) {
	evaluator, err := service.NewEvaluator(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("init evaluator: %w", err)
	}

	var (
		locker service.SessionLocker
		cache  service.ReportCache
	)
	if rdb != nil {
		locker = service.NewRedisSessionLocker(rdb, cfg.Analytics.LockTimeout())
		cache = service.NewRedisReportCache(rdb, cfg.Analytics.ReportCacheTTL())
	}

	interview := service.NewInterviewService(db, repos.session, repos.feedback, evaluator, a.Engine, locker, cache)
	if timeout := cfg.Analytics.LockTimeout(); timeout > 0 {
		interview.LockTimeout = timeout
	}

	return &Services{
		Interview: interview,
		Analytics: service.NewAnalyticsService(repos.session, repos.feedback, a.Engine, cache),
	}, nil
}

func (a *App) initControllers(s *Services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		interview: controller.NewInterviewController(s.Interview),
		analytics: controller.NewAnalyticsController(s.Analytics, s.Interview),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(ctx context.Context, router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.L()))
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(cfg.Tracing.ServiceName))
	}

	router.Use(monitoring.MetricsMiddleware())
}

func tunablesFrom(cfg config.AnalyticsConfig) analytics.Tunables {
	return analytics.Tunables{
		TrendThreshold: cfg.TrendThreshold,
		InsightListCap: cfg.InsightListCap,
	}
}

// OpenStore 初始化日志与数据库，migrate/rebuild 命令也使用
func OpenStore(cfg *config.Config) (*gorm.DB, error) {
	if logger.Log == nil {
		logger.InitLogger(cfg)
	}
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	return db, nil
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.L().Info("Logger initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		Engine: analytics.NewEngine(tunablesFrom(cfg.Analytics)),
		cancel: cancel,
	}

	db, err := OpenStore(cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		cancel()
		return nil, err
	}
	app.DB = db
	app.closers = append(app.closers, func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			app.Close(ctx)
			return nil, fmt.Errorf("init redis: %w", err)
		}
		app.Redis = rdb
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
	} else {
		logger.L().Info("Redis disabled, using in-process session locks")
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(ctx, cfg.Tracing)
		if err != nil {
			app.Close(ctx)
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		app.closers = append(app.closers, shutdown)
	}

	// 监控初始化
	monitoring.Init()

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, db, app.Redis)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Services = services
	controllers := app.initControllers(services, db, app.Redis)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Engine.SetTunables(tunablesFrom(newCfg.Analytics))
		logger.L().Info("Analytics tunables reloaded",
			zap.Float64("trend_threshold", newCfg.Analytics.TrendThreshold),
			zap.Int("insight_list_cap", newCfg.Analytics.InsightListCap))
	})

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	app.Router = router
	app.setupMiddlewares(ctx, router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app, nil
}

// Close 释放资源，可以重复调用
func (a *App) Close(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.L().Error("Failed to release resource", zap.Error(err))
		}
	}
	a.closers = nil
	logger.Sync()
}

// Run 启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅关闭
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Close(context.Background())
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.L().Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout())
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	a.Close(shutdownCtx)
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.L().Info("Server exiting")
	return nil
}
