// Package app wires repositories, services and handlers into one router.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"snapbook/internal/config"
	"snapbook/internal/domain/auth"
	"snapbook/internal/domain/availability"
	"snapbook/internal/domain/booking"
	"snapbook/internal/domain/catalog"
	"snapbook/internal/domain/payment"
	"snapbook/internal/domain/realtime"
	"snapbook/internal/domain/request"
	"snapbook/internal/domain/upload"
	"snapbook/internal/domain/wizard"
	"snapbook/internal/events"
	"snapbook/internal/jobs"
	"snapbook/internal/middleware"
	"snapbook/internal/pkg/jwt"
	"snapbook/internal/pkg/lock"
	"snapbook/internal/pkg/session"
)

// Deps are the process-level resources the app is built on.
type Deps struct {
	Config    *config.Config
	Log       *logrus.Logger
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher events.Publisher
	Gateway   payment.Gateway
	Uploader  upload.Uploader
}

type App struct {
	Router *gin.Engine
	Hub    *realtime.Hub
	Jobs   *jobs.Scheduler
}

// New builds the services and mounts every route under /api/v1.
func New(d Deps) (*App, error) {
	cfg, log := d.Config, d.Log

	tokens := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	authService := auth.NewService(auth.NewUserRepository(d.DB), auth.NewRedisSessionStore(d.Redis), tokens, log)

	hub := realtime.NewHub(log)

	catalogService := catalog.NewService(catalog.NewRepository(d.DB))
	availabilityService := availability.NewService(availability.NewRepository(d.DB))
	bookingService := booking.NewService(booking.NewRepository(d.DB), catalogService, log)
	uploadService := upload.NewService(upload.NewRepository(d.DB), d.Uploader, log)
	wizardService := wizard.NewService(
		wizard.NewRedisStore(d.Redis, cfg.Wizard.DraftTTL),
		uploadService,
		bookingService,
		cfg.Upload.Folder,
		log,
	)
	requestService := request.NewService(request.NewRepository(d.DB), catalogService, hub, d.Publisher, cfg.Kafka.OffersTopic, log)
	paymentService := payment.NewService(
		payment.NewRepository(d.DB),
		bookingService,
		d.Gateway,
		lock.NewRedisLocker(d.Redis),
		hub,
		d.Publisher,
		payment.Options{
			ReturnURL:  cfg.MoMo.ReturnURL,
			NotifyURL:  cfg.MoMo.NotifyURL,
			AttemptTTL: cfg.MoMo.AttemptTTL,
			LockTTL:    cfg.MoMo.LockTTL,
			Topic:      cfg.Kafka.PaymentsTopic,
		},
		log,
	)

	signInLimit, err := rateLimit(d.Redis, "sign-in", cfg.Limits.SignIn)
	if err != nil {
		return nil, err
	}
	callbackLimit, err := rateLimit(d.Redis, "payment-callback", cfg.Limits.Callback)
	if err != nil {
		return nil, err
	}

	authHandler := auth.NewHandler(authService)
	catalogHandler := catalog.NewHandler(catalogService)
	availabilityHandler := availability.NewHandler(availabilityService)
	bookingHandler := booking.NewHandler(bookingService)
	uploadHandler := upload.NewHandler(uploadService, cfg.Upload.Folder)
	wizardHandler := wizard.NewHandler(wizardService, booking.HandleError)
	requestHandler := request.NewHandler(requestService)
	paymentHandler := payment.NewHandler(paymentService)
	realtimeHandler := realtime.NewHandler(hub, cfg.Server.CORSOrigins)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.Server.CORSOrigins),
	)
	r.GET("/health", healthCheck(d.DB))
	if cfg.Upload.Provider == upload.ProviderLocal {
		r.Static(cfg.Upload.StaticURLBase, cfg.Upload.BaseDir)
	}

	v1 := r.Group("/api/v1")
	jwtAuth := middleware.JWTAuth(authService)

	// the socket outlives any request deadline
	realtimeHandler.RegisterRoutes(v1.Group("", jwtAuth))

	api := v1.Group("", middleware.Timeout(cfg.Server.RequestTimeout))
	{
		authHandler.RegisterPublicRoutes(api, signInLimit)
		catalogHandler.RegisterRoutes(api)
		availabilityHandler.RegisterRoutes(api)
		paymentHandler.RegisterCallbackRoutes(api, callbackLimit)

		protected := api.Group("", jwtAuth)
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			uploadHandler.RegisterRoutes(protected)
			requestHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
			wizardHandler.RegisterRoutes(protected.Group("", middleware.RequireRole(session.RoleCustomer)))

			photographer := protected.Group("", middleware.RequireRole(session.RolePhotographer, session.RoleAdmin))
			catalogHandler.RegisterProtectedRoutes(photographer)
			availabilityHandler.RegisterProtectedRoutes(photographer)
		}
	}

	return &App{
		Router: r,
		Hub:    hub,
		Jobs:   jobs.NewScheduler(paymentService, availabilityService, log),
	}, nil
}

// NewUploader picks the image host named by the upload config.
func NewUploader(cfg config.UploadConfig) (upload.Uploader, error) {
	switch cfg.Provider {
	case upload.ProviderCloudinary:
		cld, err := upload.NewCloudinaryUploader(cfg.CloudinaryURL)
		if err != nil {
			return nil, err
		}
		return cld, nil
	case upload.ProviderLocal, "":
		return upload.NewLocalUploader(cfg.BaseDir, cfg.StaticURLBase), nil
	}
	return nil, fmt.Errorf("unknown upload provider %q", cfg.Provider)
}

func rateLimit(rdb *redis.Client, routeID, raw string) (gin.HandlerFunc, error) {
	rate, err := middleware.ParseRate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s rate limit: %w", routeID, err)
	}
	store, err := middleware.NewRateLimitStore(rdb, routeID)
	if err != nil {
		return nil, fmt.Errorf("%s rate limit store: %w", routeID, err)
	}
	return middleware.RateLimit(store, rate), nil
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"timestamp": time.Now().Unix(),
		})
	}
}
