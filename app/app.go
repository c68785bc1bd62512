package app

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pcb-shop/config"
	"pcb-shop/controllers"
	"pcb-shop/handler"
	"pcb-shop/libs"
	"pcb-shop/middleware"
	"pcb-shop/models"
	"pcb-shop/repositories"
	"pcb-shop/routes"
	"pcb-shop/services"
)

// App holds the wired router and the resources it must release.
type App struct {
	Router   *gin.Engine
	Sessions *services.SessionManager
	Logger   zerolog.Logger

	events *libs.OrderEventPublisher
}

// New wires the service from config.AppConfig. Postgres, Redis, Kafka and SMTP are optional;
// a missing one disables the feature that needs it.
func New() *App {
	cfg := config.AppConfig
	logger := libs.NewLogger(cfg.AppEnv)
	metrics := libs.NewMetrics("checkout")
	client := libs.NewBackendClient(cfg.APIBaseURL, cfg.APITimeout)

	deps := services.SessionDeps{
		CartRemote: client,
		Addresses:  client,
		Fees:       client,
		FeeBreaker: services.NewFeeBreaker("ghtk-fee"),
		Observer:   metrics,
		Orders:     client,
		Origin: models.Origin{
			Province: cfg.PickProvince,
			District: cfg.PickDistrict,
			Ward:     cfg.PickWard,
			Address:  cfg.PickAddress,
		},
		DefaultWeightGrams: cfg.DefaultItemWeightGrams,
		Logger:             logger,
	}

	checks := map[string]handler.Check{}

	config.ConnectRedis()
	if config.RedisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return config.RedisClient.Ping(ctx).Err() }
		deps.Snapshots = repositories.NewCartSnapshotRepository(config.RedisClient, cfg.CartSnapshotTTL)
		deps.Payments = services.NewPaymentCatalog(client,
			repositories.NewPaymentMethodCache(config.RedisClient, cfg.PaymentMethodsCacheTTL), logger)
	} else {
		deps.Snapshots = repositories.NewMemoryCartSnapshotRepository()
		deps.Payments = services.NewPaymentCatalog(client, nil, logger)
	}

	var history controllers.OrderHistory
	if err := config.ConnectDB(); err != nil {
		log.Printf("Order journal disabled: %v", err)
	} else {
		orders := repositories.NewOrderRepository(config.DB)
		deps.Recorder = orders
		history = orders
		checks["postgres"] = config.DB.Ping
	}

	a := &App{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		a.events = libs.NewOrderEventPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		deps.Events = a.events
	}
	if mailer, err := libs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom); err != nil {
		log.Printf("Order confirmation mail disabled: %v", err)
	} else {
		deps.Notifier = mailer
	}

	a.Sessions = services.NewSessionManager(deps, cfg.SessionIdleTimeout)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))
	routes.SetupRoutes(router, routes.Deps{
		Sessions: a.Sessions,
		Orders:   history,
		Metrics:  metrics,
		Checks:   checks,
	})
	a.Router = router
	return a
}

func (a *App) Close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("kafka writer close failed")
		}
	}
	config.CloseRedis()
	config.CloseDB()
}
