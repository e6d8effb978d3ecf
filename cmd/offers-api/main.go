package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/offers-api/api/swagger"
	"github.com/noah-isme/offers-api/internal/handler"
	"github.com/noah-isme/offers-api/internal/middleware"
	"github.com/noah-isme/offers-api/internal/repository"
	"github.com/noah-isme/offers-api/internal/service"
	"github.com/noah-isme/offers-api/pkg/config"
	"github.com/noah-isme/offers-api/pkg/database"
	"github.com/noah-isme/offers-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/offers-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/offers-api/pkg/middleware/requestid"
)

// @title Offers API
// @version 1.0.0
// @description Job offers marketplace: offer search, publishing and reference data
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, db, metrics, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
}

func newRouter(cfg *config.Config, db *sqlx.DB, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	validate := validator.New()

	offerRepo := repository.NewOfferRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})
	offerSvc := service.NewOfferService(offerRepo, companyRepo, referenceRepo, database.NewTxManager(db), validate, metrics, logr,
		service.OfferServiceConfig{SanitizeHTML: cfg.Offers.SanitizeHTML})
	referenceSvc := service.NewReferenceService(referenceRepo, metrics, logr)

	offerHandler := handler.NewOfferHandler(offerSvc)
	referenceHandler := handler.NewReferenceHandler(referenceSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		r.Use(middleware.Metrics(metrics))
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/offers", offerHandler.List)
	api.GET("/offers/:id", offerHandler.Get)
	api.GET("/professions", referenceHandler.Professions)
	api.GET("/specializations", referenceHandler.Specializations)
	api.GET("/agreement-types", referenceHandler.AgreementTypes)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))
	secured.POST("/offers", offerHandler.Create)
	secured.PATCH("/offers/:id", offerHandler.Update)

	return r
}
