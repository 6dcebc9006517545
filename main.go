package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/address-extractor/app/config"
	"github.com/address-extractor/app/controllers"
	"github.com/address-extractor/app/services"
	"github.com/address-extractor/internal/engine"
	"github.com/address-extractor/internal/extractors"
	"github.com/address-extractor/internal/gazetteer"
	"github.com/address-extractor/internal/geo"
	"github.com/address-extractor/internal/search"
	"github.com/address-extractor/routes"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	loadConfig()

	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting address extraction service")

	if path := viper.GetString("config_file"); path != "" {
		if err := config.Load(path); err != nil {
			logger.Warn("could not load extractor config, using defaults",
				zap.String("path", path), zap.Error(err))
		}
	}

	// Geographic hierarchy. The service still runs without it, with the
	// gazetteer and geographic stages degraded.
	store, err := geo.LoadPlaceStore(config.C.Data.DivisionDir, config.C.Data.PostalFile, logger)
	if err != nil {
		logger.Warn("geographic hierarchy unavailable", zap.Error(err))
		store = geo.NewPlaceStore(logger)
	}

	gaz := gazetteer.Load(config.C.Data.CorpusFile, store, logger)
	validator := geo.NewValidator(store, logger)

	eng := engine.New(engine.Options{
		Stages:    config.C.Stages,
		CacheSize: config.C.CacheSize,
		Tagger:    extractors.NewLexiconTagger(gaz.AreaNames()),
		Gazetteer: gaz,
		Validator: validator,
		Logger:    logger,
	})

	cacheService := initCacheService(eng.GazetteerVersion(), logger)
	if cacheService != nil {
		defer cacheService.Close()
	}

	extractionService := services.NewExtractionService(eng, cacheService, logger)

	searcher := initSearcher(logger)

	addressController := controllers.NewAddressController(extractionService, store, logger)
	adminController := controllers.NewAdminController(extractionService, cacheService, searcher, store, logger)

	if getEnv("APP_ENV", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, addressController, adminController)

	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

// initCacheService builds the deepest cache tier the configured backends
// allow: Redis+Mongo hybrid, a single backend, or an in-memory TTL cache.
func initCacheService(gazetteerVersion string, logger *zap.Logger) services.ICacheService {
	var redisCache *services.RedisCacheService
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		rc, err := services.NewRedisCacheService(redisURL, logger)
		if err != nil {
			logger.Warn("redis cache unavailable", zap.Error(err))
		} else {
			redisCache = rc
		}
	}

	var mongoCache *services.MongoCacheService
	if mongoURL := os.Getenv("MONGO_URL"); mongoURL != "" {
		db, err := initMongoDB(mongoURL, logger)
		if err != nil {
			logger.Warn("mongodb cache unavailable", zap.Error(err))
		} else {
			l1Size := getEnvInt("L1_CACHE_SIZE", 10000)
			mc, err := services.NewMongoCacheService(db, l1Size, gazetteerVersion, logger)
			if err != nil {
				logger.Warn("mongodb cache init failed", zap.Error(err))
			} else {
				mongoCache = mc
				if err := mc.WarmUp(context.Background(), l1Size/2); err != nil {
					logger.Warn("cache warm up failed", zap.Error(err))
				}
			}
		}
	}

	switch {
	case redisCache != nil && mongoCache != nil:
		logger.Info("using hybrid redis+mongo cache")
		return services.NewHybridCacheService(redisCache, mongoCache, logger)
	case redisCache != nil:
		logger.Info("using redis cache")
		return redisCache
	case mongoCache != nil:
		logger.Info("using mongodb cache")
		return mongoCache
	default:
		logger.Info("using in-memory cache")
		return services.NewCacheService(24 * time.Hour)
	}
}

// initSearcher connects to Meilisearch if configured; place search is
// optional.
func initSearcher(logger *zap.Logger) *search.PlaceSearcher {
	host := viper.GetString("meilisearch.url")
	if host == "" {
		return nil
	}

	searcher, err := search.NewPlaceSearcher(search.SearchConfig{
		Host:      host,
		APIKey:    viper.GetString("meilisearch.master_key"),
		IndexName: viper.GetString("meilisearch.index"),
		Timeout:   30 * time.Second,
	}, logger)
	if err != nil {
		logger.Warn("place search unavailable", zap.Error(err))
		return nil
	}
	return searcher
}

func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("meilisearch.url", "")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("meilisearch.index", "places")
	viper.SetDefault("config_file", "")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("no config file loaded: %v", err)
	}
}

func initLogger() *zap.Logger {
	env := getEnv("APP_ENV", "development")

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("cannot initialize logger:", err)
	}
	return logger
}

func initMongoDB(mongoURL string, logger *zap.Logger) (*mongo.Database, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	dbName := getEnv("MONGO_DB", "address_extractor")
	logger.Info("connected to mongodb", zap.String("database", dbName))
	return client.Database(dbName), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
