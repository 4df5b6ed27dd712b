package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"telecare.dev/vitals-alert-service/pkg/common"
	"telecare.dev/vitals-alert-service/pkg/db"
	vitalsHttp "telecare.dev/vitals-alert-service/pkg/http"
	"telecare.dev/vitals-alert-service/pkg/models"
	"telecare.dev/vitals-alert-service/pkg/vitals"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	vitalsDbType := os.Getenv(common.EnvKeyVitalsDBType)
	switch vitalsDbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	default:
		log.Fatal("Unknown VITALS_DB_TYPE: " + vitalsDbType)
	}

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyVitalsHttpHostPort))

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyVitalsDefaultRate), 64); err != nil {
		log.Fatal("Invalid VITALS_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyVitalsDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid VITALS_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	logger := common.GetLogger()

	var fileSpecs []models.ThresholdSpec
	if thresholdsFile := strings.TrimSpace(os.Getenv(common.EnvKeyVitalsThresholdsFile)); thresholdsFile != "" {
		if fileSpecs, err = vitals.LoadThresholdFile(thresholdsFile); err != nil {
			log.Fatal("Failed to load thresholds file:", err)
		}
		logger.Info("Loaded threshold overrides from file",
			zap.String("path", thresholdsFile),
			zap.Int("count", len(fileSpecs)))
	}

	core, err := vitals.NewVitals(*dbInstance, fileSpecs, vitals.EngineOpts{
		TriggerCount:    envInt(common.EnvKeyVitalsTriggerCount),
		Cooldown:        envDuration(common.EnvKeyVitalsCooldown),
		DispatchTimeout: envDuration(common.EnvKeyVitalsDispatchTimeout),
	})
	if err != nil {
		log.Fatal("Failed to initialize vitals core:", err)
	}

	core.WithDispatcher(buildDispatcher(logger))
	core.WithServices(vitals.ServiceOpts{
		Reading:   core.GetIReading(),
		Alert:     core.GetIAlert(),
		Threshold: core.GetIThreshold(),
		Status:    core.GetIStatus(),
	})

	limiterStore := vitals.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst))

	idleEviction := envDuration(common.EnvKeyVitalsIdleEviction)
	if idleEviction <= 0 {
		idleEviction = 24 * time.Hour
	}
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			evicted := core.States().EvictIdle(time.Now(), idleEviction)
			for _, deviceID := range evicted {
				limiterStore.RemoveLimiter(deviceID)
			}
			if len(evicted) > 0 {
				logger.Info("Evicted idle devices", zap.Int("count", len(evicted)))
			}
		}
	}()

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	logger.Info("Starting HTTP server on port " + httpHostPort)
	rs := &vitalsHttp.RestfulServer{
		Server:           gin.Default(),
		Vitals:           core,
		RateLimiterStore: limiterStore,
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.Float64("default_rate", defaultRate),
		zap.Int64("default_burst", defaultBurst),
		zap.Int("trigger_count", core.Opts.TriggerCount),
		zap.Duration("cooldown", core.Opts.Cooldown))

	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}

func buildDispatcher(logger *zap.Logger) vitals.Dispatcher {
	switch os.Getenv(common.EnvKeyVitalsDispatcher) {
	case "webhook":
		webhookURL := strings.TrimSpace(os.Getenv(common.EnvKeyVitalsWebhookURL))
		if webhookURL == "" {
			log.Fatal("VITALS_DISPATCHER=webhook requires VITALS_WEBHOOK_URL")
		}
		logger.Info("Using webhook dispatcher", zap.String("url", webhookURL))
		return vitals.NewWebhookDispatcher(webhookURL)
	default:
		logger.Info("Using log dispatcher")
		return vitals.LogDispatcher{}
	}
}

// envInt reads an optional integer env var; 0 means "use the default".
func envInt(key string) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid %s, should be an int value", key)
	}
	return v
}

// envDuration reads an optional duration env var (e.g. "10m"); 0 means "use
// the default".
func envDuration(key string) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Invalid %s, should be a duration like 10m", key)
	}
	return v
}
