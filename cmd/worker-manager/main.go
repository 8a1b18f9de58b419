// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sitedesk-workers/internal/analysis/actions"
	"sitedesk-workers/internal/analysis/collab"
	"sitedesk-workers/internal/analysis/pipeline"
	"sitedesk-workers/internal/common/camunda"
	"sitedesk-workers/internal/common/config"
	"sitedesk-workers/internal/common/database"
	"sitedesk-workers/internal/common/logger"
	"sitedesk-workers/internal/common/observability"
	"sitedesk-workers/internal/models"
	"sitedesk-workers/pkg/registry"

	am "sitedesk-workers/internal/workers/assistant/analyze-message"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.Timeout),
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init GenAI collaborators ---
	collabLog := &collabLoggerAdapter{log}
	genai := collab.NewGenAIClient(&collab.GenAIConfig{
		BaseURL:    cfg.APIs.GenAI.BaseURL,
		Timeout:    config.GetDuration(cfg.APIs.GenAI.Timeout),
		MaxRetries: cfg.APIs.GenAI.MaxRetries,
	}, collabLog)

	var flagger collab.FlagClassifier = genai
	var subjects collab.SubjectExtractor = genai
	if cfg.Analysis.CacheTTL > 0 {
		ttl := time.Duration(cfg.Analysis.CacheTTL) * time.Second
		flagger = collab.NewCachedClassifier(genai, redis, ttl, collabLog)
		subjects = collab.NewCachedExtractor(genai, redis, ttl, collabLog)
	}

	// --- Build the analysis pipeline ---
	analyzer := pipeline.New(pipeline.Config{
		AllowedFlags:   cfg.Analysis.AllowedFlags,
		AllowedActions: cfg.Analysis.AllowedActions,
		MultiTenant:    cfg.Analysis.MultiTenant,
		ActiveSiteID:   cfg.Analysis.ActiveSiteID,
		AutoApply:      cfg.Analysis.AutoApply,
		Debug:          cfg.Analysis.Debug,
		CollabTimeout:  config.GetDuration(cfg.Analysis.CollabTimeout),
		MaxSubjects:    cfg.Analysis.MaxSubjects,
		Presets:        convertPresets(cfg.Analysis.ActionPresets),
	}, flagger, subjects, &pipelineLoggerAdapter{log})

	// --- Register workers ---
	if reg, err := registry.LoadRegistry("configs/activity-registry.json"); err != nil {
		zapLog.Warn("activity registry not loaded", zap.Error(err))
	} else if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	} else if reg.FindByTaskType(am.TaskType) == nil {
		zapLog.Warn("task type missing from activity registry", zap.String("taskType", am.TaskType))
	}

	if config.IsWorkerEnabled(cfg, am.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, am.TaskType)
		handler := am.NewHandler(
			&am.Config{
				Timeout:        config.GetDuration(wcfg.Timeout),
				ValidateOutput: true,
			},
			analyzer,
			obs,
			&analyzeMessageLoggerAdapter{log},
		)
		startWorker(zeebeClient, am.TaskType, wcfg, handler.Handle, zapLog)
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "ready"
			code := http.StatusOK
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status = "not_ready"
				code = http.StatusServiceUnavailable
			} else if err := redis.Ping(r.Context()); err != nil {
				status = "not_ready"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// convertPresets maps the YAML preset table onto the synthesizer's preset
// type. Viper lowercases map keys during unmarshal, so keys are restored to
// their canonical field names before lookup.
func convertPresets(in map[string][]config.ActionPreset) map[string][]actions.Preset {
	if len(in) == 0 {
		return nil
	}
	canonical := map[string]string{}
	for _, field := range []string{
		models.FieldPhoneNumber,
		models.FieldBusinessHours,
		models.FieldGalleryPhotos,
		models.FieldPricing,
		models.FieldServiceList,
		models.FieldHomepageContent,
		models.FieldHeaderBanner,
		models.FieldPhoneEmphasis,
		models.FieldSiteDesign,
		models.FieldCouponPromotion,
	} {
		canonical[strings.ToLower(field)] = field
	}

	out := make(map[string][]actions.Preset, len(in))
	for field, presets := range in {
		if name, ok := canonical[strings.ToLower(field)]; ok {
			field = name
		}
		converted := make([]actions.Preset, 0, len(presets))
		for _, p := range presets {
			converted = append(converted, actions.Preset{Name: p.Name, Weight: p.Weight})
		}
		out[field] = converted
	}
	return out
}

// Logger adapters for packages that declare their own Logger interfaces
type collabLoggerAdapter struct {
	logger.Logger
}

func (a *collabLoggerAdapter) With(fields map[string]interface{}) collab.Logger {
	return &collabLoggerAdapter{a.Logger.With(fields)}
}

type pipelineLoggerAdapter struct {
	logger.Logger
}

func (a *pipelineLoggerAdapter) With(fields map[string]interface{}) pipeline.Logger {
	return &pipelineLoggerAdapter{a.Logger.With(fields)}
}

type analyzeMessageLoggerAdapter struct {
	logger.Logger
}

func (a *analyzeMessageLoggerAdapter) With(fields map[string]interface{}) am.Logger {
	return &analyzeMessageLoggerAdapter{a.Logger.With(fields)}
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started", zap.String("taskType", taskType))
}
