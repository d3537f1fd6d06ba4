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
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"assessment-workers/internal/common/aws"
	"assessment-workers/internal/common/config"
	"assessment-workers/internal/common/database"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/observability"
	"assessment-workers/internal/repository"
	"assessment-workers/internal/scoring/loader"
	"assessment-workers/internal/scoring/onet"

	// Assessment workers (4)
	cc "assessment-workers/internal/workers/assessment/compare-candidates"
	rb "assessment-workers/internal/workers/assessment/resolve-benchmarks"
	ss "assessment-workers/internal/workers/assessment/score-session"
	td "assessment-workers/internal/workers/assessment/template-diagnostics"

	// Communication workers (1)
	nr "assessment-workers/internal/workers/communication/notify-result"
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
			delay *= 2
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
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

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

	// --- Repositories & scoring primitives ---
	competencyRepo := repository.NewCompetencyRepository(pg.DB)
	resultRepo := repository.NewResultRepository(pg.DB)
	templateRepo := repository.NewTemplateRepository(pg.DB)
	teamRepo := repository.NewTeamRepository(pg.DB)
	catalogRepo := repository.NewCatalogRepository(pg.DB)

	resilientLoader := loader.NewResilientLoader(competencyRepo, redis.Client, loader.ResilientLoaderOptions{
		CacheTTL:         cfg.Scoring.CacheTTL,
		FailureThreshold: cfg.Scoring.BreakerFailureThreshold,
		Cooldown:         cfg.Scoring.BreakerCooldown,
	}, log)
	batchLoader := loader.NewBatchLoader(resilientLoader, log)

	onetClient := onet.NewClient(onet.ClientConfig{
		BaseURL:  cfg.Taxonomy.BaseURL,
		Username: cfg.Taxonomy.Username,
		Password: cfg.Taxonomy.Password,
		Timeout:  time.Duration(cfg.Taxonomy.Timeout) * time.Millisecond,
	}, log)

	// --- Register workers ---

	// Resolve Benchmarks
	if cfg.Workers[rb.TaskType].Enabled {
		rbConfig := rb.LoadConfig()
		rbConfig.Timeout = time.Duration(cfg.Workers[rb.TaskType].Timeout) * time.Millisecond
		service := rb.NewService(rb.ServiceDependencies{
			Logger:   log,
			Profiles: onetClient,
			Catalog:  competencyRepo,
		}, rbConfig)
		handler := rb.NewHandler(rbConfig, service, log)
		startWorker(zeebeClient, rb.TaskType, cfg.Workers[rb.TaskType], handler.Handle, obs, zapLog)
	}

	// Compare Candidates
	if cfg.Workers[cc.TaskType].Enabled {
		ccConfig := cc.LoadConfig()
		ccConfig.Timeout = time.Duration(cfg.Workers[cc.TaskType].Timeout) * time.Millisecond
		if cfg.Scoring.DiversityThreshold > 0 {
			ccConfig.DiversityThreshold = cfg.Scoring.DiversityThreshold
		}
		if cfg.Scoring.CoverageThreshold > 0 {
			ccConfig.CoverageThreshold = cfg.Scoring.CoverageThreshold
		}
		service := cc.NewService(cc.ServiceDependencies{
			Logger:    log,
			Results:   resultRepo,
			Templates: templateRepo,
			Teams:     teamRepo,
		}, ccConfig)
		handler := cc.NewHandler(ccConfig, service, log)
		startWorker(zeebeClient, cc.TaskType, cfg.Workers[cc.TaskType], handler.Handle, obs, zapLog)
	}

	// Template Diagnostics
	if cfg.Workers[td.TaskType].Enabled {
		tdConfig := td.LoadConfig()
		tdConfig.Timeout = time.Duration(cfg.Workers[td.TaskType].Timeout) * time.Millisecond
		if cfg.Scoring.RequiredQuestionsPerIndicator > 0 {
			tdConfig.DefaultRequiredPerIndicator = cfg.Scoring.RequiredQuestionsPerIndicator
		}
		service := td.NewService(td.ServiceDependencies{
			Logger:    log,
			Templates: templateRepo,
			Catalog:   catalogRepo,
		}, tdConfig)
		handler := td.NewHandler(tdConfig, service, log)
		startWorker(zeebeClient, td.TaskType, cfg.Workers[td.TaskType], handler.Handle, obs, zapLog)
	}

	// Score Session
	if cfg.Workers[ss.TaskType].Enabled {
		ssConfig := ss.LoadConfig()
		ssConfig.Timeout = time.Duration(cfg.Workers[ss.TaskType].Timeout) * time.Millisecond
		service := ss.NewService(ss.ServiceDependencies{
			Logger:       log,
			Answers:      catalogRepo,
			Templates:    templateRepo,
			Competencies: batchLoader,
		}, ssConfig)
		handler := ss.NewHandler(ssConfig, service, log)
		startWorker(zeebeClient, ss.TaskType, cfg.Workers[ss.TaskType], handler.Handle, obs, zapLog)
	}

	// Notify Result
	if cfg.Workers[nr.TaskType].Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to create SES client", zap.Error(err))
		}
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to create SNS client", zap.Error(err))
		}

		nrConfig := nr.DefaultConfig()
		nrConfig.Timeout = time.Duration(cfg.Workers[nr.TaskType].Timeout) * time.Millisecond
		nrConfig.Region = cfg.Notifications.AWS.Region
		if cfg.Notifications.AWS.SES.FromEmail != "" {
			nrConfig.FromAddress = cfg.Notifications.AWS.SES.FromEmail
		}
		nrConfig.TopicARN = cfg.Notifications.AWS.SNS.TopicARN
		if err := nrConfig.Validate(); err != nil {
			zapLog.Fatal("invalid notify-result config", zap.Error(err))
		}
		service := nr.NewService(nr.ServiceDependencies{
			Logger:    log,
			Results:   resultRepo,
			Email:     sesClient,
			Publisher: snsClient,
		}, nrConfig)
		handler := nr.NewHandler(nrConfig, service, log)
		startWorker(zeebeClient, nr.TaskType, cfg.Workers[nr.TaskType], handler.Handle, obs, zapLog)
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
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
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

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), obs *observability.Observability, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		handlerFunc(jobClient, job)
		obs.RecordJobHandled(context.Background(), taskType, time.Since(start))
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
