package main

import (
	"encoding/gob"
	"log"
	"net/http"
	"time"

	"github.com/openml/openml-go/api"
	"github.com/openml/openml-go/api/pipeline"
	"github.com/openml/openml-go/api/queue"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const envFile = "openml.env"

var (
	// populated at compile time based on data injected by the makefile
	version   = "unset"
	timestamp = "unset"
)

func main() {
	// Load environment
	env, err := config.Load(envFile)
	if err != nil {
		log.Fatal(err)
	}

	// Setup logging
	logger, err := config.NewLogger(env.Mode)
	if err != nil {
		log.Fatal(err)
	}
	if env.LogFile != "" {
		logger = withLogFile(logger, env.LogFile)
	}

	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()

	config := config.Config{
		Logger:      sugar,
		Environment: env,
	}

	// Log version
	sugar.Infof("Version: %s Timestamp: %s", version, timestamp)

	// Log config
	sugar.Info(env)

	// Setup the evaluation queue
	var evaluationQueue queue.EvaluationQueue
	if env.PersistedQueue {
		// The gob package that the persisted queue uses for storing data requires a one-time registration
		// of any structures that it stores.
		gob.Register(queue.PendingRun{})
		evaluationQueue, err = queue.NewPersistedFIFOQueue(env.QueueSize, env.QueueDir, env.QueueName)
		if err != nil {
			sugar.Fatal(err)
		}
		sugar.Infof("Loaded queue with %d entries from %s%s", evaluationQueue.Size(), env.QueueDir, env.QueueName)
	} else {
		// in-memory queue, data does not survive a restart
		evaluationQueue = queue.NewListFIFOQueue(env.QueueSize)
	}

	st, err := store.New(&config, evaluationQueue, store.HTTPFetcher(&config))
	if err != nil {
		sugar.Fatal(err)
	}

	evaluationRunner := pipeline.NewEvaluationRunner(&config, st)

	// Setup router
	r, err := api.NewRouter(config, st, evaluationRunner)
	if err != nil {
		sugar.Fatal(err)
	}

	if env.EvaluatorEnabled {
		evaluationRunner.Start()

		if env.EvaluatorPauseTime != "" && env.EvaluatorResumeTime != "" {
			pauseTime, err := time.Parse(time.RFC3339, env.EvaluatorPauseTime)
			if err != nil {
				sugar.Fatal(err)
			}
			resumeTime, err := time.Parse(time.RFC3339, env.EvaluatorResumeTime)
			if err != nil {
				sugar.Fatal(err)
			}
			sugar.Infof("Evaluator pause time: %s resume time: %s", pauseTime.Format(time.TimeOnly), resumeTime.Format(time.TimeOnly))
			go pauseAndResume(&pauseTime, evaluationRunner.Stop)
			go pauseAndResume(&resumeTime, evaluationRunner.Start)
		}
	}

	// Start listening
	sugar.Infof("Listening on %s", env.Addr)
	sugar.Fatal(http.ListenAndServe(env.Addr, r))
}

// withLogFile tees the logger into a rotating file.
func withLogFile(logger *zap.Logger, path string) *zap.Logger {
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
	})
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), writer, zap.InfoLevel)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
}

// pauseAndResume runs operation every day at the time of day of at.
func pauseAndResume(at *time.Time, operation func()) {
	currentTime := time.Now()
	next := time.Date(currentTime.Year(), currentTime.Month(), currentTime.Day(), at.Hour(), at.Minute(), at.Second(), 0, at.Location())
	difference := next.Sub(currentTime)

	if difference < 0 {
		next = next.Add(24 * time.Hour)
		difference = next.Sub(currentTime)
	}
	for {
		time.Sleep(difference)
		difference = 24 * time.Hour
		operation()
	}
}
