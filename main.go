package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"meshassist/backend"
	"meshassist/config"
	"meshassist/handler"
	"meshassist/logging"
	"meshassist/manager"
	"meshassist/metrics"
)

var version = "dev"

func main() {
	config.ParseArgs()
	if config.CliArgs.Help {
		flag.Usage()
		os.Exit(0)
	}
	if config.CliArgs.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(config.CliArgs.ConfigFile)
	if err != nil {
		logging.GetLogger().Fatalf("Failed to load config: %v", err)
	}

	onLambda := os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""

	level := logging.ParseLevel(cfg.LogLevel)
	if config.CliArgs.Debug {
		level = logrus.DebugLevel
	}
	format := cfg.LogFormat
	if onLambda {
		format = "json"
	}
	log := logging.InitLogger(level, format)

	client, err := backend.NewBedrockClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to create Bedrock client: %v", err)
	}
	log.Infof("Using model %s (legacy=%t, validate_output=%t)", client.ModelID(), cfg.Compat.Legacy, cfg.Output.Validate)

	options := handler.Options{
		Legacy:         cfg.Compat.Legacy,
		ValidateOutput: cfg.Output.Validate,
	}

	if onLambda {
		lambda.Start(handler.New(client, options).Handle)
		return
	}

	cm := manager.NewConcurrencyManager(cfg.Limits.Models, cfg.Limits.DefaultSize, cfg.Limits.QueueTimeout)
	defer cm.Shutdown()
	options.Limiter = cm

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}
	mux.Handle("/", handler.NewHTTPHandler(handler.New(client, options)))

	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Infoln("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Bedrock.Timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Shutdown failed: %v", err)
		}
	}()

	log.Infof("Starting server on %s", cfg.ListenAddress)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed to start: %v", err)
	}
}
