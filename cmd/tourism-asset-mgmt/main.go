package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"gopkg.in/yaml.v2"

	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/application/assets"
	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/application/boundary"
	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/application/feedback"
	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/application/statistics"
	assetrepo "github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/repositories/assets"
	boundaryrepo "github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/repositories/boundary"
	feedbackrepo "github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/repositories/feedback"
	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/router"
	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/infrastructure/storage"
	"github.com/visitnwp/tourism-asset-mgmt/internal/pkg/presentation/api"
)

const serviceName string = "tourism-asset-mgmt"

const maxBindAttempts int = 5

type appConfig struct {
	listenAddress string
	port          string
	dataDir       string

	allowedOrigins []string

	assetDocument    string
	boundaryDocument string
	feedbackDocument string
}

// serviceConfigFile is the yaml file passed via -config. Everything in
// it has a default matching the reference deployment.
type serviceConfigFile struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
	Documents      struct {
		Assets   string `yaml:"assets"`
		Boundary string `yaml:"boundary"`
		Feedback string `yaml:"feedback"`
	} `yaml:"documents"`
}

func defaultConfig() *appConfig {
	return &appConfig{
		listenAddress: "0.0.0.0",
		port:          "3000",
		dataDir:       "/opt/tourism/data",
		allowedOrigins: []string{
			"http://127.0.0.1:5500",
			"http://localhost:5500",
		},
		assetDocument:    assetrepo.DocumentName,
		boundaryDocument: boundaryrepo.DocumentName,
		feedbackDocument: feedbackrepo.DocumentName,
	}
}

func main() {
	serviceVersion := buildinfo.SourceVersion()
	ctx, logger, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	cfg, err := parseExternalConfig(ctx, defaultConfig())
	exitIf(err, logger, "could not parse configuration")

	s, err := storage.New(ctx, storage.NewConfig(cfg.dataDir))
	exitIf(err, logger, "could not create document store")

	// the boundary is required reference data, fail fast if its storage
	// location cannot be used at all (a not-yet-created document is fine)
	err = s.Preflight(ctx, cfg.boundaryDocument)
	exitIf(err, logger, "boundary document storage is unreachable")

	messenger, err := messaging.Initialize(ctx, messaging.LoadConfiguration(ctx, serviceName, logger))
	exitIf(err, logger, "failed to init messenger")

	messenger.Start()
	defer messenger.Close()

	assetRepo := assetrepo.NewRepository(s, cfg.assetDocument)

	assetSvc := assets.New(assetRepo, messenger)
	boundarySvc := boundary.New(boundaryrepo.NewRepository(s, cfg.boundaryDocument))
	feedbackSvc := feedback.New(feedbackrepo.NewRepository(s, cfg.feedbackDocument), messenger)
	statsSvc := statistics.New(assetRepo)

	r := router.New(serviceName, cfg.allowedOrigins)
	_, err = api.RegisterHandlers(ctx, r, assetSvc, boundarySvc, feedbackSvc, statsSvc)
	exitIf(err, logger, "failed to register handlers")

	err = listenAndServe(ctx, cfg, r)
	exitIf(err, logger, "failed to serve requests")
}

// listenAndServe binds the configured port, or the next free one within
// a bounded number of attempts, and serves until the listener fails.
func listenAndServe(ctx context.Context, cfg *appConfig, handler http.Handler) error {
	log := logging.GetFromContext(ctx)

	port := 0
	_, err := fmt.Sscanf(cfg.port, "%d", &port)
	if err != nil {
		return fmt.Errorf("invalid port %s: %w", cfg.port, err)
	}

	for attempt := 0; attempt < maxBindAttempts; attempt++ {
		addr := fmt.Sprintf("%s:%d", cfg.listenAddress, port+attempt)

		listener, err := net.Listen("tcp", addr)
		if err != nil {
			log.Warn("could not bind listen address, trying next port", "address", addr, "err", err.Error())
			continue
		}

		log.Info("starting to listen for incoming connections", "address", addr)
		return http.Serve(listener, handler)
	}

	return fmt.Errorf("could not bind a listen address in %d attempts", maxBindAttempts)
}

func parseExternalConfig(ctx context.Context, cfg *appConfig) (*appConfig, error) {
	// Allow environment variables to override certain defaults
	envOrDef := env.GetVariableOrDefault

	cfg.listenAddress = envOrDef(ctx, "LISTEN_ADDRESS", cfg.listenAddress)
	cfg.port = envOrDef(ctx, "PORT", cfg.port)
	cfg.dataDir = envOrDef(ctx, "DATA_DIR", cfg.dataDir)

	configFilePath := ""

	// Allow command line arguments to override defaults and environment variables
	flag.StringVar(&configFilePath, "config", "/opt/tourism/config/config.yaml", "service configuration file")
	flag.Parse()

	f, err := os.Open(configFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			logging.GetFromContext(ctx).Info("no configuration file found, using defaults", "path", configFilePath)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	return mergeServiceConfig(cfg, f)
}

func mergeServiceConfig(cfg *appConfig, r io.Reader) (*appConfig, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	fileCfg := &serviceConfigFile{}
	err = yaml.Unmarshal(b, fileCfg)
	if err != nil {
		return nil, err
	}

	if len(fileCfg.AllowedOrigins) > 0 {
		cfg.allowedOrigins = fileCfg.AllowedOrigins
	}
	if fileCfg.Documents.Assets != "" {
		cfg.assetDocument = fileCfg.Documents.Assets
	}
	if fileCfg.Documents.Boundary != "" {
		cfg.boundaryDocument = fileCfg.Documents.Boundary
	}
	if fileCfg.Documents.Feedback != "" {
		cfg.feedbackDocument = fileCfg.Documents.Feedback
	}

	return cfg, nil
}

func exitIf(err error, logger *slog.Logger, msg string, args ...any) {
	if err != nil {
		logger.With(args...).Error(msg, "err", err.Error())
		time.Sleep(2 * time.Second)
		os.Exit(1)
	}
}
