// Command aspensvc runs the Aspen authorization service: the HTTP API that
// fronts policy, group and attachment management plus the authorize
// decision endpoint, backed by DynamoDB and (optionally) AWS Verified
// Permissions.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/verifiedpermissions"
	"github.com/spf13/cobra"

	"github.com/openshift-online/aspen/pkg/authz"
	authzclient "github.com/openshift-online/aspen/pkg/authz/client"
	"github.com/openshift-online/aspen/pkg/authzsvc"
	"github.com/openshift-online/aspen/pkg/config"
	"github.com/openshift-online/aspen/pkg/handlers"
)

var (
	awsRegion              string
	dynamoDBEndpoint       string
	cedarAgentEndpoint     string
	privilegedAccountsFile string
	apiBindAddress         string
	apiPort                int
	healthBindAddress      string
	healthPort             int
	metricsBindAddress     string
	metricsPort            int
	shutdownTimeout        time.Duration
	logLevel               string
)

func main() {
	defaults := config.NewConfig()

	root := &cobra.Command{
		Use:     "aspensvc",
		Short:   "Aspen authorization service",
		Long:    "aspensvc serves the Aspen policy and authorization-decision API over HTTP, backed by DynamoDB and AWS Verified Permissions.",
		Version: "0.1.0",
		RunE:    runServer,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&awsRegion, "aws-region", defaults.DynamoDB.Region, "AWS region for DynamoDB and Verified Permissions")
	flags.StringVar(&dynamoDBEndpoint, "dynamodb-endpoint", defaults.DynamoDB.Endpoint, "Override DynamoDB endpoint (local development only)")
	flags.StringVar(&cedarAgentEndpoint, "cedar-agent-endpoint", "", "cedar-agent URL; when set, a mock AVP client proxies to it instead of real AWS Verified Permissions")
	flags.StringVar(&privilegedAccountsFile, "privileged-accounts-file", "/etc/rosa/privileged-accounts.txt", "Path to the configmap file listing privileged account IDs")
	flags.StringVar(&apiBindAddress, "api-bind-address", defaults.Server.APIBindAddress, "Bind address for the API server")
	flags.IntVar(&apiPort, "api-port", defaults.Server.APIPort, "Port for the API server")
	flags.StringVar(&healthBindAddress, "health-bind-address", defaults.Server.HealthBindAddress, "Bind address for the standalone health server")
	flags.IntVar(&healthPort, "health-port", defaults.Server.HealthPort, "Port for the standalone health server")
	flags.StringVar(&metricsBindAddress, "metrics-bind-address", defaults.Server.MetricsBindAddress, "Bind address for the metrics server")
	flags.IntVar(&metricsPort, "metrics-port", defaults.Server.MetricsPort, "Port for the metrics server")
	flags.DurationVar(&shutdownTimeout, "shutdown-timeout", defaults.Server.ShutdownTimeout, "Grace period for in-flight requests during shutdown")
	flags.StringVar(&logLevel, "log-level", defaults.Logging.Level, "Log level: debug, info, warn, error")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	// Flags override the package defaults field by field, so svcCfg always
	// reflects what was actually requested on the command line.
	svcCfg := config.NewConfig()
	svcCfg.DynamoDB.Region = awsRegion
	svcCfg.DynamoDB.Endpoint = dynamoDBEndpoint
	svcCfg.Server.APIBindAddress = apiBindAddress
	svcCfg.Server.APIPort = apiPort
	svcCfg.Server.HealthBindAddress = healthBindAddress
	svcCfg.Server.HealthPort = healthPort
	svcCfg.Server.MetricsBindAddress = metricsBindAddress
	svcCfg.Server.MetricsPort = metricsPort
	svcCfg.Server.ShutdownTimeout = shutdownTimeout
	svcCfg.Logging.Level = logLevel

	logger := newLogger(svcCfg.Logging.Level)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(svcCfg.DynamoDB.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	var ddbOpts []func(*dynamodb.Options)
	if svcCfg.DynamoDB.Endpoint != "" {
		ddbOpts = append(ddbOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = &svcCfg.DynamoDB.Endpoint
		})
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg, ddbOpts...)

	var avpClient authzclient.AVPClient
	if cedarAgentEndpoint != "" {
		logger.Info("using mock AVP client backed by cedar-agent", "endpoint", cedarAgentEndpoint)
		avpClient = authzclient.NewMockAVPClient(cedarAgentEndpoint, logger)
	} else {
		avpClient = verifiedpermissions.NewFromConfig(awsCfg)
	}

	authzCfg := authz.DefaultConfig()
	authzCfg.AWSRegion = svcCfg.DynamoDB.Region
	authzCfg.PrivilegedAccountsFile = privilegedAccountsFile
	authzCfg.DynamoDBEndpoint = svcCfg.DynamoDB.Endpoint
	authzCfg.CedarAgentEndpoint = cedarAgentEndpoint

	authorizer := authz.New(authzCfg, dynamoClient, avpClient, logger)

	health := handlers.NewHealthHandler()
	metrics := authzsvc.NewMetrics()
	apiHandlers := authzsvc.NewHandlers(authorizer, metrics, logger)

	apiServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", svcCfg.Server.APIBindAddress, svcCfg.Server.APIPort),
		Handler: authzsvc.NewAPIRouter(apiHandlers, health, metrics, logger),
	}
	healthServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", svcCfg.Server.HealthBindAddress, svcCfg.Server.HealthPort),
		Handler: authzsvc.NewHealthRouter(health),
	}
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", svcCfg.Server.MetricsBindAddress, svcCfg.Server.MetricsPort),
		Handler: metrics.Handler(),
	}

	errCh := make(chan error, 3)
	go serve(apiServer, "api", logger, errCh)
	go serve(healthServer, "health", logger, errCh)
	go serve(metricsServer, "metrics", logger, errCh)

	if err := ensureSchema(ctx, dynamoClient, authzCfg); err != nil {
		logger.Warn("failed to verify DynamoDB tables, continuing anyway", "error", err)
	}

	health.SetReady(true)
	logger.Info("aspensvc ready",
		"api_addr", apiServer.Addr,
		"health_addr", healthServer.Addr,
		"metrics_addr", metricsServer.Addr,
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error, shutting down", "error", err)
	}

	health.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), svcCfg.Server.ShutdownTimeout)
	defer cancel()

	for name, srv := range map[string]*http.Server{"api": apiServer, "health": healthServer, "metrics": metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", "server", name, "error", err)
		}
	}

	return nil
}

func serve(srv *http.Server, name string, logger *slog.Logger, errCh chan<- error) {
	logger.Info("starting server", "server", name, "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- fmt.Errorf("%s server: %w", name, err)
	}
}

// ensureSchema does a best-effort DescribeTable check against every table
// the authorizer needs, so a misconfigured deployment fails fast in the
// logs instead of surfacing as opaque per-request errors.
func ensureSchema(ctx context.Context, client *dynamodb.Client, cfg *authz.Config) error {
	tables := []string{
		cfg.AccountsTableName,
		cfg.AdminsTableName,
		cfg.GroupsTableName,
		cfg.MembersTableName,
		cfg.PoliciesTableName,
		cfg.AttachmentsTableName,
	}
	for _, table := range tables {
		_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: &table})
		var notFound *ddbtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return fmt.Errorf("table %q does not exist", table)
		}
		if err != nil {
			return fmt.Errorf("failed to describe table %q: %w", table, err)
		}
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
