// Command openevent-listen is a minimal demonstration client: it
// connects to the vendor's open-event service, logs every delivered
// event, and exposes Prometheus metrics while it runs. It is an
// example entry point, not part of the core library.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kso-sdk/openevent-client/client"
	"github.com/kso-sdk/openevent-client/config"
	"github.com/kso-sdk/openevent-client/internal/logger"
	"github.com/kso-sdk/openevent-client/internal/metrics"
	"github.com/kso-sdk/openevent-client/pkg/openevent/dispatcher"
	"github.com/kso-sdk/openevent-client/pkg/openevent/event"
	"github.com/kso-sdk/openevent-client/pkg/version"
)

// fileConfig is the optional YAML config file shape; flags and
// environment variables both take precedence over it.
type fileConfig struct {
	AppID       string `yaml:"appId"`
	AppSecret   string `yaml:"appSecret"`
	Endpoint    string `yaml:"endpoint"`
	LogLevel    string `yaml:"logLevel"`
	MetricsAddr string `yaml:"metricsAddr"`
}

var (
	flagAppID       string
	flagAppSecret   string
	flagEndpoint    string
	flagConfigPath  string
	flagLogLevel    string
	flagMetricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "openevent-listen",
	Short: "Connect to the open-event service and log delivered events",
	RunE:  run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVar(&flagAppID, "app-id", "", "vendor app ID (or $OPENEVENT_APP_ID)")
	rootCmd.Flags().StringVar(&flagAppSecret, "app-secret", "", "vendor app secret (or $OPENEVENT_APP_SECRET)")
	rootCmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "override the default WebSocket endpoint")
	rootCmd.Flags().StringVar(&flagConfigPath, "config", "", "optional YAML config file")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "debug, info, warn, error, or silent")
	rootCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", ":9090", "address to serve /metrics on")
	rootCmd.Version = version.String()
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	fc, err := loadFileConfig(flagConfigPath)
	if err != nil {
		return err
	}

	appID := firstNonEmpty(flagAppID, os.Getenv("OPENEVENT_APP_ID"), fc.AppID)
	appSecret := firstNonEmpty(flagAppSecret, os.Getenv("OPENEVENT_APP_SECRET"), fc.AppSecret)
	endpoint := firstNonEmpty(flagEndpoint, os.Getenv("OPENEVENT_ENDPOINT"), fc.Endpoint)
	logLevel := flagLogLevel
	if !cmd.Flags().Changed("log-level") {
		logLevel = firstNonEmpty(fc.LogLevel, flagLogLevel)
	}
	metricsAddr := flagMetricsAddr
	if !cmd.Flags().Changed("metrics-addr") {
		metricsAddr = firstNonEmpty(fc.MetricsAddr, flagMetricsAddr)
	}

	if appID == "" || appSecret == "" {
		return fmt.Errorf("app-id and app-secret are required (flag, env, or config file)")
	}

	log := logger.New(os.Stdout, logger.ParseLevel(logLevel))

	opts := []config.Option{
		config.WithLogger(log, logger.ParseLevel(logLevel)),
		config.WithDispatcher(buildDispatcher(log)),
	}
	if endpoint != "" {
		opts = append(opts, config.WithEndpoint(endpoint))
	}

	cfg, err := config.New(appID, appSecret, opts...)
	if err != nil {
		return fmt.Errorf("building config: %w", err)
	}

	c, err := client.New(cfg, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	go serveMetrics(metricsAddr, log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		c.Stop()
		cancel()
	}()

	return c.Start(ctx)
}

func buildDispatcher(log logger.Logger) *dispatcher.Dispatcher {
	return dispatcher.New().
		OnV7AppChatMessageCreate(func(e event.TypedEvent[dispatcher.AppChatMessageCreatePayload]) error {
			log.Info("chat message",
				logger.String("chatId", e.ParsedData.Chat.ID),
				logger.String("text", e.ParsedData.Message.Content.Text))
			return nil
		}).
		OnFallback(func(e event.Event) error {
			log.Info("event", logger.String("eventCode", e.EventCode()))
			return nil
		})
}

func serveMetrics(addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("metrics server listening", logger.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("metrics server error", logger.Err(err))
	}
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parsing config file: %w", err)
	}
	return fc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
