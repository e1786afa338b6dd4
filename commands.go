package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/handler"
	"github.com/fakhrymubarak/weather-lookup/internal/repository"
	"github.com/fakhrymubarak/weather-lookup/internal/service"
	"github.com/fakhrymubarak/weather-lookup/internal/surface"
	"github.com/fakhrymubarak/weather-lookup/internal/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// errLookupFailed signals a failed one-shot lookup; the message was
// already rendered so cobra should not print it again.
var errLookupFailed = errors.New("lookup failed")

type rootOptions struct {
	configFile string
	policy     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "weather",
		Short:         "Look up current temperature and humidity for a city",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configFile != "" {
				config.SetConfigFile(opts.configFile)
			}
			flags := cmd.Flags()
			if err := viper.BindPFlag("provider.shape", flags.Lookup("shape")); err != nil {
				return err
			}
			if err := viper.BindPFlag("provider.base_url", flags.Lookup("base-url")); err != nil {
				return err
			}
			config.SetLogLevel(config.GetLogLevel())
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	pf.String("shape", "", "provider shape: openweathermap or rapidapi")
	pf.String("base-url", "", "provider base URL")
	pf.StringVar(&opts.policy, "policy", "latest", "overlapping lookups: latest (newest request wins) or last-completed")

	cmd.AddCommand(newServeCmd(opts), newLookupCmd(opts), newInteractiveCmd(opts))
	return cmd
}

func parsePolicy(s string) (surface.Policy, error) {
	switch strings.ToLower(s) {
	case "", "latest", "latest-request-wins":
		return surface.LatestRequestWins, nil
	case "last-completed", "last-completed-wins":
		return surface.LastCompletedWins, nil
	default:
		return 0, fmt.Errorf("unknown policy %q", s)
	}
}

// newWeatherService is the composition root for the fetch path: the
// HTTP client is built here and handed down explicitly.
func newWeatherService(logger *zap.SugaredLogger) *service.WeatherService {
	provider := config.GetProviderConfig()
	if provider.APIKey == "" {
		logger.Warnw("No API key configured, lookups will fail", "shape", provider.Shape)
	}
	client := telemetry.NewHTTPClient(config.GetHTTPTimeout())
	repo := repository.NewWeatherRepository(provider, client)
	return service.NewWeatherService(repo, logger)
}

func newSurface(opts *rootOptions, fetcher surface.Fetcher, logger *zap.SugaredLogger) (*surface.Surface, error) {
	policy, err := parsePolicy(opts.policy)
	if err != nil {
		return nil, err
	}
	return surface.New(fetcher, surface.WithPolicy(policy), surface.WithLogger(logger)), nil
}

// newServer wires one service into both the shared surface and the
// synchronous /weather endpoint.
func newServer(opts *rootOptions, port string, logger *zap.SugaredLogger) (*http.Server, *surface.Surface, error) {
	svc := newWeatherService(logger)
	surf, err := newSurface(opts, svc, logger)
	if err != nil {
		return nil, nil, err
	}

	writeTimeout := config.GetServerTimeoutDuration("write_timeout", 15*time.Second)
	router := handler.SetupRouter(handler.NewWeatherHandler(svc, surf, logger), logger,
		handler.WithRequestTimeout(handler.RequestTimeoutFor(writeTimeout)))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: config.GetServerTimeoutDuration("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeoutDuration("read_timeout", 15*time.Second),
		WriteTimeout:      writeTimeout,
		IdleTimeout:       config.GetServerTimeoutDuration("idle_timeout", 60*time.Second),
	}, surf, nil
}

func newLookupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <city>",
		Short: "Fetch the weather for one city and print it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := config.GetLogger()
			surf, err := newSurface(opts, newWeatherService(logger), logger)
			if err != nil {
				return err
			}
			defer surf.Close()

			if !surf.Submit(strings.Join(args, " ")) {
				return fmt.Errorf("city name is blank")
			}
			surf.Wait()

			st := surf.State()
			fmt.Fprintln(cmd.OutOrStdout(), surface.Render(st))
			if st.Result == nil || !st.Result.OK() {
				return errLookupFailed
			}
			return nil
		},
	}
}

func newInteractiveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Read city names from stdin, one per line, and show each result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := config.GetLogger()
			surf, err := newSurface(opts, newWeatherService(logger), logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = surface.NewTerminal(surf, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup surface over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := config.GetLogger()
			if port == "" {
				port = config.GetServerPort()
			}

			shutdownTracing, err := telemetry.Setup(cmd.Context(), config.GetTelemetryServiceName(), config.GetOTLPEndpoint(), logger)
			if err != nil {
				return err
			}

			srv, surf, err := newServer(opts, port, logger)
			if err != nil {
				return err
			}

			serverErrors := make(chan error, 1)
			go func() {
				logger.Infow("Weather lookup server running", "port", port, "shape", config.GetProviderShape())
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				surf.Close()
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)
			case sig := <-shutdown:
				logger.Infow("Shutting down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Errorw("Error during shutdown", "error", err)
				_ = srv.Close()
			}
			surf.Close()
			if err := shutdownTracing(ctx); err != nil {
				logger.Warnw("Error flushing traces", "error", err)
			}
			logger.Infow("Server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (defaults to server.port)")
	return cmd
}
