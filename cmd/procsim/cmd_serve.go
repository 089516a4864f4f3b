package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/procsim/internal/config"
	"github.com/nvandessel/procsim/internal/constants"
	"github.com/nvandessel/procsim/internal/logging"
	"github.com/nvandessel/procsim/internal/mcp"
	"github.com/nvandessel/procsim/internal/monitor"
	"github.com/nvandessel/procsim/internal/ratelimit"
	"github.com/nvandessel/procsim/internal/ticker"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation server",
		Long: `Build the Simulation namespace, start the counter and serve clients.

Transports:
  stdio  MCP over stdin/stdout (default); logs go to stderr
  http   streamable MCP at /mcp on the HTTP monitor
  none   HTTP monitor only, when enabled

The HTTP monitor exposes /api/browse, /api/node/{path}, /api/id/{id},
/api/read/{path}, /api/status, /api/resource and /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("transport") {
				cfg.Server.Transport, _ = cmd.Flags().GetString("transport")
			}
			if cmd.Flags().Changed("http") {
				cfg.HTTP.Enabled, _ = cmd.Flags().GetBool("http")
			}
			if cmd.Flags().Changed("port") {
				cfg.HTTP.Port, _ = cmd.Flags().GetInt("port")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			notifySignals(sigCh)
			go func() {
				select {
				case <-sigCh:
					cancel()
				case <-ctx.Done():
				}
			}()

			return runServe(ctx, cfg, cmd.ErrOrStderr(), nil)
		},
	}

	cmd.Flags().String("transport", constants.TransportStdio, "MCP transport: stdio, http or none")
	cmd.Flags().Bool("http", false, "Enable the HTTP monitor")
	cmd.Flags().Int("port", constants.DefaultPort, "HTTP monitor port (0 picks a free port)")

	return cmd
}

// runServe runs the server until ctx is cancelled or, for stdio, the client
// disconnects. ready, when non-nil, receives the HTTP address once listening.
func runServe(ctx context.Context, cfg *config.ProcsimConfig, logOut io.Writer, ready func(addr string)) error {
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, logOut)

	sim, err := newSimulation()
	if err != nil {
		return err
	}

	tk := ticker.New(sim.provider.Counter(), cfg.Simulation.TickInterval, logger)
	tk.OnTick = sim.metrics.ObserveTick
	if err := tk.Start(ctx); err != nil {
		return fmt.Errorf("failed to start counter: %w", err)
	}
	defer tk.Stop()

	svc := sim.newService(cfg, tk)

	audit, err := mcp.NewAuditLogger(cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Config{
		Name:    cfg.Server.Name,
		Version: version,
		Service: svc,
		Logger:  logger,
		Audit:   audit,
	})
	if err != nil {
		audit.Close()
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	transport := cfg.Server.Transport
	if cfg.HTTPEnabled() {
		listener, err := net.Listen("tcp", cfg.HTTP.Addr())
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.HTTP.Addr(), err)
		}

		opts := monitor.Options{
			Service: svc,
			Metrics: sim.metrics.Handler(),
			Logger:  logger,
		}
		if transport == constants.TransportHTTP {
			opts.MCP = server.HTTPHandler()
		}
		if cfg.HTTP.RateLimit > 0 {
			opts.Limiter = ratelimit.NewLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst)
		}

		mon := monitor.New(opts)
		mon.Start(listener)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := mon.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", "error", err)
			}
		}()

		if ready != nil {
			ready(listener.Addr().String())
		}
	}

	logger.Info("server started",
		"product", cfg.Server.ProductName,
		"build", cfg.Server.BuildNumber,
		"transport", transport,
		"resource_prefix", svc.BrowseURI(),
		"variables", len(sim.space.Variables()),
		"tick_interval", tk.Interval())

	switch transport {
	case constants.TransportStdio:
		err = server.Run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	default:
		<-ctx.Done()
	}

	logger.Info("shutting down", "ticks", tk.Ticks(), "counter", sim.provider.Counter().Load())

	return err
}
