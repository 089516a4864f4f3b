package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/procsim/internal/config"
	"github.com/nvandessel/procsim/internal/metric"
	"github.com/nvandessel/procsim/internal/namespace"
	"github.com/nvandessel/procsim/internal/service"
	"github.com/nvandessel/procsim/internal/signal"
)

// simulation is a built address space with its signal provider and metrics.
type simulation struct {
	provider *signal.Provider
	space    *namespace.Space
	metrics  *metric.Registry
}

// loadConfig loads --config (or the default locations), applies --log-level
// and validates the result.
func loadConfig(cmd *cobra.Command) (*config.ProcsimConfig, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// newSimulation builds the Simulation folder under the root of a fresh
// address space. Metrics observe every read.
func newSimulation() (*simulation, error) {
	sim := &simulation{
		provider: signal.NewProvider(nil, nil),
		space:    namespace.NewSpace(),
		metrics:  metric.NewRegistry(),
	}
	sim.space.AcceptHook(sim.metrics)

	if _, err := namespace.Build(sim.space, sim.space.Root(), sim.provider.Definitions()); err != nil {
		return nil, fmt.Errorf("failed to build address space: %w", err)
	}

	return sim, nil
}

// newService wraps sim for clients. ticks may be nil when no counter
// process runs.
func (sim *simulation) newService(cfg *config.ProcsimConfig, ticks service.TickCounter) *service.Service {
	started := time.Now()

	return service.New(service.Options{
		Space:   sim.space,
		Counter: sim.provider.Counter(),
		Ticker:  ticks,
		Build: service.BuildInfo{
			ServerName:  cfg.Server.Name,
			Version:     version,
			ProductName: cfg.Server.ProductName,
			BuildNumber: cfg.Server.BuildNumber,
			BuildDate:   buildDate(started),
		},
		ResourcePath: cfg.Server.NormalizedResourcePath(),
		OnReadError:  sim.metrics.ObserveReadError,
		Started:      started,
	})
}

// buildDate parses the linker-provided date. Builds without one report
// started, the process start.
func buildDate(started time.Time) time.Time {
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return started
	}
	return t
}
