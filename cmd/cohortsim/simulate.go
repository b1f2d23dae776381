package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/p-n-ai/pai-cohort/internal/curriculum"
	"github.com/p-n-ai/pai-cohort/internal/enrollment"
	"github.com/p-n-ai/pai-cohort/internal/platform/config"
	"github.com/p-n-ai/pai-cohort/internal/simulation"
)

// loadCatalog returns the bundled catalog unless path names a catalog file
// or directory.
func loadCatalog(path string) (*curriculum.Catalog, error) {
	if path == "" {
		return curriculum.Default()
	}
	return curriculum.LoadCatalog(path)
}

// loadParams reads the parameter file, if any, then applies name=value
// overrides in order.
func loadParams(path string, overrides []string) (enrollment.Params, error) {
	p := enrollment.DefaultParams()
	if path != "" {
		var err error
		if p, err = enrollment.LoadParams(path); err != nil {
			return p, err
		}
	}
	for _, kv := range overrides {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return p, fmt.Errorf("invalid --set %q: want name=value", kv)
		}
		if err := p.Set(strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
			return p, err
		}
	}
	return p, p.Validate()
}

// simulate runs one simulation as configured, drawing a progress bar on
// stderr when enabled.
func simulate(ctx context.Context, cfg *config.Config, overrides []string, events simulation.EventLogger) (*simulation.Engine, *simulation.Result, error) {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, nil, err
	}
	params, err := loadParams(cfg.ParamsPath, overrides)
	if err != nil {
		return nil, nil, err
	}

	ec := simulation.EngineConfig{
		Catalog: cat,
		Params:  &params,
		Seed:    cfg.Simulation.Seed,
		Events:  events,
	}
	var bar *progressbar.ProgressBar
	if cfg.Simulation.Progress && cfg.Simulation.Years > 0 {
		bar = progressbar.NewOptions(cfg.Simulation.Years,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Simulating years..."),
			progressbar.OptionClearOnFinish(),
		)
		ec.OnYear = func(simulation.YearStats) { _ = bar.Add(1) }
	}

	engine, err := simulation.NewEngine(ec)
	if err != nil {
		return nil, nil, err
	}
	res, err := engine.Run(ctx, cfg.Simulation.Years, cfg.Simulation.EnrollingYears)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, nil, err
	}
	return engine, res, nil
}
