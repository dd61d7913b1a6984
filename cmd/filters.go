package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/painel-emendas/internal/config"
	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/spf13/cobra"
)

// filterFlags are the selection and presentation flags shared by the
// reporting commands.
type filterFlags struct {
	deputado string
	area     string
	grupo    string
	modo     string
	ranking  string
	limit    int
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.deputado, "deputado", dashboard.AllSentinel, "filter by legislator (AUTOR)")
	fl.StringVar(&f.area, "area", dashboard.AllSentinel, "filter by area (ÁREA)")
	fl.StringVar(&f.grupo, "grupo", dashboard.AllSentinel, "filter by expense group, e.g. \"GND 3\"")
	fl.StringVar(&f.modo, "modo", "", "filter matching: exact | contains (default from config)")
	fl.StringVar(&f.ranking, "ranking", "", "ranking metric: valor | quantidade (default from config)")
	fl.IntVar(&f.limit, "limit", 0, "ranking size (default from config)")
}

func (f *filterFlags) selection() dashboard.Selection {
	return dashboard.Selection{Deputado: f.deputado, Area: f.area, GrupoDespesa: f.grupo}
}

// settings merges the flags over the configured dashboard settings.
func (f *filterFlags) settings(c *cfgpkg.Global) (dashboard.Settings, error) {
	s, err := c.DashboardSettings()
	if err != nil {
		return s, err
	}
	if f.modo != "" {
		if s.Mode, err = dashboard.ParseFilterMode(f.modo); err != nil {
			return s, fmt.Errorf("--modo: %w", err)
		}
	}
	if f.ranking != "" {
		if s.Metric, err = dashboard.ParseRankingMetric(f.ranking); err != nil {
			return s, fmt.Errorf("--ranking: %w", err)
		}
	}
	if f.limit > 0 {
		s.Limit = f.limit
	}
	return s, nil
}

// buildView loads the source and computes the dashboard for the flags.
// A failed load still yields a view; the load error is returned alongside it.
func (f *filterFlags) buildView(by []dashboard.Dimension) (dashboard.View, error) {
	c, err := requireConfig()
	if err != nil {
		return dashboard.View{}, err
	}
	settings, err := f.settings(c)
	if err != nil {
		return dashboard.View{}, err
	}
	settings.Breakdowns = by
	cache, err := newCache(c)
	if err != nil {
		return dashboard.View{}, err
	}
	snap := cache.Get()
	v := dashboard.Build(snap, f.selection(), settings)
	if snap.Failed() {
		return v, fmt.Errorf("load %s: %w", c.SourcePath, snap.Err)
	}
	return v, nil
}
