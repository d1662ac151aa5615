package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/correx/internal/query"
	"github.com/desertthunder/correx/internal/resolve"
	"github.com/desertthunder/correx/internal/scenario"
	"github.com/desertthunder/correx/internal/shared"
	"github.com/desertthunder/correx/internal/ui"
)

// Preview renders a built-in scenario from a seeded cache without contacting the wiki.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("list") {
		return r.listScenarios()
	}

	s, err := scenario.Find(cmd.String("scenario"))
	if err != nil {
		return err
	}

	cache := query.New(query.CacheOpts{Logger: shared.WithLogger(r.logger, "component", "preview")})
	defer cache.Close()
	if err := s.Seed(cache); err != nil {
		return fmt.Errorf("failed to seed scenario %s: %w", s.Key, err)
	}

	params, err := resolve.ParseParams(strconv.Itoa(s.Detail.ID), cmd.String("compare"))
	if err != nil {
		return err
	}

	r.logger.Debug("previewing scenario", "scenario", s.Key, "compare", params.Compare)

	if cmd.Bool("tui") {
		return r.runTUI(ctx, func() ui.Engine {
			return r.newEngine(cache, scenario.OfflineAPI{}, scenario.OfflineAPI{})
		}, params)
	}

	engine := r.newEngine(cache, scenario.OfflineAPI{}, scenario.OfflineAPI{})
	page, err := r.loadPage(ctx, engine, params)
	if err != nil {
		return err
	}
	return r.writePage(cmd, page)
}

func (r *Runner) listScenarios() error {
	all, err := scenario.All()
	if err != nil {
		return err
	}

	for _, s := range all {
		marker := " "
		if s.Key == scenario.DefaultKey {
			marker = "*"
		}
		r.writePlain("%s %-16s %s\n", marker, s.Key, s.Label)
		if s.Caption != "" {
			r.writePlain("  %-16s %s\n", "", s.Caption)
		}
	}
	return nil
}
