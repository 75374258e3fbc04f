package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/posmatch/backend/config"
	"github.com/posmatch/backend/internal/app"
	"github.com/posmatch/backend/internal/domain"
	"github.com/posmatch/backend/internal/logger"
)

// setup loads configuration and builds the pipeline for a CLI run
func setup(ctx context.Context, opts *globalOptions) (*config.Config, *app.App, *zap.Logger, error) {
	if err := config.LoadEnvFile(); err != nil {
		return nil, nil, nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadFile(opts.cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Log.Format)

	a, err := app.New(ctx, cfg, log, app.Options{Offline: opts.offline})
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, a, log, nil
}

// printResult renders a recommendation result for a terminal
func printResult(w io.Writer, result *domain.RecommendationResult) {
	fmt.Fprintf(w, "Query: %q (tier: %s)\n", result.Query, result.SourceTier)

	if result.AdvisoryMessage != "" {
		fmt.Fprintf(w, "Note: %s\n", result.AdvisoryMessage)
	}

	for i, item := range result.Items {
		p := item.Product
		fmt.Fprintf(w, "%d. %s [%s]\n", i+1, p.Name, p.Identifier)
		if len(p.BestFor) > 0 {
			fmt.Fprintf(w, "   Best for: %s\n", strings.Join(p.BestFor, ", "))
		}
		if len(item.RelatedProducts) > 0 {
			names := make([]string, 0, len(item.RelatedProducts))
			for _, related := range item.RelatedProducts {
				names = append(names, related.Name)
			}
			fmt.Fprintf(w, "   Pairs with: %s\n", strings.Join(names, ", "))
		}
	}
}
