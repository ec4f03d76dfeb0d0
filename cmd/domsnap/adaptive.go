package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/domsnap/snapcache"
	"github.com/hazyhaar/domsnap/snapshot"
)

func newAdaptiveCmd(g *globalFlags) *cobra.Command {
	var (
		doc           documentFlags
		of            optionFlags
		maxTokens     int
		maxIterations int
	)
	cmd := &cobra.Command{
		Use:   "adaptive <file|url|->",
		Short: "Search k, l and m until the snapshot fits a token budget",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "token budget (0 uses the configured default)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", -1, "failed attempts allowed after the first (-1 uses the configured default)")
	doc.register(cmd)
	of.register(cmd)

	cmd.RunE = withApp(g, nil, func(cmd *cobra.Command, args []string, a *app) error {
		if maxTokens < 0 {
			return errors.New("--max-tokens must not be negative")
		}
		opts := of.apply(cmd, a.cfg)
		tree, root, markup, err := load(cmd, a, args[0], doc)
		if err != nil {
			return err
		}

		var key string
		if a.cache != nil {
			key = snapcache.AdaptiveKey(a.snap.Tables(), markup, maxTokens, maxIterations, opts)
			e, err := a.cache.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if e != nil && e.Adaptive != nil {
				res := snapshot.AdaptiveSnapshot{Snapshot: e.Snapshot, Parameters: *e.Adaptive}
				return printAdaptive(cmd, doc.json, &res, true)
			}
		}

		res, err := a.snap.AdaptiveTransform(tree, root, maxTokens, maxIterations, opts)
		var budget *snapshot.BudgetError
		if errors.As(err, &budget) {
			return fmt.Errorf("%w; raise --max-tokens or --max-iterations", err)
		}
		if err != nil {
			return err
		}
		if a.cache != nil {
			if _, err := a.cache.Put(cmd.Context(), key, &res.Snapshot, &res.Parameters); err != nil {
				a.logger.Warn("domsnap: cache put", "error", err)
			}
		}
		return printAdaptive(cmd, doc.json, res, false)
	})
	return cmd
}

func printAdaptive(cmd *cobra.Command, asJSON bool, res *snapshot.AdaptiveSnapshot, cached bool) error {
	if err := printSnapshot(cmd, asJSON, res.Snapshot, res, cached); err != nil {
		return err
	}
	p := res.Parameters
	fmt.Fprintf(cmd.ErrOrStderr(), "  %s k=%s l=%s m=%s after %d failed attempts\n",
		dim("parameters"), info(fmt.Sprintf("%.4g", p.K)), info(fmt.Sprintf("%.4g", p.L)),
		info(fmt.Sprintf("%.4g", p.M)), p.Iterations)
	return nil
}
