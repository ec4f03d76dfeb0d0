package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/domsnap/domtree"
	"github.com/hazyhaar/domsnap/snapcache"
	"github.com/hazyhaar/domsnap/snapshot"
	"github.com/hazyhaar/domsnap/source"
)

func newSnapCmd(g *globalFlags) *cobra.Command {
	var (
		doc       documentFlags
		of        optionFlags
		k, l, m   float64
		linearize bool
	)
	cmd := &cobra.Command{
		Use:   "snap <file|url|->",
		Short: "Snapshot a document with fixed k, l and m",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().Float64VarP(&k, "k", "k", 0.5, "container merge aggressiveness in [0, 1]")
	cmd.Flags().Float64VarP(&l, "l", "l", 0.5, "text compression in [0, 1]")
	cmd.Flags().Float64VarP(&m, "m", "m", 0.5, "attribute score threshold in [0, 1]")
	cmd.Flags().BoolVar(&linearize, "linearize", false, "merge every container level and strip the outer wrapper")
	doc.register(cmd)
	of.register(cmd)

	cmd.RunE = withApp(g, nil, func(cmd *cobra.Command, args []string, a *app) error {
		p := a.cfg.Snapshot.Params()
		f := cmd.Flags()
		if f.Changed("k") {
			p.K = k
		}
		if f.Changed("l") {
			p.L = l
		}
		if f.Changed("m") {
			p.M = m
		}
		if linearize {
			p.K = snapshot.Linearize
		}
		if err := p.Validate(); err != nil {
			return err
		}
		opts := of.apply(cmd, a.cfg)

		tree, root, markup, err := load(cmd, a, args[0], doc)
		if err != nil {
			return err
		}

		var key string
		if a.cache != nil {
			key = snapcache.Key(a.snap.Tables(), markup, p, opts)
			e, err := a.cache.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if e != nil {
				return printSnapshot(cmd, doc.json, e.Snapshot, e, true)
			}
		}

		snap, err := a.snap.Transform(tree, root, p, opts)
		if err != nil {
			return err
		}
		if a.cache != nil {
			if _, err := a.cache.Put(cmd.Context(), key, snap, nil); err != nil {
				a.logger.Warn("domsnap: cache put", "error", err)
			}
		}
		return printSnapshot(cmd, doc.json, *snap, snap, false)
	})
	return cmd
}

// load acquires ref, parses it and selects the root. markup is the rendered
// root, the input of the cache key.
func load(cmd *cobra.Command, a *app, ref string, doc documentFlags) (*domtree.Tree, domtree.NodeID, string, error) {
	var (
		d   *source.Document
		err error
	)
	if doc.render {
		d, err = a.loader.Render(cmd.Context(), ref)
	} else {
		d, err = a.loader.Load(cmd.Context(), ref)
	}
	if err != nil {
		return nil, domtree.None, "", err
	}
	tree, err := d.Parse()
	if err != nil {
		return nil, domtree.None, "", err
	}
	root, err := source.Select(tree, doc.selector)
	if err != nil {
		return nil, domtree.None, "", err
	}
	markup, err := tree.Render(root)
	if err != nil {
		return nil, domtree.None, "", err
	}
	a.logger.Debug("domsnap: loaded", "ref", ref, "rendered", d.Rendered, "size", len(markup))
	return tree, root, markup, nil
}

// printSnapshot writes the markup, or result as JSON, to stdout and the
// summary to stderr.
func printSnapshot(cmd *cobra.Command, asJSON bool, snap snapshot.Snapshot, result any, cached bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	} else {
		io.WriteString(out, snap.SerializedHTML)
		if n := len(snap.SerializedHTML); n == 0 || snap.SerializedHTML[n-1] != '\n' {
			io.WriteString(out, "\n")
		}
	}
	printSummary(cmd.ErrOrStderr(), snap.Meta, cached)
	return nil
}
