package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/domsnap/config"
	"github.com/hazyhaar/domsnap/snapshot"
)

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "domsnap",
		Short: "Compress HTML pages into size-bounded snapshots",
		Long: `domsnap reduces an HTML document to a compact snapshot: containers are
merged, content is rewritten as markdown, text is shortened by sentence
ranking and low-value attributes are dropped. The adaptive mode searches the
compression parameters until the snapshot fits a token budget.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to domsnap.yaml")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides the config)")
	root.PersistentFlags().BoolVar(&g.noCache, "no-cache", false, "bypass the snapshot cache")

	root.AddCommand(newSnapCmd(g))
	root.AddCommand(newAdaptiveCmd(g))
	root.AddCommand(newServeCmd(g))
	root.AddCommand(newMCPCmd(g))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "domsnap %s\n", Version)
		},
	})
	return root
}

// withApp builds the app for the duration of run.
func withApp(g *globalFlags, reg prometheus.Registerer, run func(*cobra.Command, []string, *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, g, reg)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.close(cmd.Context()); err != nil {
				a.logger.Warn("domsnap: shutdown", "error", err)
			}
		}()
		return run(cmd, args, a)
	}
}

// documentFlags select the input of snap and adaptive.
type documentFlags struct {
	selector string
	render   bool
	json     bool
}

func (d *documentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.selector, "selector", "", "CSS selector of the root element (tag, .class, #id, [attr=val], descendants)")
	cmd.Flags().BoolVar(&d.render, "render", false, "render URLs in headless Chrome (needs browser.enabled)")
	cmd.Flags().BoolVar(&d.json, "json", false, "print the full result as JSON instead of the markup")
}

// optionFlags override the configured snapshot options.
type optionFlags struct {
	uids, debug, keepUnknown, skipMarkdown bool
	preserve                               string
}

func (o *optionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&o.uids, "uids", false, "tag container, interactive and preserved elements with data-uid")
	f.BoolVar(&o.debug, "debug", false, "pretty-print the snapshot")
	f.BoolVar(&o.keepUnknown, "keep-unknown", false, "keep elements of unknown category")
	f.BoolVar(&o.skipMarkdown, "skip-markdown", false, "leave content elements as markup")
	f.StringVar(&o.preserve, "preserve-attribute", snapshot.DefaultPreserveAttribute, "attribute marking subtrees kept verbatim (empty disables)")
}

func (o *optionFlags) apply(cmd *cobra.Command, cfg *config.Config) snapshot.Options {
	opts := cfg.Snapshot.Options
	f := cmd.Flags()
	if f.Changed("uids") {
		opts.AssignUniqueIDs = o.uids
	}
	if f.Changed("debug") {
		opts.Debug = o.debug
	}
	if f.Changed("keep-unknown") {
		opts.KeepUnknownElements = o.keepUnknown
	}
	if f.Changed("skip-markdown") {
		opts.SkipMarkdownTranslation = o.skipMarkdown
	}
	if f.Changed("preserve-attribute") {
		opts.PreserveAttribute = o.preserve
	}
	return opts
}
