package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/domsnap/server"
	"github.com/hazyhaar/domsnap/source"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP JSON API",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")

	cmd.RunE = withApp(g, prometheus.DefaultRegisterer, func(cmd *cobra.Command, _ []string, a *app) error {
		hc := a.cfg.HTTP
		if addr != "" {
			hc.Addr = addr
		}
		opts := a.cfg.Snapshot.Options
		var loader *source.Loader
		if hc.AllowURLs {
			fc := a.fetch
			fc.DenyPrivate = fc.DenyPrivate || !hc.AllowPrivateURLs
			loader = source.NewLoader(fc)
		}
		srv := server.New(server.Config{
			Addr:              hc.Addr,
			ReadHeaderTimeout: hc.ReadHeaderTimeout,
			MaxBodyBytes:      hc.MaxBodyBytes,
			Snapshotter:       a.snap,
			Options:           &opts,
			Cache:             a.cache,
			Loader:            loader,
			Gatherer:          prometheus.DefaultGatherer,
			Logger:            a.logger,
		})
		return srv.ListenAndServe(cmd.Context())
	})
	return cmd
}

func newMCPCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the snapshot tools over MCP on stdio",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(g, nil, func(cmd *cobra.Command, _ []string, a *app) error {
		srv := mcp.NewServer(&mcp.Implementation{Name: "domsnap", Version: Version}, nil)
		a.snap.RegisterMCP(srv, a.cfg.Snapshot.Options)
		a.logger.Info("domsnap: mcp server on stdio")
		return srv.Run(cmd.Context(), &mcp.StdioTransport{})
	})
	return cmd
}
