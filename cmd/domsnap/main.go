// CLAUDE:SUMMARY CLI entry point for domsnap: one-shot snapshots, adaptive search, HTTP API and MCP stdio server.
// Command domsnap compresses HTML pages into size-bounded snapshots.
//
// Usage:
//
//	domsnap snap page.html -k 0.5 -l 0.3 -m 0.4
//	domsnap adaptive https://example.com --max-tokens 4096
//	curl -s https://example.com | domsnap snap - --linearize
//	domsnap serve -config domsnap.yaml
//	domsnap mcp
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorIcon, err)
		os.Exit(1)
	}
}
