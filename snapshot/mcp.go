// CLAUDE:SUMMARY Registers the domsnap_transform and domsnap_adaptive MCP tools.
package snapshot

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domsnap/domtree"
	"github.com/hazyhaar/domsnap/kit"
)

// RegisterMCP registers the snapshot tools on an MCP server. Option fields a
// call leaves out take their value from base.
func (s *Snapshotter) RegisterMCP(srv *mcp.Server, base Options) {
	s.registerTransformTool(srv, base)
	s.registerAdaptiveTool(srv, base)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func optionProperties(props map[string]any) map[string]any {
	props["html"] = map[string]any{"type": "string", "description": "Markup to snapshot (a full document or a fragment)"}
	props["assign_unique_ids"] = map[string]any{"type": "boolean", "description": "Tag container, interactive and preserved elements with data-uid"}
	props["debug"] = map[string]any{"type": "boolean", "description": "Pretty-print the output"}
	props["keep_unknown_elements"] = map[string]any{"type": "boolean", "description": "Keep elements of unknown category"}
	props["preserve_attribute"] = map[string]any{"type": "string", "description": "Attribute marking subtrees to keep verbatim (default data-preserve, empty disables)"}
	props["skip_markdown_translation"] = map[string]any{"type": "boolean", "description": "Leave content elements as markup"}
	return props
}

// toolOptions are the Options fields accepted by the tools.
type toolOptions struct {
	HTML                    string  `json:"html"`
	AssignUniqueIDs         *bool   `json:"assign_unique_ids,omitempty"`
	Debug                   *bool   `json:"debug,omitempty"`
	KeepUnknownElements     *bool   `json:"keep_unknown_elements,omitempty"`
	PreserveAttribute       *string `json:"preserve_attribute,omitempty"`
	SkipMarkdownTranslation *bool   `json:"skip_markdown_translation,omitempty"`
}

func (o toolOptions) options(base Options) Options {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	opts := base
	set(&opts.AssignUniqueIDs, o.AssignUniqueIDs)
	set(&opts.Debug, o.Debug)
	set(&opts.KeepUnknownElements, o.KeepUnknownElements)
	set(&opts.SkipMarkdownTranslation, o.SkipMarkdownTranslation)
	if o.PreserveAttribute != nil {
		opts.PreserveAttribute = *o.PreserveAttribute
	}
	return opts
}

func (o toolOptions) tree() (*domtree.Tree, error) {
	if o.HTML == "" {
		return nil, errors.New("html is required")
	}
	return domtree.ParseString(o.HTML)
}

// --- transform ---

type transformRequest struct {
	toolOptions
	K         float64 `json:"k"`
	L         float64 `json:"l"`
	M         float64 `json:"m"`
	Linearize bool    `json:"linearize,omitempty"`
}

func (s *Snapshotter) registerTransformTool(srv *mcp.Server, base Options) {
	tool := &mcp.Tool{
		Name:        "domsnap_transform",
		Description: "Compress HTML into a size-bounded snapshot with explicit parameters k (container merging), l (text compression) and m (attribute threshold).",
		InputSchema: inputSchema(optionProperties(map[string]any{
			"k":         map[string]any{"type": "number", "description": "Container merge aggressiveness in [0, 1]"},
			"l":         map[string]any{"type": "number", "description": "Text compression aggressiveness in [0, 1]"},
			"m":         map[string]any{"type": "number", "description": "Attribute retention threshold in [0, 1]"},
			"linearize": map[string]any{"type": "boolean", "description": "Merge every container (overrides k)"},
		}), []string{"html", "k", "l", "m"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*transformRequest)
		tree, err := r.tree()
		if err != nil {
			return nil, err
		}
		p := Params{K: r.K, L: r.L, M: r.M}
		if r.Linearize {
			p.K = Linearize
		}
		return s.Transform(tree, tree.Root(), p, r.options(base))
	}

	kit.RegisterMCPTool(srv, tool, kit.Logging(s.cfg.Logger, tool.Name)(endpoint), kit.DecodeArgs[transformRequest]())
}

// --- adaptive ---

type adaptiveRequest struct {
	toolOptions
	MaxTokens     int  `json:"max_tokens,omitempty"`
	MaxIterations *int `json:"max_iterations,omitempty"`
}

func (s *Snapshotter) registerAdaptiveTool(srv *mcp.Server, base Options) {
	tool := &mcp.Tool{
		Name:        "domsnap_adaptive",
		Description: "Compress HTML into a snapshot that fits a token budget, searching the compression parameters automatically.",
		InputSchema: inputSchema(optionProperties(map[string]any{
			"max_tokens":     map[string]any{"type": "integer", "description": "Token budget (default 32768)"},
			"max_iterations": map[string]any{"type": "integer", "description": "Extra attempts after the first (default 5)"},
		}), []string{"html"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*adaptiveRequest)
		tree, err := r.tree()
		if err != nil {
			return nil, err
		}
		iterations := -1
		if r.MaxIterations != nil {
			iterations = *r.MaxIterations
		}
		return s.AdaptiveTransform(tree, tree.Root(), r.MaxTokens, iterations, r.options(base))
	}

	kit.RegisterMCPTool(srv, tool, kit.Logging(s.cfg.Logger, tool.Name)(endpoint), kit.DecodeArgs[adaptiveRequest]())
}
