package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/hazyhaar/domsnap/snapcache"
	"github.com/hazyhaar/domsnap/snapshot"
)

// Document names the input of a request: inline markup or a URL, and an
// optional root selector.
type Document struct {
	HTML     string `json:"html,omitempty"`
	URL      string `json:"url,omitempty"`
	Selector string `json:"selector,omitempty"`
}

// SnapshotRequest is the body of POST /v1/snapshot. k, l and m are required;
// linearize replaces k with the linearize sentinel.
type SnapshotRequest struct {
	Document
	K         *float64        `json:"k"`
	L         *float64        `json:"l"`
	M         *float64        `json:"m"`
	Linearize bool            `json:"linearize,omitempty"`
	Options   json.RawMessage `json:"options,omitempty"`
}

// SnapshotResponse is a snapshot plus its cache status.
type SnapshotResponse struct {
	snapshot.Snapshot
	ID     string `json:"id,omitempty"`
	Cached bool   `json:"cached"`
}

// AdaptiveRequest is the body of POST /v1/snapshot/adaptive. A missing
// maxTokens or maxIterations selects the configured default.
type AdaptiveRequest struct {
	Document
	MaxTokens     int             `json:"maxTokens,omitempty"`
	MaxIterations *int            `json:"maxIterations,omitempty"`
	Options       json.RawMessage `json:"options,omitempty"`
}

// AdaptiveResponse is an adaptive snapshot plus its cache status.
type AdaptiveResponse struct {
	snapshot.AdaptiveSnapshot
	ID     string `json:"id,omitempty"`
	Cached bool   `json:"cached"`
}

func (s *Server) transform(ctx context.Context, req any) (any, error) {
	r := req.(*SnapshotRequest)
	if (r.K == nil && !r.Linearize) || r.L == nil || r.M == nil {
		return nil, fmt.Errorf("%w: k, l and m are required", errBadRequest)
	}
	p := snapshot.Params{L: *r.L, M: *r.M}
	if r.Linearize {
		p.K = snapshot.Linearize
	} else {
		p.K = *r.K
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tree, root, markup, err := s.resolve(ctx, r.Document)
	if err != nil {
		return nil, err
	}
	opts, err := s.options(r.Options)
	if err != nil {
		return nil, err
	}

	var key string
	if s.cfg.Cache != nil {
		key = snapcache.Key(s.cfg.Snapshotter.Tables(), markup, p, opts)
		if e := s.lookup(ctx, key); e != nil {
			return &SnapshotResponse{Snapshot: e.Snapshot, ID: e.ID, Cached: true}, nil
		}
	}

	snap, err := s.cfg.Snapshotter.Transform(tree, root, p, opts)
	if err != nil {
		return nil, err
	}
	resp := &SnapshotResponse{Snapshot: *snap}
	if s.cfg.Cache != nil {
		resp.ID = s.store(ctx, key, snap, nil)
	}
	return resp, nil
}

func (s *Server) adaptive(ctx context.Context, req any) (any, error) {
	r := req.(*AdaptiveRequest)
	maxIterations := -1
	if r.MaxIterations != nil {
		if *r.MaxIterations < 0 {
			return nil, fmt.Errorf("%w: maxIterations must not be negative", errBadRequest)
		}
		maxIterations = *r.MaxIterations
	}
	if r.MaxTokens < 0 {
		return nil, fmt.Errorf("%w: maxTokens must not be negative", errBadRequest)
	}

	tree, root, markup, err := s.resolve(ctx, r.Document)
	if err != nil {
		return nil, err
	}
	opts, err := s.options(r.Options)
	if err != nil {
		return nil, err
	}

	var key string
	if s.cfg.Cache != nil {
		key = snapcache.AdaptiveKey(s.cfg.Snapshotter.Tables(), markup, r.MaxTokens, maxIterations, opts)
		if e := s.lookup(ctx, key); e != nil && e.Adaptive != nil {
			return &AdaptiveResponse{
				AdaptiveSnapshot: snapshot.AdaptiveSnapshot{Snapshot: e.Snapshot, Parameters: *e.Adaptive},
				ID:               e.ID,
				Cached:           true,
			}, nil
		}
	}

	snap, err := s.cfg.Snapshotter.AdaptiveTransform(tree, root, r.MaxTokens, maxIterations, opts)
	if err != nil {
		return nil, err
	}
	resp := &AdaptiveResponse{AdaptiveSnapshot: *snap}
	if s.cfg.Cache != nil {
		resp.ID = s.store(ctx, key, &snap.Snapshot, &snap.Parameters)
	}
	return resp, nil
}

// options applies the fields a request sets on top of the configured
// options. Fields the request leaves out keep their configured value.
func (s *Server) options(raw json.RawMessage) (snapshot.Options, error) {
	opts := *s.cfg.Options
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return opts, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return snapshot.Options{}, fmt.Errorf("%w: options: %w", errBadRequest, err)
	}
	return opts, nil
}

// lookup returns the cached entry for key, or nil. Cache failures are
// logged and treated as misses.
func (s *Server) lookup(ctx context.Context, key string) *snapcache.Entry {
	e, err := s.cfg.Cache.Get(ctx, key)
	if err != nil {
		LoggerFrom(ctx).Warn("server: cache get", "error", err)
		return nil
	}
	return e
}

func (s *Server) store(ctx context.Context, key string, snap *snapshot.Snapshot, params *snapshot.AdaptiveParameters) string {
	e, err := s.cfg.Cache.Put(ctx, key, snap, params)
	if err != nil {
		LoggerFrom(ctx).Warn("server: cache put", "error", err)
		return ""
	}
	return e.ID
}
