package compiler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Normalize builds a RouteTree from raw route configuration.
//
// Accepted inputs: domain.RouteConfig, *domain.RouteConfig, []domain.RouteConfig,
// []*domain.RouteNode, map[string]any, []map[string]any, []any and
// *domain.RouteTree (returned as-is). hooks may be nil when no route names a hook.
func Normalize(raw any, hooks ports.HookResolver) (*domain.RouteTree, error) {
	switch v := raw.(type) {
	case *domain.RouteTree:
		return v, nil
	case []*domain.RouteNode:
		if err := validateNodes(v, nil); err != nil {
			return nil, err
		}
		orderSiblings(v)
		return domain.NewRouteTree(v), nil
	}

	configs, err := toConfigs(raw)
	if err != nil {
		return nil, err
	}

	b := &builder{hooks: hooks, ids: make(map[string]struct{})}
	nodes, err := b.build(configs, nil)
	if err != nil {
		return nil, err
	}
	return domain.NewRouteTree(nodes), nil
}

func toConfigs(raw any) ([]domain.RouteConfig, error) {
	switch v := raw.(type) {
	case nil:
		return nil, &domain.ConfigError{Reason: "no routes given"}
	case domain.RouteConfig:
		return []domain.RouteConfig{v}, nil
	case *domain.RouteConfig:
		return []domain.RouteConfig{*v}, nil
	case []domain.RouteConfig:
		return v, nil
	case []*domain.RouteConfig:
		out := make([]domain.RouteConfig, len(v))
		for i, c := range v {
			out[i] = *c
		}
		return out, nil
	case map[string]any, []map[string]any:
		return decodeRaw(v)
	case []any:
		out := make([]domain.RouteConfig, 0, len(v))
		for _, item := range v {
			sub, err := toConfigs(item)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	default:
		return nil, &domain.ConfigError{Reason: fmt.Sprintf("unsupported route definition %T", raw)}
	}
}

func decodeRaw(raw any) ([]domain.RouteConfig, error) {
	configs, err := decodeConfigs(raw)
	if err != nil {
		return nil, &domain.ConfigError{Reason: "malformed route definition", Err: err}
	}
	return configs, nil
}

type builder struct {
	hooks ports.HookResolver
	ids   map[string]struct{}
}

func (b *builder) build(configs []domain.RouteConfig, parents []string) ([]*domain.RouteNode, error) {
	nodes := make([]*domain.RouteNode, 0, len(configs))
	for i := range configs {
		n, err := b.buildNode(&configs[i], parents)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := checkSiblings(nodes, parents); err != nil {
		return nil, err
	}
	orderSiblings(nodes)
	return nodes, nil
}

func (b *builder) buildNode(cfg *domain.RouteConfig, parents []string) (*domain.RouteNode, error) {
	chain := append(append([]string(nil), parents...), cfg.Path)
	abs := absolute(chain)

	n := &domain.RouteNode{
		ID:       cfg.ID,
		Path:     cfg.Path,
		Terminal: cfg.Terminal,
		Meta:     cfg.Meta,
	}
	if err := n.Compile(); err != nil {
		return nil, relocate(err, abs)
	}
	if n.IsIndex() && len(cfg.Children) > 0 {
		return nil, &domain.ConfigError{Path: abs, Reason: "a route with children needs a path"}
	}

	if n.ID == "" {
		n.ID = abs
		if n.IsIndex() {
			n.ID += "#index"
		}
	}
	if _, dup := b.ids[n.ID]; dup {
		return nil, &domain.ConfigError{Path: abs, Reason: fmt.Sprintf("duplicate route id %q", n.ID)}
	}
	b.ids[n.ID] = struct{}{}

	var err error
	if n.OnEnter, err = b.hook(cfg.EnterHook, cfg.OnEnter, abs); err != nil {
		return nil, err
	}
	if n.OnChange, err = b.hook(cfg.ChangeHook, cfg.OnChange, abs); err != nil {
		return nil, err
	}
	if n.OnLeave, err = b.hook(cfg.LeaveHook, cfg.OnLeave, abs); err != nil {
		return nil, err
	}

	n.Artifact = cfg.ArtifactRef
	if n.Artifact == nil && cfg.Artifact != "" {
		n.Artifact = domain.NamedArtifact(cfg.Artifact)
	}
	if len(cfg.ArtifactRefs) > 0 || len(cfg.Artifacts) > 0 {
		n.Artifacts = make(map[string]*domain.ArtifactRef, len(cfg.Artifacts)+len(cfg.ArtifactRefs))
		for key, name := range cfg.Artifacts {
			n.Artifacts[key] = domain.NamedArtifact(name)
		}
		for key, ref := range cfg.ArtifactRefs {
			n.Artifacts[key] = ref
		}
	}

	if len(cfg.Children) > 0 {
		if n.Children, err = b.build(cfg.Children, chain); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (b *builder) hook(direct domain.HookFunc, name, path string) (domain.HookFunc, error) {
	if direct != nil || name == "" {
		return direct, nil
	}
	if b.hooks == nil {
		return nil, &domain.ConfigError{Path: path, Reason: fmt.Sprintf("cannot resolve hook %q", name), Err: domain.ErrHookNotFound}
	}
	h, err := b.hooks.ResolveHook(name)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Reason: fmt.Sprintf("cannot resolve hook %q", name), Err: err}
	}
	return h, nil
}

// validateNodes checks prebuilt nodes the same way configs are checked.
func validateNodes(nodes []*domain.RouteNode, parents []string) error {
	for _, n := range nodes {
		chain := append(append([]string(nil), parents...), n.Path)
		if err := n.Compile(); err != nil {
			return relocate(err, absolute(chain))
		}
		if n.IsIndex() && len(n.Children) > 0 {
			return &domain.ConfigError{Path: absolute(chain), Reason: "a route with children needs a path"}
		}
		if n.ID == "" {
			n.ID = absolute(chain)
			if n.IsIndex() {
				n.ID += "#index"
			}
		}
		if err := validateNodes(n.Children, chain); err != nil {
			return err
		}
		orderSiblings(n.Children)
	}
	return checkSiblings(nodes, parents)
}

// checkSiblings rejects siblings the matcher could never tell apart.
func checkSiblings(nodes []*domain.RouteNode, parents []string) error {
	seen := make(map[string]*domain.RouteNode, len(nodes))
	for _, n := range nodes {
		sig := ""
		if !n.IsIndex() {
			sig = domain.Signature(n.Segments())
		}
		if prev, ok := seen[sig]; ok {
			return &domain.ConfigError{
				Path:   absolute(append(append([]string(nil), parents...), n.Path)),
				Reason: fmt.Sprintf("indistinguishable from sibling %q", prev.Path),
			}
		}
		seen[sig] = n
	}
	return nil
}

// orderSiblings moves splat routes after the others, keeping relative order.
func orderSiblings(nodes []*domain.RouteNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return !nodes[i].HasSplat() && nodes[j].HasSplat()
	})
}

func absolute(chain []string) string {
	var segments []string
	for _, p := range chain {
		segments = append(segments, domain.SplitPath(p)...)
	}
	return "/" + strings.Join(segments, "/")
}

func relocate(err error, path string) error {
	var cfgErr *domain.ConfigError
	if errors.As(err, &cfgErr) {
		return &domain.ConfigError{Path: path, Reason: cfgErr.Reason, Err: cfgErr.Err}
	}
	return &domain.ConfigError{Path: path, Reason: "invalid pattern", Err: err}
}
