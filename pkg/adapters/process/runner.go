package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Runner backs route hooks with local processes. Only commands on its
// allow-list can run; route files refer to them by name.
type Runner struct {
	registry map[string]HookConfig
	baseDir  string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(hooks map[string]HookConfig) RunnerOption {
	return func(r *Runner) {
		for name, h := range hooks {
			h.Name = name
			r.registry[name] = h
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]HookConfig),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted script/command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = HookConfig{Name: name, Command: command, Args: args}
}

// Names lists the registered hooks, sorted.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hook returns the hook running the command registered as name.
//
// The command gets the transition through the environment:
//
//	WAYFINDER_PATH          full path, query and hash included
//	WAYFINDER_PATHNAME      pathname only
//	WAYFINDER_ROUTES        matched route IDs, comma separated, root first
//	WAYFINDER_TRANSITION    transition ID
//	WAYFINDER_PARAM_<NAME>  one per param, name upper-cased
//
// A non-zero exit fails the hook. Output of {"redirect": "/path"} redirects,
// {"abort": "reason"} aborts; anything else proceeds.
func (r *Runner) Hook(name string) (domain.HookFunc, error) {
	proc, ok := r.registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: process hook not registered: %s", domain.ErrHookNotFound, name)
	}
	return func(ctx context.Context, next *domain.RouterState, t *domain.Transition) (domain.Outcome, error) {
		return r.run(ctx, proc, next, t)
	}, nil
}

// verdict is what a hook command may print.
type verdict struct {
	Redirect string  `json:"redirect"`
	Abort    *string `json:"abort"`
}

func (r *Runner) run(ctx context.Context, proc HookConfig, next *domain.RouterState, t *domain.Transition) (domain.Outcome, error) {
	// Security: state travels as environment variables, never as flags.
	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), environment(proc, next, t)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return domain.Outcome{}, fmt.Errorf("process hook %s failed: %w. Stderr: %s", proc.Name, err, strings.TrimSpace(stderr.String()))
	}

	trimmed := strings.TrimSpace(stdout.String())
	if !strings.HasPrefix(trimmed, "{") {
		return domain.Proceed(), nil
	}
	var v verdict
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return domain.Outcome{}, fmt.Errorf("process hook %s: invalid output: %w", proc.Name, err)
	}
	switch {
	case v.Redirect != "":
		return domain.RedirectTo(domain.ParseLocation(v.Redirect)), nil
	case v.Abort != nil:
		return domain.Abort(*v.Abort), nil
	default:
		return domain.Proceed(), nil
	}
}

func environment(proc HookConfig, next *domain.RouterState, t *domain.Transition) []string {
	var env []string
	for k, v := range proc.Environment {
		env = append(env, k+"="+v)
	}
	if t != nil {
		env = append(env, "WAYFINDER_TRANSITION="+t.ID)
	}
	if next == nil {
		return env
	}
	if next.Location != nil {
		env = append(env,
			"WAYFINDER_PATH="+next.Location.Path(),
			"WAYFINDER_PATHNAME="+next.Location.Pathname,
		)
	}
	env = append(env, "WAYFINDER_ROUTES="+strings.Join(next.Branch.IDs(), ","))
	for k, v := range next.Params {
		env = append(env, fmt.Sprintf("WAYFINDER_PARAM_%s=%s", strings.ToUpper(k), v))
	}
	return env
}
