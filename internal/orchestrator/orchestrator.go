// File: internal/orchestrator/orchestrator.go
// Brief: Per-service pipeline and fail-soft fleet execution.

// Package orchestrator drives one service, or the whole catalog, through
// RESOLVE -> GENERATE -> ENSURE_STACK -> EXECUTE. Fleet runs are strictly
// sequential: provisioning backends are not safe to share across concurrent
// sessions, and sequential output keeps failures attributable.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/example/pulumiw/internal/catalog"
	"github.com/example/pulumiw/internal/configtree"
	"github.com/example/pulumiw/internal/resolve"
	"github.com/example/pulumiw/internal/stackfile"
	"go.uber.org/zap"
)

// State names the pipeline step a service finished in.
type State string

const (
	StateResolve     State = "RESOLVE"
	StateGenerate    State = "GENERATE"
	StateEnsureStack State = "ENSURE_STACK"
	StateExecute     State = "EXECUTE"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// Runner is the external provisioning tool boundary.
type Runner interface {
	Run(ctx context.Context, workdir string, args ...string) (int, error)
	EnsureStack(ctx context.Context, workdir, stack string) error
}

// Options configure a run.
type Options struct {
	Root             string
	Stack            string
	Action           string
	GenerateOnly     bool
	ShowDiff         bool
	ProviderOverride string
	ExtraArgs        []string

	DiffOut io.Writer
	Log     *zap.SugaredLogger
}

// Result records the outcome of one service.
type Result struct {
	Service       string
	State         State
	FailedIn      State // step the failure happened in, when State == StateFailed
	Message       string
	GeneratedFile string
	ExitCode      int
}

// Failed reports whether this service's run failed.
func (r Result) Failed() bool { return r.State == StateFailed }

type Orchestrator struct {
	runner Runner
	opts   Options
}

func New(runner Runner, opts Options) *Orchestrator {
	return &Orchestrator{runner: runner, opts: opts}
}

// ProcessService runs the full pipeline for one catalog entry. Errors before
// EXECUTE are fatal for the service and leave no partial generated file; a
// non-zero pulumi exit is recorded, not escalated, so fleet runs can
// continue.
func (o *Orchestrator) ProcessService(ctx context.Context, entry catalog.Entry) Result {
	fail := func(in State, err error) Result {
		o.logw().Errorw("service failed", "service", entry.Name, "state", string(in), "error", err)
		return Result{Service: entry.Name, State: StateFailed, FailedIn: in, Message: err.Error()}
	}

	provider := entry.Provider
	if o.opts.ProviderOverride != "" {
		provider = o.opts.ProviderOverride
	}
	serviceDir := filepath.Join(o.opts.Root, entry.Path)

	// RESOLVE
	global, err := resolve.ReadGlobal(o.opts.Root, provider, o.opts.Stack)
	if err != nil {
		return fail(StateResolve, err)
	}
	override, err := resolve.ReadOverride(serviceDir, o.opts.Stack)
	if err != nil {
		return fail(StateResolve, err)
	}
	resolved, err := resolve.Resolve(global, override)
	if err != nil {
		return fail(StateResolve, err)
	}
	project, err := resolve.ProjectName(serviceDir)
	if err != nil {
		return fail(StateResolve, err)
	}
	mapped, err := configtree.Flatten(resolved, project)
	if err != nil {
		return fail(StateResolve, err)
	}

	// GENERATE
	genPath := resolve.GeneratedPath(serviceDir, o.opts.Stack)
	previous, prevRaw, err := stackfile.ReadPrevious(genPath)
	if err != nil {
		return fail(StateGenerate, err)
	}
	data, err := stackfile.Render(stackfile.Build(previous, mapped), stackfile.Header(provider, o.opts.Stack))
	if err != nil {
		return fail(StateGenerate, err)
	}
	if o.opts.ShowDiff && o.opts.DiffOut != nil {
		if diff := stackfile.Diff(genPath, prevRaw, data); diff != "" {
			fmt.Fprint(o.opts.DiffOut, diff)
		}
	}
	if err := stackfile.Write(genPath, data); err != nil {
		return fail(StateGenerate, fmt.Errorf("write %s: %w", genPath, err))
	}
	o.logw().Infow("generated stack file", "service", entry.Name, "file", genPath)

	if o.opts.GenerateOnly {
		return Result{
			Service:       entry.Name,
			State:         StateDone,
			Message:       "config generated (--generate-only)",
			GeneratedFile: genPath,
		}
	}

	// ENSURE_STACK
	if err := o.runner.EnsureStack(ctx, serviceDir, o.opts.Stack); err != nil {
		return fail(StateEnsureStack, fmt.Errorf("ensure stack %q: %w", o.opts.Stack, err))
	}

	// EXECUTE
	args := append([]string{o.opts.Action, "-s", o.opts.Stack}, o.opts.ExtraArgs...)
	code, err := o.runner.Run(ctx, serviceDir, args...)
	if err != nil {
		return fail(StateExecute, err)
	}
	if code != 0 {
		res := fail(StateExecute, fmt.Errorf("pulumi %s exited with code %d", o.opts.Action, code))
		res.ExitCode = code
		res.GeneratedFile = genPath
		return res
	}
	return Result{
		Service:       entry.Name,
		State:         StateDone,
		Message:       fmt.Sprintf("pulumi %s succeeded", o.opts.Action),
		GeneratedFile: genPath,
	}
}

// ProcessAll folds the pipeline over every entry, strictly sequentially and
// fail-soft: one service failing never stops the rest. A cancelled context
// aborts the loop but the results collected so far are still returned.
func (o *Orchestrator) ProcessAll(ctx context.Context, entries []catalog.Entry) []Result {
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		if ctx.Err() != nil {
			o.logw().Warnw("fleet run interrupted", "completed", len(results), "total", len(entries))
			break
		}
		o.logw().Infow("processing service", "service", entry.Name, "provider", entry.Provider)
		results = append(results, o.ProcessService(ctx, entry))
	}
	return results
}

// AnyFailed reports whether at least one result failed.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}

func (o *Orchestrator) logw() *zap.SugaredLogger {
	if o.opts.Log != nil {
		return o.opts.Log
	}
	return zap.NewNop().Sugar()
}
