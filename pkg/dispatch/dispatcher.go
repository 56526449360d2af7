// Package dispatch validates command batches against the shell grammar and
// runs each step against the file and system operations.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/fileops"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/metrics"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/nlp"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/sandbox"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/system"
)

// Conjunction separates the commands of a batch.
const Conjunction = nlp.Conjunction

const aiPrefix = "ai "

var (
	// ErrEmptyCommand is returned when a request carries no command text.
	ErrEmptyCommand = errors.New("empty command")
	// ErrInterpretation is returned when an "ai " request cannot be
	// translated into any command.
	ErrInterpretation = errors.New("could not interpret command")
)

// Operation runs one verb with its argument text.
type Operation func(ctx context.Context, arg string) (string, error)

// Interpreter turns free text into a canonical command batch.
type Interpreter interface {
	Interpret(ctx context.Context, text string) (nlp.Interpretation, bool)
}

// Dispatcher owns the verb table. It is safe for concurrent use once
// configured; steps of one batch run sequentially.
type Dispatcher struct {
	files    *fileops.Ops
	stats    *system.Stats
	interp   Interpreter
	ops      map[string]Operation
	disabled map[string]bool
	logger   logrus.FieldLogger
}

// New returns a dispatcher with every shell verb registered. interp may be
// nil, in which case "ai " requests always fail to interpret.
func New(files *fileops.Ops, stats *system.Stats, interp Interpreter) *Dispatcher {
	d := &Dispatcher{
		files:    files,
		stats:    stats,
		interp:   interp,
		ops:      make(map[string]Operation),
		disabled: make(map[string]bool),
	}
	d.registerDefaults()
	return d
}

func (d *Dispatcher) registerDefaults() {
	f, s := d.files, d.stats
	d.ops["ls"] = func(_ context.Context, arg string) (string, error) { return f.List(arg) }
	d.ops["pwd"] = func(context.Context, string) (string, error) { return f.PrintWorkingDir(), nil }
	d.ops["cd"] = func(_ context.Context, arg string) (string, error) { return f.ChangeDir(arg), nil }
	d.ops["mkdir"] = func(_ context.Context, arg string) (string, error) { return f.MakeDirectories(arg), nil }
	d.ops["touch"] = func(_ context.Context, arg string) (string, error) { return f.TouchFiles(arg), nil }
	d.ops["rm"] = func(_ context.Context, arg string) (string, error) { return f.Remove(arg), nil }
	d.ops["cat"] = func(_ context.Context, arg string) (string, error) { return f.Read(arg) }
	d.ops["move"] = func(_ context.Context, arg string) (string, error) {
		src, dest, ok := splitMove(arg)
		if !ok {
			return "", fmt.Errorf("move needs a source and a destination, got %q", arg)
		}
		return f.Move(src, dest), nil
	}
	d.ops["cpu"] = func(ctx context.Context, _ string) (string, error) { return s.CPU(ctx) }
	d.ops["mem"] = func(ctx context.Context, _ string) (string, error) { return s.Memory(ctx) }
	d.ops["ps"] = func(ctx context.Context, _ string) (string, error) { return s.Processes(ctx) }
}

// SetLogger attaches a logger. Passing nil disables logging.
func (d *Dispatcher) SetLogger(l logrus.FieldLogger) {
	d.logger = l
}

// Disable removes verbs from the table; the grammar still accepts them but
// they report as unknown.
func (d *Dispatcher) Disable(verbs ...string) {
	for _, v := range verbs {
		v = strings.ToLower(strings.TrimSpace(v))
		delete(d.ops, v)
		d.disabled[v] = true
	}
}

// Verbs returns the enabled verbs, sorted.
func (d *Dispatcher) Verbs() []string {
	out := make([]string, 0, len(d.ops))
	for v := range d.ops {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Workspace returns the sandbox the file operations run in.
func (d *Dispatcher) Workspace() *sandbox.Workspace {
	return d.files.Workspace()
}

// Interpreter returns the configured interpreter, possibly nil.
func (d *Dispatcher) Interpreter() Interpreter {
	return d.interp
}

// WithWorkspace returns a dispatcher sharing this one's configuration but
// operating on ws.
func (d *Dispatcher) WithWorkspace(ws *sandbox.Workspace) *Dispatcher {
	files := fileops.New(ws)
	files.SetMaxReadSize(d.files.MaxReadSize())
	nd := New(files, d.stats, d.interp)
	nd.logger = d.logger
	for v := range d.disabled {
		nd.Disable(v)
	}
	return nd
}

// Execute runs raw as a batch. Step failures are contained in the report;
// only an empty request or a failed interpretation returns an error.
func (d *Dispatcher) Execute(ctx context.Context, raw string) (*Report, error) {
	report := &Report{Input: raw}

	text := raw
	if len(text) >= len(aiPrefix) && strings.EqualFold(text[:len(aiPrefix)], aiPrefix) {
		in, ok := d.interpret(ctx, strings.TrimSpace(text[len(aiPrefix):]))
		if !ok {
			return nil, ErrInterpretation
		}
		report.Interpreted = in.Command
		report.Source = in.Source
		text = in.Command
	}

	cmds := Reorder(SplitBatch(text))
	if len(cmds) == 0 {
		return nil, ErrEmptyCommand
	}

	report.Steps = make([]StepResult, 0, len(cmds))
	for _, cmd := range cmds {
		step := d.run(ctx, cmd)
		metrics.CommandsTotal.WithLabelValues(stepVerbLabel(step), step.Status).Inc()
		d.debug(step)
		report.Steps = append(report.Steps, step)
	}
	return report, nil
}

func (d *Dispatcher) interpret(ctx context.Context, text string) (nlp.Interpretation, bool) {
	if d.interp == nil || text == "" {
		return nlp.Interpretation{}, false
	}
	in, ok := d.interp.Interpret(ctx, text)
	if !ok || strings.TrimSpace(in.Command) == "" {
		return nlp.Interpretation{}, false
	}
	return in, true
}

func (d *Dispatcher) run(ctx context.Context, cmd string) (step StepResult) {
	step.Command = cmd
	if !Allowed(cmd) {
		step.Status = metrics.StatusRejected
		step.Output = "Not allowed: " + cmd
		return step
	}

	verb, arg := Parse(cmd)
	step.Verb = verb
	op, ok := d.ops[verb]
	if !ok {
		step.Status = metrics.StatusUnknown
		step.Output = "Unknown command: " + verb
		return step
	}

	defer func() {
		if r := recover(); r != nil {
			step.Status = metrics.StatusError
			step.Output = fmt.Sprint(r)
		}
	}()

	out, err := op(ctx, arg)
	if err != nil {
		step.Status = metrics.StatusError
		step.Output = err.Error()
		return step
	}
	step.Status = metrics.StatusOK
	step.Output = out
	return step
}

func (d *Dispatcher) debug(step StepResult) {
	if d.logger == nil {
		return
	}
	d.logger.WithFields(logrus.Fields{
		"verb":   step.Verb,
		"status": step.Status,
	}).Debug("step_executed")
}

func stepVerbLabel(step StepResult) string {
	if step.Verb == "" {
		return "none"
	}
	return step.Verb
}

// UserMessage renders a request-level error the way clients display it.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInterpretation):
		return "AI could not interpret command"
	case errors.Is(err, ErrEmptyCommand):
		return "Empty command"
	default:
		return err.Error()
	}
}
