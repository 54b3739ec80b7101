// Package orchestrator runs the ordered steps of a contract scenario.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Step is one unit of a scenario
type Step struct {
	Name string

	// Critical steps abort the run on failure; others are reported and skipped
	Critical bool

	Run func(ctx context.Context) error
}

// Result records how a step ended
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Failed reports whether the step returned an error
func (r Result) Failed() bool {
	return r.Err != nil
}

// Progress receives step notifications, typically a CLI printer
type Progress interface {
	Step(index, total int, name string)
	Warn(format string, args ...any)
}

// StepError is returned when a critical step fails
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Orchestrator runs a scenario's steps in order
type Orchestrator struct {
	name     string
	steps    []Step
	progress Progress
}

// New creates an orchestrator for the named scenario
func New(name string, steps ...Step) *Orchestrator {
	return &Orchestrator{
		name:  name,
		steps: steps,
	}
}

// WithProgress sets the step listener
func (o *Orchestrator) WithProgress(p Progress) *Orchestrator {
	o.progress = p
	return o
}

// Add appends steps to the scenario
func (o *Orchestrator) Add(steps ...Step) {
	o.steps = append(o.steps, steps...)
}

// Run executes every step in order. The first failing critical step stops
// the run and its error is returned wrapped in a StepError; failures of
// other steps are logged and the run continues.
func (o *Orchestrator) Run(ctx context.Context) ([]Result, error) {
	slog.Debug("Orchestrator: Running scenario",
		"scenario", o.name,
		"steps_count", len(o.steps),
	)

	results := make([]Result, 0, len(o.steps))
	for i, step := range o.steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if o.progress != nil {
			o.progress.Step(i+1, len(o.steps), step.Name)
		}

		start := time.Now()
		err := step.Run(ctx)
		results = append(results, Result{Name: step.Name, Err: err, Duration: time.Since(start)})
		if err == nil {
			continue
		}

		if step.Critical || errors.Is(err, context.Canceled) {
			slog.Error("Scenario step failed",
				"scenario", o.name,
				"step", step.Name,
				"error", err,
			)
			return results, &StepError{Step: step.Name, Err: err}
		}

		slog.Warn("Optional scenario step failed, continuing",
			"scenario", o.name,
			"step", step.Name,
			"error", err,
		)
		if o.progress != nil {
			o.progress.Warn("%s failed: %v", step.Name, err)
		}
	}

	return results, nil
}

// Steps returns the registered steps (for inspection/testing)
func (o *Orchestrator) Steps() []Step {
	return o.steps
}
