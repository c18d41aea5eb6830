package command

import (
	"telegram-event-scheduler/internal/conversation"
)

// OptionSource binds a choice loader against the dependency container and
// the triggering invocation at hydration time. Definitions register before
// wiring completes, so the descriptor cannot hold a ready loader; it holds
// the recipe instead. The invocation lets loaders build caller-specific
// lists, such as the events the caller joined.
type OptionSource func(deps *Deps, inv Invocation) conversation.OptionLoader

// StepSpec declares how one field is collected when the parser reports it
// missing.
type StepSpec struct {
	Field    string
	Prompt   string
	Kind     conversation.Kind
	Validate func(raw string) (string, error)
	Options  OptionSource
}

// Hydrate resolves a descriptor into a runnable step. It is a pure transform:
// no caching, the loader it produces reads fresh data on every prompt render.
func Hydrate(spec StepSpec, deps *Deps, inv Invocation) conversation.Step {
	step := conversation.Step{
		Field:    spec.Field,
		Prompt:   spec.Prompt,
		Kind:     spec.Kind,
		Validate: spec.Validate,
	}
	if spec.Options != nil {
		step.Options = spec.Options(deps, inv)
	}
	return step
}
