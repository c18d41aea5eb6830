package conversation

import "context"

type Kind string

const (
	KindText   Kind = "text"
	KindChoice Kind = "choice"
)

// Option is one selectable answer for a choice step.
type Option struct {
	Value string // stable token delivered back on selection
	Label string // text shown on the button
}

// OptionLoader produces the current options for a choice step. The engine
// calls it on every render so the list is never stale.
type OptionLoader func(ctx context.Context) ([]Option, error)

// Step is a fully hydrated descriptor for one field the engine collects.
//
// Validate normalizes free-text input and reports a user-facing error when
// the input is unusable; a nil Validate accepts anything. Options must be set
// for KindChoice and is ignored for KindText.
type Step struct {
	Field    string
	Prompt   string
	Kind     Kind
	Validate func(raw string) (string, error)
	Options  OptionLoader
}

// Callback data markers for conversation keyboards.
const (
	CallbackOptionPrefix = "cv:opt:"
	CallbackCancel       = "cv:cancel"
)
