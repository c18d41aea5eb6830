package command

import "context"

// FieldValues holds normalized field values keyed by field name.
type FieldValues map[string]string

// ParseRequest is everything a parser may consult: the raw argument string,
// the triggering invocation and the dependency container for lookups.
type ParseRequest struct {
	Args string
	Inv  Invocation
	Deps *Deps
}

// ParseOutcome is the parser verdict, one of three mutually exclusive shapes:
//
//   - Reject non-empty: refuse the command and reply with Reject verbatim,
//     no collection, no handler;
//   - Missing non-empty: Values holds what was understood, the listed fields
//     get collected interactively in exactly this order;
//   - neither: Values is complete and the handler runs immediately.
//
// A non-nil error from ParseFunc is an infrastructure failure, not a user
// mistake, and aborts the command.
type ParseOutcome struct {
	Values  FieldValues
	Missing []string
	Reject  string
}

type ParseFunc func(ctx context.Context, req ParseRequest) (ParseOutcome, error)
