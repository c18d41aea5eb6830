package command

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"telegram-event-scheduler/internal/domain"
)

func acceptAll(context.Context, ParseRequest) (ParseOutcome, error) {
	return ParseOutcome{Values: FieldValues{}}, nil
}

func noopHandler(context.Context, Invocation, FieldValues) error { return nil }

func TestRegistryRegisterValidation(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		name string
		key  string
		def  Definition
		h    Handler
	}{
		{"empty key", "", Definition{Parse: acceptAll}, noopHandler},
		{"nil parser", "join", Definition{}, noopHandler},
		{"nil handler", "join", Definition{Parse: acceptAll}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := r.Register(tc.key, tc.def, tc.h); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestRegistryDuplicateKeepsOriginal(t *testing.T) {
	r := NewRegistry()

	first := Definition{Description: "first", Parse: acceptAll}
	if err := r.Register("join", first, noopHandler); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := r.Register("join", Definition{Description: "second", Parse: acceptAll}, noopHandler)
	if !IsDuplicate(err) {
		t.Fatalf("err = %v, want duplicate", err)
	}

	reg, ok := r.Get("join")
	if !ok {
		t.Fatal("original registration gone")
	}
	if reg.Def.Description != "first" {
		t.Fatalf("description = %q, duplicate overwrote the original", reg.Def.Description)
	}
}

func TestRegistryKeysSorted(t *testing.T) {
	r := NewRegistry()
	for _, key := range []string{"split", "join", "cancel", "paid"} {
		if err := r.Register(key, Definition{Parse: acceptAll}, noopHandler); err != nil {
			t.Fatalf("register %q: %v", key, err)
		}
	}

	want := []string{"cancel", "join", "paid", "split"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("nope"); ok {
		t.Fatal("unknown key reported present")
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("join", Definition{Parse: acceptAll}, noopHandler)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r.MustRegister("join", Definition{Parse: acceptAll}, noopHandler)
}

func TestDefinitionStepFor(t *testing.T) {
	def := Definition{
		Parse: acceptAll,
		Steps: []StepSpec{
			{Field: "title", Prompt: "what's the title?"},
			{Field: "when", Prompt: "when?"},
		},
	}

	spec, ok := def.StepFor("when")
	if !ok || spec.Prompt != "when?" {
		t.Fatalf("StepFor(when) = (%+v, %v)", spec, ok)
	}
	if _, ok := def.StepFor("cost"); ok {
		t.Fatal("StepFor reported a descriptor for an undeclared field")
	}
}
