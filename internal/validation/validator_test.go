package validation_test

import (
	"testing"

	"github.com/gpossst/fitplan/internal/validation"
)

type address struct {
	City string `json:"city" validate:"required"`
}

type request struct {
	Name    string  `json:"name"              validate:"required,max=5"`
	Kind    string  `json:"kind"              validate:"oneof='a b' c"`
	Count   int     `json:"count,omitempty"   validate:"gte=0"`
	Address address `json:"address"`
}

func TestValidateStruct(t *testing.T) {
	valid := request{Name: "bob", Kind: "a b", Count: 1, Address: address{City: "Oulu"}}
	if err := validation.ValidateStruct(valid); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	invalid := request{Name: "", Kind: "d", Count: -1, Address: address{City: ""}}
	err := validation.ValidateStruct(invalid)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"name", "kind", "count", "address.city"} {
		if !err.Has(field) {
			t.Errorf("expected error for %s, got %v", field, err)
		}
	}
	for _, f := range err.Fields {
		if f.Field == "kind" && f.Message != "kind must be one of: a b c" {
			t.Errorf("unexpected oneof message %q", f.Message)
		}
		if f.Field == "address.city" && f.Message != "address.city is required" {
			t.Errorf("unexpected required message %q", f.Message)
		}
	}
}

func TestMerge(t *testing.T) {
	if got := validation.Merge(nil, nil); got != nil {
		t.Errorf("Merge(nil, nil) = %v, want nil", got)
	}
	a := validation.NewFieldError("a", "required", "a is required", nil)
	b := validation.NewFieldError("b", "gt", "b must be greater than 0", 0)
	merged := validation.Merge(a, nil, b)
	if len(merged.Fields) != 2 || !merged.Has("a") || !merged.Has("b") {
		t.Errorf("unexpected merge result %+v", merged)
	}
	if merged.Error() != "a is required; b must be greater than 0" {
		t.Errorf("Error() = %q", merged.Error())
	}
}
