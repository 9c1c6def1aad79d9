package alerter

import (
	"testing"

	"portfolio-alerter/internal/models"
)

func TestDecodeFieldSet(t *testing.T) {
	fields, err := DecodeFieldSet("Security;Last", "==;>=", "BHP.ASX;10.500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0] != (Field{Name: "Security", Operator: models.OperatorEquals, Value: "BHP.ASX"}) {
		t.Errorf("unexpected first field: %+v", fields[0])
	}
	if fields[1] != (Field{Name: "Last", Operator: models.OperatorGreaterOrEqual, Value: "10.500"}) {
		t.Errorf("unexpected second field: %+v", fields[1])
	}
}

func TestDecodeFieldSetSingleElements(t *testing.T) {
	fields, err := DecodeFieldSet("A;B;C", "1;2;3", "x;y;z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := []string{"A", "B", "C"}
	for i, want := range names {
		if fields[i].Name != want {
			t.Errorf("field %d: expected name %q, got %q", i, want, fields[i].Name)
		}
	}
}

func TestDecodeFieldSetEmptyIsNotAnError(t *testing.T) {
	fields, err := DecodeFieldSet("", "", "")
	if err != nil {
		t.Fatalf("empty encoding must not be an error, got: %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("expected empty field set, got %d fields", len(fields))
	}
}

func TestDecodeFieldSetMismatchedLengths(t *testing.T) {
	if _, err := DecodeFieldSet("Security;Last", "==", "BHP.ASX;10.5"); err == nil {
		t.Error("expected error for mismatched array lengths")
	}
	if _, err := DecodeFieldSet("Security", "==;>=", "BHP.ASX;10.5"); err == nil {
		t.Error("expected error for mismatched array lengths")
	}
}

func TestFieldSetLookup(t *testing.T) {
	fields, err := DecodeFieldSet("Last;Security", ">=;==", "10.5;BHP.ASX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Order is service-defined, lookups go by name.
	security, ok := fields.Lookup("Security")
	if !ok {
		t.Fatal("expected Security to be found")
	}
	if security.Value != "BHP.ASX" {
		t.Errorf("expected value BHP.ASX, got %q", security.Value)
	}

	if _, ok := fields.Lookup("Volume"); ok {
		t.Error("expected Volume to be absent")
	}
}

func TestEncodeFieldSetRoundTrip(t *testing.T) {
	original := FieldSet{
		{Name: "Security", Operator: models.OperatorEquals, Value: "BHP.ASX"},
		{Name: "Last", Operator: models.OperatorLessOrEqual, Value: "19.000"},
	}

	names, operators, values := EncodeFieldSet(original)
	if names != "Security;Last" || operators != "==;<=" || values != "BHP.ASX;19.000" {
		t.Fatalf("unexpected encoding: %q %q %q", names, operators, values)
	}

	decoded, err := DecodeFieldSet(names, operators, values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("field %d did not round-trip: %+v != %+v", i, decoded[i], original[i])
		}
	}
}
