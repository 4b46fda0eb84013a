package homie_test

import (
	"errors"
	"testing"

	"homiegraf/internal/homie"
)

func TestNormalize_Numeric(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		datatype homie.Datatype
		want     homie.Value
	}{
		{"integer", "42", homie.DatatypeInteger, homie.Value{Kind: homie.KindInteger, Int: 42}},
		{"negative integer", "-7", homie.DatatypeInteger, homie.Value{Kind: homie.KindInteger, Int: -7}},
		{"float", "3.14", homie.DatatypeFloat, homie.Value{Kind: homie.KindFloat, Float: 3.14}},
		{"float without fraction", "21", homie.DatatypeFloat, homie.Value{Kind: homie.KindFloat, Float: 21}},
		{"scientific float", "1e3", homie.DatatypeFloat, homie.Value{Kind: homie.KindFloat, Float: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := homie.Normalize(tt.raw, tt.datatype, nil)
			if err != nil {
				t.Fatalf("Normalize(%q, %s) error = %v", tt.raw, tt.datatype, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q, %s) = %+v, want %+v", tt.raw, tt.datatype, got, tt.want)
			}
		})
	}
}

func TestNormalize_TypeMismatch(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		datatype homie.Datatype
	}{
		{"integer from text", "abc", homie.DatatypeInteger},
		{"integer from float", "3.14", homie.DatatypeInteger},
		{"float from text", "abc", homie.DatatypeFloat},
		{"float NaN", "NaN", homie.DatatypeFloat},
		{"float lowercase nan", "nan", homie.DatatypeFloat},
		{"float Inf", "Inf", homie.DatatypeFloat},
		{"float positive infinity", "+Inf", homie.DatatypeFloat},
		{"float negative infinity", "-inf", homie.DatatypeFloat},
		{"boolean uppercase", "TRUE", homie.DatatypeBoolean},
		{"boolean numeric", "1", homie.DatatypeBoolean},
		{"boolean empty", "", homie.DatatypeBoolean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := homie.Normalize(tt.raw, tt.datatype, nil)
			if !errors.Is(err, homie.ErrTypeMismatch) {
				t.Errorf("Normalize(%q, %s) error = %v, want ErrTypeMismatch", tt.raw, tt.datatype, err)
			}
		})
	}
}

func TestNormalize_Boolean(t *testing.T) {
	got, err := homie.Normalize("true", homie.DatatypeBoolean, nil)
	if err != nil || got.Kind != homie.KindBoolean || !got.Bool {
		t.Errorf("Normalize(true) = %+v, %v, want boolean true", got, err)
	}

	got, err = homie.Normalize("false", homie.DatatypeBoolean, nil)
	if err != nil || got.Kind != homie.KindBoolean || got.Bool {
		t.Errorf("Normalize(false) = %+v, %v, want boolean false", got, err)
	}
}

func TestNormalize_EnumMapping(t *testing.T) {
	mapping := homie.EnumMap{"standby": 0, "low": 1, "high": 2}

	got, err := homie.Normalize("low", homie.DatatypeEnum, mapping)
	if err != nil {
		t.Fatalf("Normalize(low) error = %v", err)
	}
	want := homie.Value{Kind: homie.KindInteger, Int: 1, FromEnum: true}
	if got != want {
		t.Errorf("Normalize(low) = %+v, want %+v", got, want)
	}

	// Unmapped values pass through as strings, never dropped.
	got, err = homie.Normalize("medium", homie.DatatypeEnum, mapping)
	if err != nil {
		t.Fatalf("Normalize(medium) error = %v", err)
	}
	if got.Kind != homie.KindString || got.Str != "medium" || got.FromEnum {
		t.Errorf("Normalize(medium) = %+v, want string passthrough", got)
	}
}

func TestNormalize_FractionalMapping(t *testing.T) {
	// Fractional substitutes keep float typing (e.g. the h1/h2 staging
	// sub-modes mapped between whole mode values).
	mapping := homie.EnumMap{"h1": 2.1}

	got, err := homie.Normalize("h1", homie.DatatypeEnum, mapping)
	if err != nil {
		t.Fatalf("Normalize(h1) error = %v", err)
	}
	want := homie.Value{Kind: homie.KindFloat, Float: 2.1, FromEnum: true}
	if got != want {
		t.Errorf("Normalize(h1) = %+v, want %+v", got, want)
	}
}

func TestNormalize_UnknownAndString(t *testing.T) {
	// Unknown datatype is not an error: string handling applies, and the
	// mapping is still consulted.
	mapping := homie.EnumMap{"open": 1, "closed": 0}

	got, err := homie.Normalize("open", homie.DatatypeUnknown, mapping)
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	if got.Kind != homie.KindInteger || got.Int != 1 || !got.FromEnum {
		t.Errorf("Normalize(open, unknown) = %+v, want mapped integer 1", got)
	}

	got, err = homie.Normalize("hello", homie.DatatypeString, nil)
	if err != nil || got.Kind != homie.KindString || got.Str != "hello" {
		t.Errorf("Normalize(hello, string) = %+v, %v, want string", got, err)
	}
}

func TestNormalize_ColorStaysString(t *testing.T) {
	got, err := homie.Normalize("255,128,0", homie.DatatypeColor, nil)
	if err != nil {
		t.Fatalf("Normalize(color) error = %v", err)
	}
	if got.Kind != homie.KindString || got.Str != "255,128,0" {
		t.Errorf("Normalize(color) = %+v, want undecomposed string", got)
	}
}
