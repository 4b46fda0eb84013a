package homie

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind is the concrete type of a normalized value.
type ValueKind int

const (
	// KindInteger renders as a line-protocol integer field (42i).
	KindInteger ValueKind = iota

	// KindFloat renders as a line-protocol float field (42.0).
	KindFloat

	// KindBoolean renders as a line-protocol boolean field (t/f).
	KindBoolean

	// KindString renders as a double-quoted string field.
	KindString
)

// Value is a raw payload normalized per a property's datatype.
type Value struct {
	Kind ValueKind

	Int   int64
	Float float64
	Bool  bool
	Str   string

	// FromEnum marks a string payload that was substituted through a
	// configured enum-to-numeric mapping. The encoder tags such records.
	FromEnum bool
}

// Normalize converts a raw string payload into a typed value per the
// declared datatype and an optional enum-to-numeric mapping.
//
//   - integer/float: parsed with strconv; failure is ErrTypeMismatch and
//     the fact must be dropped, never coerced to zero.
//   - boolean: the homie convention is case-sensitive "true"/"false";
//     anything else is ErrTypeMismatch.
//   - enum, string, color, unknown: the mapping is consulted first; on a
//     hit the numeric substitute is used (integral values normalize as
//     integers, fractional as floats) and FromEnum is set. Otherwise the
//     payload passes through as a string field. Downstream storage must
//     tolerate mixed field types across time for such series; that is an
//     accepted tradeoff of graceful degradation, not a bug.
func Normalize(raw string, datatype Datatype, mapping EnumMap) (Value, error) {
	switch datatype {
	case DatatypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an integer", ErrTypeMismatch, raw)
		}
		return Value{Kind: KindInteger, Int: n}, nil

	case DatatypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a float", ErrTypeMismatch, raw)
		}
		// ParseFloat accepts "NaN" and "Inf", and sensor firmwares do
		// publish them, but line protocol has no representation for
		// non-finite fields.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("%w: %q is not a finite float", ErrTypeMismatch, raw)
		}
		return Value{Kind: KindFloat, Float: f}, nil

	case DatatypeBoolean:
		switch raw {
		case "true":
			return Value{Kind: KindBoolean, Bool: true}, nil
		case "false":
			return Value{Kind: KindBoolean, Bool: false}, nil
		default:
			return Value{}, fmt.Errorf("%w: %q is not a homie boolean", ErrTypeMismatch, raw)
		}

	default:
		// enum, string, color, unknown: string passthrough with optional
		// enum remapping. Color decomposition into numeric components is
		// deliberately not done here.
		if mapping != nil {
			if sub, ok := mapping[raw]; ok {
				return numericValue(sub, true), nil
			}
		}
		return Value{Kind: KindString, Str: raw}, nil
	}
}

// numericValue builds an integer or float Value from a mapping substitute.
// Integral substitutes become integer fields so simple 0/1/2 tables keep
// an integer-typed series.
func numericValue(f float64, fromEnum bool) Value {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return Value{Kind: KindInteger, Int: int64(f), FromEnum: fromEnum}
	}
	return Value{Kind: KindFloat, Float: f, FromEnum: fromEnum}
}
