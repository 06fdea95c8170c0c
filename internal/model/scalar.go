package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ScalarKind discriminates the value held by a Scalar.
type ScalarKind int

const (
	KindNull ScalarKind = iota
	KindString
	KindNumber
	KindBool
)

// Scalar is the value type carried by extracted metrics: a string, a
// number, a boolean, or null. It marshals to the bare JSON value.
type Scalar struct {
	kind ScalarKind
	str  string
	num  float64
	b    bool
}

// Null returns the null Scalar.
func Null() Scalar { return Scalar{} }

// String returns a string Scalar.
func String(s string) Scalar { return Scalar{kind: KindString, str: s} }

// Number returns a numeric Scalar.
func Number(f float64) Scalar { return Scalar{kind: KindNumber, num: f} }

// Bool returns a boolean Scalar.
func Bool(v bool) Scalar { return Scalar{kind: KindBool, b: v} }

// FromAny converts a decoded JSON value into a Scalar. Arrays and objects
// are flattened to their compact JSON text so no model output is lost.
func FromAny(v any) Scalar {
	switch val := v.(type) {
	case nil:
		return Null()
	case string:
		return String(val)
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case int:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return Number(f)
		}
		return String(val.String())
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return Null()
		}
		return String(string(raw))
	}
}

// Kind reports which variant the Scalar holds.
func (s Scalar) Kind() ScalarKind { return s.kind }

// IsNull reports whether the Scalar is null.
func (s Scalar) IsNull() bool { return s.kind == KindNull }

// AsString returns the string value when the Scalar holds one.
func (s Scalar) AsString() (string, bool) {
	if s.kind != KindString {
		return "", false
	}
	return s.str, true
}

// AsBool returns the boolean value when the Scalar holds one.
func (s Scalar) AsBool() (bool, bool) {
	if s.kind != KindBool {
		return false, false
	}
	return s.b, true
}

// AsFloat returns a numeric view of the Scalar. Numbers convert directly;
// strings are parsed after stripping currency/percent decoration. Booleans
// and null do not convert.
func (s Scalar) AsFloat() (float64, bool) {
	switch s.kind {
	case KindNumber:
		return s.num, true
	case KindString:
		cleaned := strings.TrimSpace(s.str)
		cleaned = strings.NewReplacer("$", "", ",", "", "%", "").Replace(cleaned)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Display renders the Scalar for logs and notes.
func (s Scalar) Display() string {
	switch s.kind {
	case KindNull:
		return "null"
	case KindString:
		return s.str
	case KindNumber:
		return strconv.FormatFloat(s.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.b)
	}
	return ""
}

// MarshalJSON writes the bare JSON value.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(s.str)
	case KindNumber:
		return json.Marshal(s.num)
	case KindBool:
		return json.Marshal(s.b)
	}
	return nil, eris.Errorf("model: unknown scalar kind %d", s.kind)
}

// UnmarshalJSON accepts null, booleans, numbers, and strings. Arrays and
// objects are kept as their compact JSON text.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*s = Null()
		return nil
	case trimmed == "true":
		*s = Bool(true)
		return nil
	case trimmed == "false":
		*s = Bool(false)
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return eris.Wrap(err, "model: unmarshal scalar string")
		}
		*s = String(str)
		return nil
	case strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{"):
		*s = String(trimmed)
		return nil
	default:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return eris.Wrapf(err, "model: unmarshal scalar %q", trimmed)
		}
		*s = Number(f)
		return nil
	}
}

// Equal reports whether two Scalars hold the same kind and value.
func (s Scalar) Equal(other Scalar) bool {
	if s.kind != other.kind {
		return false
	}
	switch s.kind {
	case KindString:
		return s.str == other.str
	case KindNumber:
		return s.num == other.num
	case KindBool:
		return s.b == other.b
	}
	return true
}
