package domain

import "encoding/json"

// ScalarKind discriminates the shapes a raw preset field may arrive in.
type ScalarKind int

const (
	ScalarEmpty ScalarKind = iota
	ScalarNumber
	ScalarText
	ScalarRange
)

// Scalar is a raw preset value before normalization: a number, a suffixed
// string like "50ms" or "2.5kHz", or a [min,max] range. The normalizer is
// the only consumer that interprets it.
type Scalar struct {
	Kind ScalarKind
	Num  float64
	Text string
	Lo   float64
	Hi   float64
}

// Number wraps a plain numeric value.
func Number(v float64) Scalar { return Scalar{Kind: ScalarNumber, Num: v} }

// Text wraps a string-typed value.
func Text(s string) Scalar { return Scalar{Kind: ScalarText, Text: s} }

// Range wraps a [lo,hi] pair.
func Range(lo, hi float64) Scalar { return Scalar{Kind: ScalarRange, Lo: lo, Hi: hi} }

// IsZero reports whether the scalar carries no value at all.
func (s Scalar) IsZero() bool { return s.Kind == ScalarEmpty }

// UnmarshalJSON accepts a JSON number, string, or two-element array.
// Anything else leaves the scalar empty; the normalizer reports it.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*s = Number(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Text(str)
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil && len(pair) == 2 {
		*s = Range(pair[0], pair[1])
		return nil
	}
	*s = Scalar{}
	return nil
}
