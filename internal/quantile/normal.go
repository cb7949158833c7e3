// Package quantile approximates the inverse of the standard-normal CDF.
//
// The approximation is a piecewise rational function with an absolute error
// of about 1.15e-9 over (0, 1). It is split into a central regime and two
// mirrored tails.
package quantile

import (
	"math"

	"github.com/andresuchdata/safetystock/internal/domain"
)

// Central-regime coefficients, numerator (a) and denominator (b, implicit leading 1).
const (
	a1 = -3.969683028665376e+01
	a2 = 2.209460984245205e+02
	a3 = -2.759285104469687e+02
	a4 = 1.383577518672690e+02
	a5 = -3.066479806614716e+01
	a6 = 2.506628277459239e+00

	b1 = -5.447609879822406e+01
	b2 = 1.615858368580409e+02
	b3 = -1.556989798598866e+02
	b4 = 6.680131188771972e+01
	b5 = -1.328068155288572e+01
)

// Tail coefficients, numerator (c) and denominator (d, implicit leading 1).
const (
	c1 = -7.784894002430293e-03
	c2 = -3.223964580411365e-01
	c3 = -2.400758277161838e+00
	c4 = -2.549732539343734e+00
	c5 = 4.374664141464968e+00
	c6 = 2.938163982698783e+00

	d1 = 7.784695709041462e-03
	d2 = 3.224671290700398e-01
	d3 = 2.445134137142996e+00
	d4 = 3.754408661907416e+00
)

// Regime boundaries.
const (
	PLow  = 0.02425
	PHigh = 1 - PLow
)

// Regime identifies which branch of the approximation serves a probability.
type Regime int

const (
	LowerTail Regime = iota
	Central
	UpperTail
)

func (r Regime) String() string {
	switch r {
	case LowerTail:
		return "lower_tail"
	case Central:
		return "central"
	case UpperTail:
		return "upper_tail"
	default:
		return "unknown"
	}
}

// RegimeOf returns the branch used for p. It does not check the domain.
func RegimeOf(p float64) Regime {
	switch {
	case p < PLow:
		return LowerTail
	case p > PHigh:
		return UpperTail
	default:
		return Central
	}
}

// Normal returns the standard-normal quantile (z-score) of p.
// p must lie strictly inside (0, 1).
func Normal(p float64) (float64, error) {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return 0, &domain.DomainError{Field: "p", Value: p, Reason: "probability must lie strictly between 0 and 1"}
	}

	switch RegimeOf(p) {
	case LowerTail:
		return tail(math.Sqrt(-2 * math.Log(p))), nil
	case UpperTail:
		return -tail(math.Sqrt(-2 * math.Log(1-p))), nil
	default:
		return central(p - 0.5), nil
	}
}

// MustNormal is Normal for arguments known to be valid. It panics otherwise.
func MustNormal(p float64) float64 {
	z, err := Normal(p)
	if err != nil {
		panic(err)
	}
	return z
}

func central(q float64) float64 {
	r := q * q
	num := (((((a1*r+a2)*r+a3)*r+a4)*r+a5)*r + a6) * q
	den := ((((b1*r+b2)*r+b3)*r+b4)*r+b5)*r + 1
	return num / den
}

func tail(q float64) float64 {
	num := ((((c1*q+c2)*q+c3)*q+c4)*q+c5)*q + c6
	den := (((d1*q+d2)*q+d3)*q+d4)*q + 1
	return num / den
}
