package termwise

import (
	"fmt"
	"math/big"
	"strings"
)

// ============================================================
// Rational — exact fraction value
// ============================================================

// Rational is an immutable exact fraction. The zero value is 0.
// Every operation returns a fresh value; the underlying big.Rat is never
// shared with the caller.
type Rational struct{ val *big.Rat }

func R(n int64) Rational { return Rational{val: new(big.Rat).SetInt64(n)} }

// Frac returns p/q. It panics when q is zero.
func Frac(p, q int64) Rational {
	if q == 0 {
		panic("termwise: denominator is zero")
	}
	return Rational{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// ParseRational accepts "3", "-2/5" and "0.75".
func ParseRational(s string) (Rational, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return Rational{}, fmt.Errorf("invalid rational %q", s)
	}
	return Rational{val: r}, nil
}

func (r Rational) rat() *big.Rat {
	if r.val == nil {
		return new(big.Rat)
	}
	return r.val
}

func (r Rational) Add(o Rational) Rational { return Rational{val: new(big.Rat).Add(r.rat(), o.rat())} }
func (r Rational) Sub(o Rational) Rational { return Rational{val: new(big.Rat).Sub(r.rat(), o.rat())} }
func (r Rational) Mul(o Rational) Rational { return Rational{val: new(big.Rat).Mul(r.rat(), o.rat())} }
func (r Rational) Neg() Rational           { return Rational{val: new(big.Rat).Neg(r.rat())} }

// Div returns r/o. Dividing by zero panics; callers check IsZero first.
func (r Rational) Div(o Rational) Rational {
	if o.IsZero() {
		panic("termwise: division by zero")
	}
	return Rational{val: new(big.Rat).Quo(r.rat(), o.rat())}
}

// Inv returns 1/r and panics when r is zero.
func (r Rational) Inv() Rational { return R(1).Div(r) }

func (r Rational) Abs() Rational {
	if r.Sign() < 0 {
		return r.Neg()
	}
	return r
}

func (r Rational) Sign() int             { return r.rat().Sign() }
func (r Rational) IsZero() bool          { return r.Sign() == 0 }
func (r Rational) IsOne() bool           { return r.rat().Cmp(big.NewRat(1, 1)) == 0 }
func (r Rational) IsMinusOne() bool      { return r.rat().Cmp(big.NewRat(-1, 1)) == 0 }
func (r Rational) IsNegative() bool      { return r.Sign() < 0 }
func (r Rational) IsInteger() bool       { return r.rat().IsInt() }
func (r Rational) Cmp(o Rational) int    { return r.rat().Cmp(o.rat()) }
func (r Rational) Equal(o Rational) bool { return r.Cmp(o) == 0 }
func (r Rational) Num() *big.Int         { return new(big.Int).Set(r.rat().Num()) }
func (r Rational) Denom() *big.Int       { return new(big.Int).Set(r.rat().Denom()) }

func (r Rational) String() string {
	if r.IsInteger() {
		return r.rat().Num().String()
	}
	return r.rat().RatString()
}

func (r Rational) LaTeX() string {
	if r.IsInteger() {
		return r.rat().Num().String()
	}
	sign := ""
	if r.Sign() < 0 {
		sign = "-"
	}
	a := r.Abs()
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, a.Num(), a.Denom())
}

func (r Rational) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rational) UnmarshalText(b []byte) error {
	v, err := ParseRational(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
