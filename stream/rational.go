// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"fmt"
	"time"
)

// Rational is an exact fraction, used for frame rates such as 30000/1001.
//
// Arithmetic produces unreduced values; call Simplify when a canonical form
// is needed.
type Rational struct {
	Num int64
	Den int64
}

// NewRational returns num/den. A zero denominator is rejected.
func NewRational(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, fmt.Errorf("%w: rational with zero denominator", ErrArgument)
	}
	return Rational{Num: num, Den: den}, nil
}

// Float64 returns the value of the fraction.
func (r Rational) Float64() float64 {
	return float64(r.Num) / float64(r.Den)
}

// Valid reports whether the denominator is non-zero.
func (r Rational) Valid() bool { return r.Den != 0 }

// Simplify divides numerator and denominator by their greatest common
// divisor. The sign is carried by the numerator.
func (r Rational) Simplify() Rational {
	num, den := r.Num, r.Den
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs64(num), den)
	if g == 0 {
		return Rational{Num: num, Den: den}
	}
	return Rational{Num: num / g, Den: den / g}
}

// Add returns r + o.
func (r Rational) Add(o Rational) Rational {
	return Rational{Num: r.Num*o.Den + o.Num*r.Den, Den: r.Den * o.Den}
}

// Sub returns r - o.
func (r Rational) Sub(o Rational) Rational {
	return Rational{Num: r.Num*o.Den - o.Num*r.Den, Den: r.Den * o.Den}
}

// Mul returns r * o.
func (r Rational) Mul(o Rational) Rational {
	return Rational{Num: r.Num * o.Num, Den: r.Den * o.Den}
}

// Div returns r / o. It panics if o is zero, like big.Rat.Quo.
func (r Rational) Div(o Rational) Rational {
	if o.Num == 0 {
		panic("stream: division by zero rational")
	}
	return Rational{Num: r.Num * o.Den, Den: r.Den * o.Num}
}

// Equal reports whether both fractions denote the same value.
func (r Rational) Equal(o Rational) bool {
	return r.Num*o.Den == o.Num*r.Den
}

// FrameTime returns the presentation time of frame index i when r is a frame
// rate in frames per second.
func (r Rational) FrameTime(i int64) time.Duration {
	if r.Num == 0 {
		return 0
	}
	t := i * r.Den
	sec, rem := t/r.Num, t%r.Num
	return time.Duration(sec)*time.Second + time.Duration(rem*int64(time.Second)/r.Num)
}

// String formats the fraction as "num/den".
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
