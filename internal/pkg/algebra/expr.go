// Package algebra implements the exact scalar and matrix arithmetic the hub
// compiler is built on. Scalars are rational functions of named symbols with
// big.Rat coefficients, so stacking, multiplication and inversion of system
// matrices stay closed-form until a caller substitutes numeric values.
package algebra

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
)

var (
	// ErrUnresolved is returned when a numeric evaluation still contains
	// free symbols.
	ErrUnresolved = errors.New("algebra: expression contains unresolved symbols")
	// ErrDivideByZero is returned when a denominator evaluates to zero.
	ErrDivideByZero = errors.New("algebra: division by zero")
)

// Expr is an immutable scalar: a ratio of two multivariate polynomials.
// The zero value is the number 0.
type Expr struct {
	num poly
	den poly
}

// normalize folds a constant denominator into the numerator and pins the
// canonical 0/1 form for a zero numerator.
func normalize(num, den poly) Expr {
	if num.isZero() {
		return Expr{num: polyZero(), den: polyConst(big.NewRat(1, 1))}
	}
	if c, ok := den.constValue(); ok {
		if c.Sign() == 0 {
			panic("algebra: zero denominator")
		}
		inv := new(big.Rat).Inv(c)
		return Expr{num: num.scale(inv), den: polyConst(big.NewRat(1, 1))}
	}
	return Expr{num: num, den: den}
}

func (e Expr) parts() (poly, poly) {
	if e.den.terms == nil {
		// zero value: 0/1
		return polyZero(), polyConst(big.NewRat(1, 1))
	}
	return e.num, e.den
}

// Zero returns the scalar 0.
func Zero() Expr { return Expr{} }

// One returns the scalar 1.
func One() Expr { return Rational(1, 1) }

// Number returns the exact rational scalar nearest representation of v.
func Number(v float64) Expr {
	r := new(big.Rat).SetFloat64(v)
	if r == nil {
		panic(fmt.Sprintf("algebra: %v is not a finite number", v))
	}
	return normalize(polyConst(r), polyConst(big.NewRat(1, 1)))
}

// Rational returns the exact scalar a/b.
func Rational(a, b int64) Expr {
	if b == 0 {
		panic("algebra: zero denominator")
	}
	return normalize(polyConst(big.NewRat(a, b)), polyConst(big.NewRat(1, 1)))
}

// Symbol returns the free symbol with the given name.
func Symbol(name string) Expr {
	if name == "" {
		panic("algebra: empty symbol name")
	}
	return normalize(polySymbol(name), polyConst(big.NewRat(1, 1)))
}

// IsZero reports whether e is structurally zero. Polynomial arithmetic is
// canonical, so this is exact for any expression built from the package ops.
func (e Expr) IsZero() bool {
	num, _ := e.parts()
	return num.isZero()
}

// Add returns e + o.
func (e Expr) Add(o Expr) Expr {
	en, ed := e.parts()
	on, od := o.parts()
	return normalize(en.mul(od).add(on.mul(ed)), ed.mul(od))
}

// Sub returns e - o.
func (e Expr) Sub(o Expr) Expr {
	return e.Add(o.Neg())
}

// Neg returns -e.
func (e Expr) Neg() Expr {
	num, den := e.parts()
	return normalize(num.neg(), den)
}

// Mul returns e * o.
func (e Expr) Mul(o Expr) Expr {
	en, ed := e.parts()
	on, od := o.parts()
	return normalize(en.mul(on), ed.mul(od))
}

// Inv returns 1/e. e must not be structurally zero; callers guard with
// IsZero before dividing.
func (e Expr) Inv() Expr {
	num, den := e.parts()
	if num.isZero() {
		panic("algebra: inverse of zero")
	}
	return normalize(den, num)
}

// Div returns e / o. o must not be structurally zero.
func (e Expr) Div(o Expr) Expr {
	return e.Mul(o.Inv())
}

// Equal reports whether e and o are identical as rational functions.
func (e Expr) Equal(o Expr) bool {
	return e.Sub(o).IsZero()
}

// FreeSymbols returns the sorted set of symbols appearing in e.
func (e Expr) FreeSymbols() []string {
	num, den := e.parts()
	set := map[string]struct{}{}
	num.freeSymbols(set)
	den.freeSymbols(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Substitute replaces the given symbols with exact rational images of the
// supplied values. Symbols not named are left free. Fails if a denominator
// collapses to zero at the substituted point.
func (e Expr) Substitute(vals map[string]float64) (Expr, error) {
	if len(vals) == 0 {
		return e, nil
	}
	rats := make(map[string]*big.Rat, len(vals))
	for name, v := range vals {
		r := new(big.Rat).SetFloat64(v)
		if r == nil {
			panic(fmt.Sprintf("algebra: %v is not a finite number", v))
		}
		rats[name] = r
	}
	num, den := e.parts()
	den = den.substitute(rats)
	if c, ok := den.constValue(); ok && c.Sign() == 0 {
		return Expr{}, ErrDivideByZero
	}
	return normalize(num.substitute(rats), den), nil
}

// Eval computes the numeric value of e at the given symbol values. Every
// free symbol must be supplied.
func (e Expr) Eval(vals map[string]float64) (float64, error) {
	num, den := e.parts()
	n, err := num.eval(vals)
	if err != nil {
		return 0, err
	}
	d, err := den.eval(vals)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, ErrDivideByZero
	}
	return n / d, nil
}

func (e Expr) String() string {
	num, den := e.parts()
	if c, ok := den.constValue(); ok && c.Cmp(big.NewRat(1, 1)) == 0 {
		return num.String()
	}
	return fmt.Sprintf("(%s)/(%s)", num.String(), den.String())
}
