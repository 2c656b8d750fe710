package algebra

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// term is a single monomial with an exact rational coefficient. exps maps
// symbol name to a positive integer exponent.
type term struct {
	coef *big.Rat
	exps map[string]int
}

// poly is a multivariate polynomial in canonical form: terms are keyed by
// monomial signature and a zero coefficient is never stored, so a poly is
// zero exactly when it has no terms.
type poly struct {
	terms map[string]term
}

func monoKey(exps map[string]int) string {
	if len(exps) == 0 {
		return ""
	}
	names := make([]string, 0, len(exps))
	for name := range exps {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s^%d", name, exps[name]))
	}
	return strings.Join(parts, "*")
}

func copyExps(exps map[string]int) map[string]int {
	out := make(map[string]int, len(exps))
	for name, e := range exps {
		out[name] = e
	}
	return out
}

func polyZero() poly {
	return poly{terms: map[string]term{}}
}

func polyConst(r *big.Rat) poly {
	p := polyZero()
	if r.Sign() != 0 {
		p.terms[""] = term{coef: new(big.Rat).Set(r), exps: map[string]int{}}
	}
	return p
}

func polySymbol(name string) poly {
	p := polyZero()
	exps := map[string]int{name: 1}
	p.terms[monoKey(exps)] = term{coef: big.NewRat(1, 1), exps: exps}
	return p
}

func (p poly) isZero() bool {
	return len(p.terms) == 0
}

// constValue reports whether p is constant, and its value if so. The zero
// polynomial is the constant 0.
func (p poly) constValue() (*big.Rat, bool) {
	switch len(p.terms) {
	case 0:
		return big.NewRat(0, 1), true
	case 1:
		if t, ok := p.terms[""]; ok {
			return new(big.Rat).Set(t.coef), true
		}
	}
	return nil, false
}

func (p poly) add(q poly) poly {
	out := polyZero()
	for key, t := range p.terms {
		out.terms[key] = term{coef: new(big.Rat).Set(t.coef), exps: copyExps(t.exps)}
	}
	for key, t := range q.terms {
		if have, ok := out.terms[key]; ok {
			sum := new(big.Rat).Add(have.coef, t.coef)
			if sum.Sign() == 0 {
				delete(out.terms, key)
			} else {
				out.terms[key] = term{coef: sum, exps: have.exps}
			}
		} else {
			out.terms[key] = term{coef: new(big.Rat).Set(t.coef), exps: copyExps(t.exps)}
		}
	}
	return out
}

func (p poly) neg() poly {
	out := polyZero()
	for key, t := range p.terms {
		out.terms[key] = term{coef: new(big.Rat).Neg(t.coef), exps: copyExps(t.exps)}
	}
	return out
}

func (p poly) mul(q poly) poly {
	out := polyZero()
	for _, pt := range p.terms {
		for _, qt := range q.terms {
			exps := copyExps(pt.exps)
			for name, e := range qt.exps {
				exps[name] += e
			}
			key := monoKey(exps)
			coef := new(big.Rat).Mul(pt.coef, qt.coef)
			if have, ok := out.terms[key]; ok {
				coef.Add(coef, have.coef)
			}
			if coef.Sign() == 0 {
				delete(out.terms, key)
			} else {
				out.terms[key] = term{coef: coef, exps: exps}
			}
		}
	}
	return out
}

// scale multiplies every coefficient by r. r must be nonzero.
func (p poly) scale(r *big.Rat) poly {
	out := polyZero()
	for key, t := range p.terms {
		out.terms[key] = term{coef: new(big.Rat).Mul(t.coef, r), exps: copyExps(t.exps)}
	}
	return out
}

// substitute replaces the named symbols with exact rational values, leaving
// all other symbols in place.
func (p poly) substitute(vals map[string]*big.Rat) poly {
	out := polyZero()
	for _, t := range p.terms {
		coef := new(big.Rat).Set(t.coef)
		exps := map[string]int{}
		for name, e := range t.exps {
			if v, ok := vals[name]; ok {
				pow := new(big.Rat).SetInt64(1)
				for i := 0; i < e; i++ {
					pow.Mul(pow, v)
				}
				coef.Mul(coef, pow)
			} else {
				exps[name] = e
			}
		}
		if coef.Sign() == 0 {
			continue
		}
		key := monoKey(exps)
		if have, ok := out.terms[key]; ok {
			sum := new(big.Rat).Add(have.coef, coef)
			if sum.Sign() == 0 {
				delete(out.terms, key)
			} else {
				out.terms[key] = term{coef: sum, exps: have.exps}
			}
		} else {
			out.terms[key] = term{coef: coef, exps: exps}
		}
	}
	return out
}

// eval sums terms in sorted monomial order so repeated evaluation at the
// same point is bit-identical.
func (p poly) eval(vals map[string]float64) (float64, error) {
	keys := make([]string, 0, len(p.terms))
	for key := range p.terms {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	total := 0.0
	for _, key := range keys {
		t := p.terms[key]
		v, _ := t.coef.Float64()
		names := make([]string, 0, len(t.exps))
		for name := range t.exps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			val, ok := vals[name]
			if !ok {
				return 0, fmt.Errorf("algebra: symbol %q: %w", name, ErrUnresolved)
			}
			v *= math.Pow(val, float64(t.exps[name]))
		}
		total += v
	}
	return total, nil
}

func (p poly) freeSymbols(set map[string]struct{}) {
	for _, t := range p.terms {
		for name := range t.exps {
			set[name] = struct{}{}
		}
	}
}

// String renders terms in sorted monomial order so output is deterministic.
func (p poly) String() string {
	if p.isZero() {
		return "0"
	}
	keys := make([]string, 0, len(p.terms))
	for key := range p.terms {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		t := p.terms[key]
		switch {
		case key == "":
			parts = append(parts, t.coef.RatString())
		case t.coef.Cmp(big.NewRat(1, 1)) == 0:
			parts = append(parts, key)
		case t.coef.Cmp(big.NewRat(-1, 1)) == 0:
			parts = append(parts, "-"+key)
		default:
			parts = append(parts, t.coef.RatString()+"*"+key)
		}
	}
	return strings.Join(parts, " + ")
}
