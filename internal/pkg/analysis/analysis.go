// Package analysis derives the closed-form coupling matrix of an assembled
// hub: the linear map C with V_out = C * V_in, obtained by eliminating the
// internal branch flows through the full balance system. The derivation is
// exact, so free parameters survive into C and numeric specialization is a
// separate, repeatable step.
package analysis

import (
	"errors"
	"fmt"
	"log"

	"github.com/ohowland/ehub_core/internal/pkg/algebra"
	"github.com/ohowland/ehub_core/internal/pkg/hub"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimension is returned when the stacked system is not square:
	// the topology does not pin every branch with exactly one equation.
	ErrDimension = errors.New("analysis: system is not square")
	// ErrSingular is returned when the stacked system has no inverse:
	// the topology does not uniquely determine internal flows.
	ErrSingular = errors.New("analysis: system is singular")
	// ErrUnresolved is returned when specialization leaves free symbols.
	ErrUnresolved = errors.New("analysis: free parameters remain after specialization")
)

// DeriveCoupling computes C = -Y * Q^-1 * R with Q = [X; Z] and
// R = [-I; 0]. Q must be square (hub inputs + balance rows = branches) and
// invertible; the inversion is exact so parameter dependence is preserved.
func DeriveCoupling(s hub.System) (algebra.Matrix, error) {
	m, b := s.X.Dims()
	k, zb := s.Z.Dims()
	if zb != b {
		return algebra.Matrix{}, fmt.Errorf("analysis: X has %d columns, Z has %d: %w", b, zb, ErrDimension)
	}
	if m+k != b {
		return algebra.Matrix{}, fmt.Errorf("analysis: %d input rows + %d balance rows != %d branches: %w", m, k, b, ErrDimension)
	}

	q := s.X.VStack(s.Z)
	r := algebra.Identity(m).Neg().VStack(algebra.Zeros(k, m))

	qInv, err := q.Inverse()
	if err != nil {
		if errors.Is(err, algebra.ErrSingular) {
			return algebra.Matrix{}, fmt.Errorf("analysis: %v: %w", err, ErrSingular)
		}
		return algebra.Matrix{}, err
	}

	return s.Y.Neg().Mul(qInv).Mul(r), nil
}

// Specialize substitutes concrete values for the named parameters of a
// derived coupling matrix and returns the numeric result. A supplied
// parameter that is not free in the matrix draws a warning, not an error;
// a free parameter left unsupplied is fatal. Specializing the same matrix
// at the same values twice yields identical output.
func Specialize(c algebra.Matrix, params map[string]float64) (*mat.Dense, error) {
	free := map[string]struct{}{}
	for _, name := range c.FreeSymbols() {
		free[name] = struct{}{}
	}
	for name := range params {
		if _, ok := free[name]; !ok {
			log.Printf("analysis: parameter %q is not free in the coupling matrix", name)
		}
	}

	sub, err := c.Substitute(params)
	if err != nil {
		return nil, err
	}
	if remaining := sub.FreeSymbols(); len(remaining) > 0 {
		return nil, fmt.Errorf("analysis: %v: %w", remaining, ErrUnresolved)
	}
	return sub.Eval(nil)
}
