package component

import (
	"github.com/ohowland/ehub_core/internal/pkg/algebra"
)

// ConvertibleLoad is a flexible demand that can be met by either of two
// carriers with a substitution ratio between them:
// V_demand = V_elec + ratio*V_heat, so H = [[-1, -ratio, 1]].
type ConvertibleLoad struct {
	base
}

// NewConvertibleLoad constructs a convertible load with the given
// heat-for-electricity substitution ratio.
func NewConvertibleLoad(name string, ratio algebra.Expr) *ConvertibleLoad {
	l := &ConvertibleLoad{base: newBase(name, VariantConvertibleLoad)}
	l.setParameter("substitution_ratio", ratio)
	l.addInputPort("elec_supply", 0)
	l.addInputPort("heat_supply", 1)
	l.addOutputPort("satisfied_demand", 2)
	return l
}

// Characteristic returns the 1x3 balance matrix [[-1, -ratio, 1]].
func (l *ConvertibleLoad) Characteristic() algebra.Matrix {
	ratio, _ := l.Parameter("substitution_ratio")
	return algebra.FromRows([][]algebra.Expr{
		{algebra.Rational(-1, 1), ratio.Neg(), algebra.Rational(1, 1)},
	})
}
