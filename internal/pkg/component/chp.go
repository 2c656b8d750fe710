package component

import (
	"github.com/ohowland/ehub_core/internal/pkg/algebra"
)

// CHPBackPressure is a combined heat and power unit operating in
// back-pressure mode: one fuel input, one heat output and one or more named
// electrical outputs. The efficiency coefficients apply to the total fuel
// flow however many electrical ports share the output.
type CHPBackPressure struct {
	base
	elecPorts []string
}

// NewCHPBackPressure constructs a back-pressure CHP unit. elecPorts names
// the electrical output ports; when empty a single "elec_out" port is used.
func NewCHPBackPressure(name string, etaQ, etaW algebra.Expr, elecPorts ...string) *CHPBackPressure {
	if len(elecPorts) == 0 {
		elecPorts = []string{"elec_out"}
	}
	ports := make([]string, len(elecPorts))
	copy(ports, elecPorts)

	c := &CHPBackPressure{base: newBase(name, VariantCHPBackPressure), elecPorts: ports}
	c.setParameter("eta_q", etaQ)
	c.setParameter("eta_w", etaW)
	c.addInputPort("fuel_in", 0)
	c.addOutputPort("heat_out", 1)
	for i, port := range ports {
		c.addOutputPort(port, 2+i)
	}
	return c
}

// ElecPorts returns the electrical output port names in local index order.
func (c *CHPBackPressure) ElecPorts() []string {
	out := make([]string, len(c.elecPorts))
	copy(out, c.elecPorts)
	return out
}

// Characteristic returns the 2 x (2+N) balance matrix:
//
//	heat balance: eta_q*V_fuel - V_heat = 0
//	electrical balance: eta_w*V_fuel - sum(V_elec_i) = 0
func (c *CHPBackPressure) Characteristic() algebra.Matrix {
	etaQ, _ := c.Parameter("eta_q")
	etaW, _ := c.Parameter("eta_w")

	n := len(c.elecPorts)
	h := algebra.Zeros(2, 2+n)
	h.Set(0, 0, etaQ)
	h.Set(0, 1, algebra.Rational(-1, 1))
	h.Set(1, 0, etaW)
	for i := 0; i < n; i++ {
		h.Set(1, 2+i, algebra.Rational(-1, 1))
	}
	return h
}
