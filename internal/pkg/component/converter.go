package component

import (
	"github.com/ohowland/ehub_core/internal/pkg/algebra"
)

// Converter is a two-port conversion unit: one input carrier, one output
// carrier, related by a single gain (an efficiency or a coefficient of
// performance). H = [[gain, -1]] encodes gain*V_in - V_out = 0.
type Converter struct {
	base
	gainParam string
}

func newConverter(name, variant, inPort, outPort, gainParam string, gain algebra.Expr) *Converter {
	c := &Converter{base: newBase(name, variant), gainParam: gainParam}
	c.addInputPort(inPort, 0)
	c.addOutputPort(outPort, 1)
	c.setParameter(gainParam, gain)
	return c
}

// Characteristic returns the 1x2 balance matrix [[gain, -1]].
func (c *Converter) Characteristic() algebra.Matrix {
	gain, _ := c.Parameter(c.gainParam)
	return algebra.FromRows([][]algebra.Expr{
		{gain, algebra.Rational(-1, 1)},
	})
}

// NewBoiler returns a fuel-to-heat converter with efficiency eta.
func NewBoiler(name string, eta algebra.Expr) *Converter {
	return newConverter(name, VariantBoiler, "fuel_in", "heat_out", "eta", eta)
}

// NewElectricBoiler returns an electricity-to-heat converter with
// efficiency eta.
func NewElectricBoiler(name string, eta algebra.Expr) *Converter {
	return newConverter(name, VariantElectricBoiler, "elec_in", "heat_out", "eta", eta)
}

// NewHeatPump returns an electricity-to-heat converter with coefficient of
// performance cop.
func NewHeatPump(name string, cop algebra.Expr) *Converter {
	return newConverter(name, VariantHeatPump, "elec_in", "heat_out", "cop", cop)
}

// NewAbsorptionChiller returns a heat-to-cooling converter with coefficient
// of performance cop.
func NewAbsorptionChiller(name string, cop algebra.Expr) *Converter {
	return newConverter(name, VariantAbsorptionChiller, "heat_in", "cool_out", "cop", cop)
}

// NewTransformer returns an electricity-to-electricity converter modeling a
// voltage-level change as an efficiency loss.
func NewTransformer(name string, eta algebra.Expr) *Converter {
	return newConverter(name, VariantTransformer, "elec_in", "elec_out", "eta", eta)
}

// NewPowerToGas returns an electricity-to-gas converter with efficiency eta.
func NewPowerToGas(name string, eta algebra.Expr) *Converter {
	return newConverter(name, VariantPowerToGas, "elec_in", "gas_out", "eta", eta)
}
