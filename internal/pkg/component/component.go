// Package component defines the conversion and storage units an energy hub
// is assembled from. A component is a pure equation holder: a fixed port
// layout plus a characteristic matrix relating its port flows. The variant
// catalogue is closed so callers can validate exhaustively.
package component

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ohowland/ehub_core/internal/pkg/algebra"
)

var (
	// ErrUnknownVariant is returned when a Spec names a variant outside
	// the catalogue.
	ErrUnknownVariant = errors.New("component: unknown variant")
	// ErrMissingParam is returned when a required parameter is absent
	// from a Spec.
	ErrMissingParam = errors.New("component: missing parameter")
)

// Variant identifiers accepted by New. The set is fixed; there is no
// registration hook.
const (
	VariantBoiler            = "Boiler"
	VariantElectricBoiler    = "ElectricBoiler"
	VariantHeatPump          = "HeatPump"
	VariantAbsorptionChiller = "AbsorptionChiller"
	VariantTransformer       = "Transformer"
	VariantPowerToGas        = "PowerToGas"
	VariantCHPBackPressure   = "CHPBackPressure"
	VariantStorage           = "Storage"
	VariantConvertibleLoad   = "ConvertibleLoad"
)

// Variants lists every accepted variant identifier.
func Variants() []string {
	return []string{
		VariantBoiler,
		VariantElectricBoiler,
		VariantHeatPump,
		VariantAbsorptionChiller,
		VariantTransformer,
		VariantPowerToGas,
		VariantCHPBackPressure,
		VariantStorage,
		VariantConvertibleLoad,
	}
}

// Component is the fixed capability contract shared by all variants: a port
// layout and the characteristic matrix over those ports. Components are
// immutable after construction.
type Component interface {
	PID() uuid.UUID
	Name() string
	// InputPorts and OutputPorts map port name to local index. The two
	// name sets are disjoint and the indices form a contiguous 0-based
	// range over all ports.
	InputPorts() map[string]int
	OutputPorts() map[string]int
	// Parameter returns the named parameter expression, if declared.
	Parameter(name string) (algebra.Expr, bool)
	// Characteristic returns the K x P balance matrix H: K independent
	// linear equations over the component's P port flows, columns in
	// local port index order.
	Characteristic() algebra.Matrix
}

// Storer is the capability interface of storage variants. The topology
// compiler binds VirtualPort to an auto-generated branch even when no edge
// references it.
type Storer interface {
	Component
	VirtualPort() string
}

// Spec is the information-equivalent of one component entry in a persisted
// hub configuration (name, variant identifier, parameter mapping). Param
// values are resolved to expressions by the excluded config loader.
type Spec struct {
	Name      string                  `json:"Name"`
	Variant   string                  `json:"Variant"`
	Params    map[string]algebra.Expr `json:"-"`
	ElecPorts []string                `json:"ElecPorts,omitempty"`
}

func (s Spec) param(name string) (algebra.Expr, error) {
	v, ok := s.Params[name]
	if !ok {
		return algebra.Expr{}, fmt.Errorf("component: %s %q parameter %q: %w", s.Variant, s.Name, name, ErrMissingParam)
	}
	return v, nil
}

// New constructs a component from its Spec. Unknown variant identifiers and
// absent required parameters are configuration errors.
func New(s Spec) (Component, error) {
	switch s.Variant {
	case VariantBoiler:
		eta, err := s.param("eta")
		if err != nil {
			return nil, err
		}
		return NewBoiler(s.Name, eta), nil
	case VariantElectricBoiler:
		eta, err := s.param("eta")
		if err != nil {
			return nil, err
		}
		return NewElectricBoiler(s.Name, eta), nil
	case VariantHeatPump:
		cop, err := s.param("cop")
		if err != nil {
			return nil, err
		}
		return NewHeatPump(s.Name, cop), nil
	case VariantAbsorptionChiller:
		cop, err := s.param("cop")
		if err != nil {
			return nil, err
		}
		return NewAbsorptionChiller(s.Name, cop), nil
	case VariantTransformer:
		eta, err := s.param("eta")
		if err != nil {
			return nil, err
		}
		return NewTransformer(s.Name, eta), nil
	case VariantPowerToGas:
		eta, err := s.param("eta")
		if err != nil {
			return nil, err
		}
		return NewPowerToGas(s.Name, eta), nil
	case VariantCHPBackPressure:
		etaQ, err := s.param("eta_q")
		if err != nil {
			return nil, err
		}
		etaW, err := s.param("eta_w")
		if err != nil {
			return nil, err
		}
		return NewCHPBackPressure(s.Name, etaQ, etaW, s.ElecPorts...), nil
	case VariantStorage:
		etaC, err := s.param("eta_c")
		if err != nil {
			return nil, err
		}
		etaD, err := s.param("eta_d")
		if err != nil {
			return nil, err
		}
		return NewStorage(s.Name, etaC, etaD), nil
	case VariantConvertibleLoad:
		ratio, err := s.param("substitution_ratio")
		if err != nil {
			return nil, err
		}
		return NewConvertibleLoad(s.Name, ratio), nil
	}
	return nil, fmt.Errorf("component: variant %q: %w", s.Variant, ErrUnknownVariant)
}

// base carries the identity and port registries common to all variants.
type base struct {
	pid     uuid.UUID
	name    string
	variant string
	inputs  map[string]int
	outputs map[string]int
	params  map[string]algebra.Expr
}

func newBase(name, variant string) base {
	pid, _ := uuid.NewUUID()
	return base{
		pid:     pid,
		name:    name,
		variant: variant,
		inputs:  map[string]int{},
		outputs: map[string]int{},
		params:  map[string]algebra.Expr{},
	}
}

func (b base) PID() uuid.UUID { return b.pid }

func (b base) Name() string { return b.name }

// Variant returns the catalogue identifier of the component.
func (b base) Variant() string { return b.variant }

func (b base) InputPorts() map[string]int {
	return copyPorts(b.inputs)
}

func (b base) OutputPorts() map[string]int {
	return copyPorts(b.outputs)
}

func (b base) Parameter(name string) (algebra.Expr, bool) {
	v, ok := b.params[name]
	return v, ok
}

func (b *base) addInputPort(name string, index int) {
	b.inputs[name] = index
}

func (b *base) addOutputPort(name string, index int) {
	b.outputs[name] = index
}

func (b *base) setParameter(name string, v algebra.Expr) {
	b.params[name] = v
}

func copyPorts(ports map[string]int) map[string]int {
	out := make(map[string]int, len(ports))
	for name, idx := range ports {
		out[name] = idx
	}
	return out
}

// PortCount returns the total number of declared ports on c.
func PortCount(c Component) int {
	return len(c.InputPorts()) + len(c.OutputPorts())
}
