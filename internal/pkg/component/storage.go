package component

import (
	"github.com/ohowland/ehub_core/internal/pkg/algebra"
)

// VirtualSOCPort is the storage state-delta port name. It has no physical
// edge; the topology compiler binds it to an auto-generated branch.
const VirtualSOCPort = "delta_soc"

// Storage is a generic energy store (battery, thermal tank): a charge port,
// a discharge port, and a virtual port carrying the per-period change in
// stored energy. H = [[eta_c, -1/eta_d, -1]] encodes
// eta_c*V_in - V_out/eta_d - dE = 0.
type Storage struct {
	base
}

// NewStorage constructs a storage unit with charge efficiency etaC and
// discharge efficiency etaD. etaD must not be the zero expression.
func NewStorage(name string, etaC, etaD algebra.Expr) *Storage {
	s := &Storage{base: newBase(name, VariantStorage)}
	s.setParameter("eta_c", etaC)
	s.setParameter("eta_d", etaD)
	s.addInputPort("energy_in", 0)
	s.addOutputPort("energy_out", 1)
	// The state delta is carried as an input port so the incidence
	// expansion gives it a +1, matching the -1 column in H.
	s.addInputPort(VirtualSOCPort, 2)
	return s
}

// VirtualPort names the latent state-delta port.
func (s *Storage) VirtualPort() string { return VirtualSOCPort }

// Characteristic returns the 1x3 balance matrix [[eta_c, -1/eta_d, -1]].
func (s *Storage) Characteristic() algebra.Matrix {
	etaC, _ := s.Parameter("eta_c")
	etaD, _ := s.Parameter("eta_d")
	return algebra.FromRows([][]algebra.Expr{
		{etaC, etaD.Inv().Neg(), algebra.Rational(-1, 1)},
	})
}
