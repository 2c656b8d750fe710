// Package dispatch exposes the read-only view of a compiled hub that the
// external economic-dispatch optimizer consumes: the ordered branch
// registry, the hub boundary sets, the numeric balance matrix and the
// storage units with their bound state-delta branches. The optimizer owns
// the time dimension and the solver; nothing here writes back.
package dispatch

import (
	"github.com/ohowland/ehub_core/internal/pkg/component"
	"github.com/ohowland/ehub_core/internal/pkg/hub"
	"github.com/ohowland/ehub_core/internal/pkg/topology"
	"gonum.org/v1/gonum/mat"
)

// Model is the optimizer-facing snapshot of one hub. All accessors return
// copies.
type Model struct {
	branches   []string
	hubInputs  []string
	hubOutputs []string
	balance    *mat.Dense
	storage    map[string]string
}

// NewModel resolves the hub's balance matrix at the given parameter values
// and collects the branch registry the optimizer keys its variables by.
// params must cover every free symbol in Z.
func NewModel(c *topology.Compiled, s hub.System, params map[string]float64) (*Model, error) {
	resolved, err := s.Z.Substitute(params)
	if err != nil {
		return nil, err
	}
	balance, err := resolved.Eval(nil)
	if err != nil {
		return nil, err
	}

	names := c.BranchNames()
	pick := func(indices []int) []string {
		out := make([]string, len(indices))
		for i, idx := range indices {
			out[i] = names[idx]
		}
		return out
	}

	storage := map[string]string{}
	for _, comp := range c.Components() {
		st, ok := comp.(component.Storer)
		if !ok {
			continue
		}
		if idx, bound := c.Binding(comp.Name(), st.VirtualPort()); bound {
			storage[comp.Name()] = names[idx]
		}
	}

	return &Model{
		branches:   names,
		hubInputs:  pick(c.HubInputs()),
		hubOutputs: pick(c.HubOutputs()),
		balance:    balance,
		storage:    storage,
	}, nil
}

// Branches returns every branch name in index order; optimizer flow
// variables are keyed by these names.
func (m *Model) Branches() []string {
	out := make([]string, len(m.branches))
	copy(out, m.branches)
	return out
}

// HubInputs returns the hub-input branch names in index order.
func (m *Model) HubInputs() []string {
	out := make([]string, len(m.hubInputs))
	copy(out, m.hubInputs)
	return out
}

// HubOutputs returns the hub-output branch names in index order.
func (m *Model) HubOutputs() []string {
	out := make([]string, len(m.hubOutputs))
	copy(out, m.hubOutputs)
	return out
}

// Balance returns the numeric balance matrix Z; rows are constraints
// Z*V = 0 over the branch ordering of Branches.
func (m *Model) Balance() *mat.Dense {
	return mat.DenseCopyOf(m.balance)
}

// StorageBranches maps each storage component name to its bound
// state-delta branch name, for the optimizer's state-of-charge dynamics.
func (m *Model) StorageBranches() map[string]string {
	out := make(map[string]string, len(m.storage))
	for name, branch := range m.storage {
		out[name] = branch
	}
	return out
}
