package dispatch

import (
	"testing"

	"github.com/ohowland/ehub_core/internal/pkg/algebra"
	"github.com/ohowland/ehub_core/internal/pkg/component"
	"github.com/ohowland/ehub_core/internal/pkg/hub"
	"github.com/ohowland/ehub_core/internal/pkg/topology"
	"gonum.org/v1/gonum/mat"
	"gotest.tools/v3/assert"
)

func storageHub(t *testing.T, etaC, etaD algebra.Expr) (*topology.Compiled, hub.System) {
	t.Helper()
	g := topology.NewGraph()
	assert.NilError(t, g.AddComponent(component.NewStorage("Battery", etaC, etaD)))
	assert.NilError(t, g.AddBoundary("ElecIn", topology.RoleInput))
	assert.NilError(t, g.AddBoundary("ElecOut", topology.RoleOutput))
	assert.NilError(t, g.Connect("ElecIn", "out", "Battery", "energy_in"))
	assert.NilError(t, g.Connect("Battery", "energy_out", "ElecOut", "in"))

	c, err := g.Compile()
	assert.NilError(t, err)
	s, err := hub.Assemble(c)
	assert.NilError(t, err)
	return c, s
}

func TestModelExport(t *testing.T) {
	c, s := storageHub(t, algebra.Number(0.9), algebra.Number(0.8))

	m, err := NewModel(c, s, nil)
	assert.NilError(t, err)

	assert.DeepEqual(t, m.Branches(), []string{
		"Battery_delta_soc_branch",
		"Battery_energy_out_to_ElecOut_in",
		"ElecIn_out_to_Battery_energy_in",
	})
	assert.DeepEqual(t, m.HubInputs(), []string{"ElecIn_out_to_Battery_energy_in"})
	assert.DeepEqual(t, m.HubOutputs(), []string{"Battery_energy_out_to_ElecOut_in"})

	// balance row: eta_c*V_in - V_out/eta_d - dE = 0 over global branches,
	// with the output port sign flipped by the incidence expansion
	expected := mat.NewDense(1, 3, []float64{-1, 1.25, 0.9})
	assert.Assert(t, mat.EqualApprox(m.Balance(), expected, 1e-12))
}

func TestModelResolvesSymbolicParameters(t *testing.T) {
	c, s := storageHub(t, algebra.Symbol("eta_c"), algebra.Symbol("eta_d"))

	m, err := NewModel(c, s, map[string]float64{"eta_c": 0.9, "eta_d": 0.8})
	assert.NilError(t, err)

	expected := mat.NewDense(1, 3, []float64{-1, 1.25, 0.9})
	assert.Assert(t, mat.EqualApprox(m.Balance(), expected, 1e-12))
}

func TestModelMissingParameter(t *testing.T) {
	c, s := storageHub(t, algebra.Symbol("eta_c"), algebra.Symbol("eta_d"))

	_, err := NewModel(c, s, map[string]float64{"eta_c": 0.9})
	assert.Assert(t, err != nil)
}

func TestStorageBranches(t *testing.T) {
	c, s := storageHub(t, algebra.Number(0.9), algebra.Number(0.8))

	m, err := NewModel(c, s, nil)
	assert.NilError(t, err)
	assert.DeepEqual(t, m.StorageBranches(), map[string]string{
		"Battery": "Battery_delta_soc_branch",
	})
}

func TestModelReturnsCopies(t *testing.T) {
	c, s := storageHub(t, algebra.Number(0.9), algebra.Number(0.8))

	m, err := NewModel(c, s, nil)
	assert.NilError(t, err)

	branches := m.Branches()
	branches[0] = "mutated"
	assert.Equal(t, m.Branches()[0], "Battery_delta_soc_branch")

	balance := m.Balance()
	balance.Set(0, 0, 42)
	assert.Equal(t, m.Balance().At(0, 0), -1.0)
}
