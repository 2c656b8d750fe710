package topology

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/ohowland/ehub_core/internal/pkg/algebra"
	"github.com/ohowland/ehub_core/internal/pkg/component"
	"gotest.tools/v3/assert"
)

// twoConverterGraph wires the reference topology: a CHP and a boiler fed by
// one gas input, sharing a heat load, with the CHP alone feeding an
// electrical load.
func twoConverterGraph(t *testing.T, etaQ, etaW, etaBoiler algebra.Expr) *Graph {
	t.Helper()
	g := NewGraph()
	assert.NilError(t, g.AddComponent(component.NewCHPBackPressure("CHP1", etaQ, etaW)))
	assert.NilError(t, g.AddComponent(component.NewBoiler("Boiler1", etaBoiler)))
	assert.NilError(t, g.AddBoundary("GasInput", RoleInput))
	assert.NilError(t, g.AddBoundary("HeatLoad", RoleOutput))
	assert.NilError(t, g.AddBoundary("ElecLoad", RoleOutput))

	assert.NilError(t, g.Connect("GasInput", "out", "CHP1", "fuel_in"))
	assert.NilError(t, g.Connect("CHP1", "heat_out", "HeatLoad", "in"))
	assert.NilError(t, g.Connect("CHP1", "elec_out", "ElecLoad", "in"))
	assert.NilError(t, g.Connect("GasInput", "out", "Boiler1", "fuel_in"))
	assert.NilError(t, g.Connect("Boiler1", "heat_out", "HeatLoad", "in"))
	return g
}

func TestCompileBranchOrdering(t *testing.T) {
	g := twoConverterGraph(t, algebra.Number(0.8), algebra.Number(0.3), algebra.Number(0.9))
	c, err := g.Compile()
	assert.NilError(t, err)

	assert.DeepEqual(t, c.BranchNames(), []string{
		"Boiler1_heat_out_to_HeatLoad_in",
		"CHP1_elec_out_to_ElecLoad_in",
		"CHP1_heat_out_to_HeatLoad_in",
		"GasInput_out_to_Boiler1_fuel_in",
		"GasInput_out_to_CHP1_fuel_in",
	})
	assert.DeepEqual(t, c.HubInputs(), []int{3, 4})
	assert.DeepEqual(t, c.HubOutputs(), []int{0, 1, 2})

	idx, ok := c.Binding("CHP1", "fuel_in")
	assert.Assert(t, ok)
	assert.Equal(t, idx, 4)
	idx, ok = c.Binding("Boiler1", "heat_out")
	assert.Assert(t, ok)
	assert.Equal(t, idx, 0)

	comps := c.Components()
	assert.Equal(t, len(comps), 2)
	assert.Equal(t, comps[0].Name(), "CHP1")
	assert.Equal(t, comps[1].Name(), "Boiler1")
}

func TestCompileBranchRoles(t *testing.T) {
	g := twoConverterGraph(t, algebra.Number(0.8), algebra.Number(0.3), algebra.Number(0.9))
	c, err := g.Compile()
	assert.NilError(t, err)

	roles := map[string]BranchRole{}
	for _, b := range c.Branches() {
		roles[b.Name] = b.Role
	}
	assert.Equal(t, roles["GasInput_out_to_CHP1_fuel_in"], BranchHubInput)
	assert.Equal(t, roles["CHP1_heat_out_to_HeatLoad_in"], BranchHubOutput)
}

func TestDuplicateNodeName(t *testing.T) {
	g := NewGraph()
	assert.NilError(t, g.AddComponent(component.NewBoiler("B1", algebra.Number(0.9))))
	err := g.AddBoundary("B1", RoleInput)
	assert.Assert(t, errors.Is(err, ErrNameConflict))
}

func TestConnectUnknownNode(t *testing.T) {
	g := NewGraph()
	assert.NilError(t, g.AddBoundary("Gas", RoleInput))
	err := g.Connect("Gas", "out", "Nowhere", "in")
	assert.Assert(t, errors.Is(err, ErrNodeNotFound))
	err = g.Connect("Nowhere", "out", "Gas", "in")
	assert.Assert(t, errors.Is(err, ErrNodeNotFound))
}

func TestConnectPortValidation(t *testing.T) {
	g := NewGraph()
	assert.NilError(t, g.AddComponent(component.NewBoiler("B1", algebra.Number(0.9))))
	assert.NilError(t, g.AddBoundary("Gas", RoleInput))
	assert.NilError(t, g.AddBoundary("Heat", RoleOutput))

	// input port used as an edge source
	err := g.Connect("B1", "fuel_in", "Heat", "in")
	assert.Assert(t, errors.Is(err, ErrPortValidation))

	// output port used as an edge destination
	err = g.Connect("Gas", "out", "B1", "heat_out")
	assert.Assert(t, errors.Is(err, ErrPortValidation))

	// output boundary as a source
	err = g.Connect("Heat", "out", "B1", "fuel_in")
	assert.Assert(t, errors.Is(err, ErrPortValidation))

	// input boundary as a destination
	err = g.Connect("B1", "heat_out", "Gas", "in")
	assert.Assert(t, errors.Is(err, ErrPortValidation))
}

func TestStorageVirtualBranchInjected(t *testing.T) {
	g := NewGraph()
	assert.NilError(t, g.AddComponent(component.NewStorage("Battery", algebra.Number(0.95), algebra.Number(0.9))))
	assert.NilError(t, g.AddBoundary("ElecIn", RoleInput))
	assert.NilError(t, g.AddBoundary("ElecOut", RoleOutput))
	assert.NilError(t, g.Connect("ElecIn", "out", "Battery", "energy_in"))
	assert.NilError(t, g.Connect("Battery", "energy_out", "ElecOut", "in"))

	c, err := g.Compile()
	assert.NilError(t, err)

	assert.DeepEqual(t, c.BranchNames(), []string{
		"Battery_delta_soc_branch",
		"Battery_energy_out_to_ElecOut_in",
		"ElecIn_out_to_Battery_energy_in",
	})

	idx, ok := c.Binding("Battery", component.VirtualSOCPort)
	assert.Assert(t, ok)
	assert.Equal(t, idx, 0)
	assert.Equal(t, c.Branches()[0].Role, BranchInternal)
}

func TestPortBoundTwice(t *testing.T) {
	g := NewGraph()
	assert.NilError(t, g.AddComponent(component.NewBoiler("B1", algebra.Number(0.9))))
	assert.NilError(t, g.AddBoundary("GasA", RoleInput))
	assert.NilError(t, g.AddBoundary("GasB", RoleInput))
	assert.NilError(t, g.Connect("GasA", "out", "B1", "fuel_in"))
	assert.NilError(t, g.Connect("GasB", "out", "B1", "fuel_in"))

	_, err := g.Compile()
	assert.Assert(t, errors.Is(err, ErrPortBound))
}

func TestDuplicateEdgeCollapses(t *testing.T) {
	g := NewGraph()
	assert.NilError(t, g.AddComponent(component.NewBoiler("B1", algebra.Number(0.9))))
	assert.NilError(t, g.AddBoundary("Gas", RoleInput))
	assert.NilError(t, g.AddBoundary("Heat", RoleOutput))
	assert.NilError(t, g.Connect("Gas", "out", "B1", "fuel_in"))
	assert.NilError(t, g.Connect("Gas", "out", "B1", "fuel_in"))
	assert.NilError(t, g.Connect("B1", "heat_out", "Heat", "in"))

	c, err := g.Compile()
	assert.NilError(t, err)
	assert.Equal(t, c.BranchCount(), 2)
}

func TestCompileDeterministic(t *testing.T) {
	g := twoConverterGraph(t, algebra.Symbol("eta_q"), algebra.Symbol("eta_w"), algebra.Symbol("eta_b"))
	first, err := g.Compile()
	assert.NilError(t, err)
	second, err := g.Compile()
	assert.NilError(t, err)

	assert.DeepEqual(t, first.Branches(), second.Branches())
	assert.DeepEqual(t, first.HubInputs(), second.HubInputs())
	assert.DeepEqual(t, first.HubOutputs(), second.HubOutputs())
}

func TestGraphViews(t *testing.T) {
	g := twoConverterGraph(t, algebra.Number(0.8), algebra.Number(0.3), algebra.Number(0.9))

	nodes := g.Nodes()
	assert.Equal(t, len(nodes), 5)
	assert.Equal(t, nodes[0].Name, "CHP1")
	assert.Equal(t, nodes[0].Kind, KindComponent)
	assert.Equal(t, nodes[0].Role, component.VariantCHPBackPressure)
	assert.Equal(t, nodes[2].Kind, KindBoundary)
	assert.Equal(t, nodes[2].Role, string(RoleInput))

	edges := g.Edges()
	assert.Equal(t, len(edges), 5)
	assert.Equal(t, edges[0].Branch, "GasInput_out_to_CHP1_fuel_in")
}

// Rebuilding the same topology from scratch always compiles to the same
// snapshot, whatever the node names are.
func TestCompileDeterminismProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	build := func(boiler, gas, heat string) (*Compiled, error) {
		g := NewGraph()
		if err := g.AddComponent(component.NewBoiler(boiler, algebra.Number(0.9))); err != nil {
			return nil, err
		}
		if err := g.AddBoundary(gas, RoleInput); err != nil {
			return nil, err
		}
		if err := g.AddBoundary(heat, RoleOutput); err != nil {
			return nil, err
		}
		if err := g.Connect(gas, "out", boiler, "fuel_in"); err != nil {
			return nil, err
		}
		if err := g.Connect(boiler, "heat_out", heat, "in"); err != nil {
			return nil, err
		}
		return g.Compile()
	}

	properties.Property("recompilation is reproducible", prop.ForAll(
		func(boiler, gas, heat string) bool {
			if boiler == gas || gas == heat || boiler == heat {
				return true
			}
			first, err := build(boiler, gas, heat)
			if err != nil {
				return false
			}
			second, err := build(boiler, gas, heat)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(first.Branches(), second.Branches()) &&
				reflect.DeepEqual(first.HubInputs(), second.HubInputs()) &&
				reflect.DeepEqual(first.HubOutputs(), second.HubOutputs())
		},
		gen.Identifier(),
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
