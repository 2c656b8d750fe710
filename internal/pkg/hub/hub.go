// Package hub assembles the global system matrices of a compiled energy hub
// topology. X selects hub-input branches, Y selects hub-output branches and
// Z stacks every component's balance equations expressed over the global
// branch variables. Assembly is pure: rerunning it on the same snapshot
// reproduces bit-identical matrices.
package hub

import (
	"errors"
	"fmt"

	"github.com/ohowland/ehub_core/internal/pkg/algebra"
	"github.com/ohowland/ehub_core/internal/pkg/component"
	"github.com/ohowland/ehub_core/internal/pkg/topology"
)

var (
	// ErrUnboundPort is returned when a declared component port has no
	// branch binding in the compiled topology.
	ErrUnboundPort = errors.New("hub: port not bound to a branch")
	// ErrPortLayout is returned when a component's characteristic matrix
	// does not span its declared ports.
	ErrPortLayout = errors.New("hub: characteristic matrix does not match port count")
)

// System holds the assembled selector and balance matrices. All three share
// the compiled branch ordering as their column order.
type System struct {
	X algebra.Matrix
	Y algebra.Matrix
	Z algebra.Matrix
}

// Assemble builds the X, Y and Z matrices for the compiled topology.
func Assemble(c *topology.Compiled) (System, error) {
	b := c.BranchCount()

	z := algebra.Zeros(0, b)
	for _, comp := range c.Components() {
		block, err := balanceBlock(c, comp, b)
		if err != nil {
			return System{}, err
		}
		z = z.VStack(block)
	}

	return System{
		X: selector(c.HubInputs(), b),
		Y: selector(c.HubOutputs(), b),
		Z: z,
	}, nil
}

// balanceBlock right-multiplies the component's characteristic matrix by
// its global incidence expansion: the P x B matrix with +1 at each input
// port's bound branch column and -1 at each output port's, one nonzero per
// port row.
func balanceBlock(c *topology.Compiled, comp component.Component, b int) (algebra.Matrix, error) {
	ports := component.PortCount(comp)
	h := comp.Characteristic()
	if _, hc := h.Dims(); hc != ports {
		return algebra.Matrix{}, fmt.Errorf("hub: component %q: %d ports, %d characteristic columns: %w",
			comp.Name(), ports, hc, ErrPortLayout)
	}

	expansion := algebra.Zeros(ports, b)
	if err := stampPorts(c, comp, comp.InputPorts(), expansion, algebra.One()); err != nil {
		return algebra.Matrix{}, err
	}
	if err := stampPorts(c, comp, comp.OutputPorts(), expansion, algebra.Rational(-1, 1)); err != nil {
		return algebra.Matrix{}, err
	}

	return h.Mul(expansion), nil
}

func stampPorts(c *topology.Compiled, comp component.Component, ports map[string]int, expansion algebra.Matrix, sign algebra.Expr) error {
	for port, local := range ports {
		branch, ok := c.Binding(comp.Name(), port)
		if !ok {
			return fmt.Errorf("hub: port %s.%s: %w", comp.Name(), port, ErrUnboundPort)
		}
		expansion.Set(local, branch, sign)
	}
	return nil
}

// selector builds the 0/1 indicator matrix over the given branch indices.
func selector(indices []int, b int) algebra.Matrix {
	m := algebra.Zeros(len(indices), b)
	for row, branch := range indices {
		m.Set(row, branch, algebra.One())
	}
	return m
}
