// Package topology models an energy hub as a directed graph of component
// nodes and boundary nodes joined by port-to-port edges, and compiles that
// graph into an immutable snapshot: the global branch registry, the
// port-to-branch binding relation and the hub boundary sets. The builder is
// mutated sequentially and never handed to downstream consumers; only the
// compiled snapshot is.
package topology

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/ohowland/ehub_core/internal/pkg/component"
)

var (
	// ErrNameConflict is returned when a node name is registered twice.
	ErrNameConflict = errors.New("topology: node name already registered")
	// ErrNodeNotFound is returned when an edge references an
	// unregistered node.
	ErrNodeNotFound = errors.New("topology: node not found")
	// ErrPortValidation is returned when an edge endpoint has the wrong
	// direction or boundary role.
	ErrPortValidation = errors.New("topology: invalid port for edge endpoint")
	// ErrPortBound is returned when compilation finds a component port
	// carrying more than one branch.
	ErrPortBound = errors.New("topology: port bound to multiple branches")
)

// Role tags a boundary node as a hub input or a hub output.
type Role string

const (
	RoleInput  Role = "input"
	RoleOutput Role = "output"
)

// NodeKind distinguishes component nodes from boundary nodes.
type NodeKind string

const (
	KindComponent NodeKind = "component"
	KindBoundary  NodeKind = "boundary"
)

type node struct {
	pid  uuid.UUID
	name string
	kind NodeKind
	comp component.Component
	role Role
}

type edge struct {
	fromNode string
	fromPort string
	toNode   string
	toPort   string
}

// branchName is deterministic in the four edge fields, so parallel
// connections between the same two nodes via different ports stay distinct.
func (e edge) branchName() string {
	return fmt.Sprintf("%s_%s_to_%s_%s", e.fromNode, e.fromPort, e.toNode, e.toPort)
}

// virtualBranchName names the auto-generated branch bound to a storage
// component's latent state port.
func virtualBranchName(componentName, port string) string {
	return fmt.Sprintf("%s_%s_branch", componentName, port)
}

// Graph accumulates nodes and edges for one hub. Mutation must be complete
// before Compile is called; the graph provides no internal locking.
type Graph struct {
	pid   uuid.UUID
	nodes map[string]*node
	order []string
	edges []edge
}

// NewGraph returns an empty hub graph.
func NewGraph() *Graph {
	pid, _ := uuid.NewUUID()
	return &Graph{
		pid:   pid,
		nodes: map[string]*node{},
	}
}

// PID is a getter for the graph PID.
func (g *Graph) PID() uuid.UUID { return g.pid }

func (g *Graph) addNode(n *node) error {
	if _, exists := g.nodes[n.name]; exists {
		return fmt.Errorf("topology: node %q: %w", n.name, ErrNameConflict)
	}
	g.nodes[n.name] = n
	g.order = append(g.order, n.name)
	return nil
}

// AddComponent registers a component instance as a node under its own name.
func (g *Graph) AddComponent(c component.Component) error {
	return g.addNode(&node{pid: c.PID(), name: c.Name(), kind: KindComponent, comp: c})
}

// AddBoundary registers a boundary node with the given hub role.
func (g *Graph) AddBoundary(name string, role Role) error {
	if role != RoleInput && role != RoleOutput {
		return fmt.Errorf("topology: boundary %q role %q: %w", name, role, ErrPortValidation)
	}
	pid, _ := uuid.NewUUID()
	return g.addNode(&node{pid: pid, name: name, kind: KindBoundary, role: role})
}

// Connect adds a directed edge from (fromNode, fromPort) to
// (toNode, toPort). The source must be a component output port or any port
// of an input boundary; the destination must be a component input port or
// any port of an output boundary.
func (g *Graph) Connect(fromNode, fromPort, toNode, toPort string) error {
	src, ok := g.nodes[fromNode]
	if !ok {
		return fmt.Errorf("topology: source %q: %w", fromNode, ErrNodeNotFound)
	}
	dst, ok := g.nodes[toNode]
	if !ok {
		return fmt.Errorf("topology: destination %q: %w", toNode, ErrNodeNotFound)
	}

	switch src.kind {
	case KindComponent:
		if _, ok := src.comp.OutputPorts()[fromPort]; !ok {
			return fmt.Errorf("topology: %q is not an output port of component %q: %w", fromPort, fromNode, ErrPortValidation)
		}
	case KindBoundary:
		if src.role != RoleInput {
			return fmt.Errorf("topology: boundary %q is not an input, cannot source an edge: %w", fromNode, ErrPortValidation)
		}
	}

	switch dst.kind {
	case KindComponent:
		if _, ok := dst.comp.InputPorts()[toPort]; !ok {
			return fmt.Errorf("topology: %q is not an input port of component %q: %w", toPort, toNode, ErrPortValidation)
		}
	case KindBoundary:
		if dst.role != RoleOutput {
			return fmt.Errorf("topology: boundary %q is not an output, cannot terminate an edge: %w", toNode, ErrPortValidation)
		}
	}

	g.edges = append(g.edges, edge{fromNode, fromPort, toNode, toPort})
	return nil
}

// Compile freezes the graph into an immutable snapshot. Every edge induces
// one branch; storage components get one virtual branch each whether or not
// an edge referenced the latent port; the full branch set and the boundary
// subsets are sorted lexicographically to fix indices. Compilation mutates
// nothing on failure.
func (g *Graph) Compile() (*Compiled, error) {
	branchSet := map[string]struct{}{}
	inputSet := map[string]struct{}{}
	outputSet := map[string]struct{}{}
	bindings := map[PortRef]string{}

	for _, e := range g.edges {
		name := e.branchName()
		branchSet[name] = struct{}{}

		src := g.nodes[e.fromNode]
		dst := g.nodes[e.toNode]

		if src.kind == KindComponent {
			ref := PortRef{Component: e.fromNode, Port: e.fromPort}
			if bound, ok := bindings[ref]; ok && bound != name {
				return nil, fmt.Errorf("topology: output port %s.%s already carries %q: %w", ref.Component, ref.Port, bound, ErrPortBound)
			}
			bindings[ref] = name
		} else {
			inputSet[name] = struct{}{}
		}

		if dst.kind == KindComponent {
			ref := PortRef{Component: e.toNode, Port: e.toPort}
			if bound, ok := bindings[ref]; ok && bound != name {
				return nil, fmt.Errorf("topology: input port %s.%s already carries %q: %w", ref.Component, ref.Port, bound, ErrPortBound)
			}
			bindings[ref] = name
		} else {
			outputSet[name] = struct{}{}
		}
	}

	components := g.componentOrder()

	// Latent state branches exist even without an explicit edge. A
	// binding injected here supersedes any edge that targeted the
	// virtual port directly.
	for _, c := range components {
		st, ok := c.(component.Storer)
		if !ok {
			continue
		}
		name := virtualBranchName(c.Name(), st.VirtualPort())
		branchSet[name] = struct{}{}
		bindings[PortRef{Component: c.Name(), Port: st.VirtualPort()}] = name
	}

	names := make([]string, 0, len(branchSet))
	for name := range branchSet {
		names = append(names, name)
	}
	sort.Strings(names)

	index := make(map[string]int, len(names))
	branches := make([]Branch, len(names))
	for i, name := range names {
		index[name] = i
		role := BranchInternal
		if _, ok := inputSet[name]; ok {
			role = BranchHubInput
		} else if _, ok := outputSet[name]; ok {
			role = BranchHubOutput
		}
		branches[i] = Branch{Name: name, Index: i, Role: role}
	}

	boundIndices := func(set map[string]struct{}) []int {
		out := make([]int, 0, len(set))
		for name := range set {
			out = append(out, index[name])
		}
		sort.Ints(out)
		return out
	}

	indexed := make(map[PortRef]int, len(bindings))
	for ref, name := range bindings {
		indexed[ref] = index[name]
	}

	return &Compiled{
		components: components,
		branches:   branches,
		bindings:   indexed,
		hubInputs:  boundIndices(inputSet),
		hubOutputs: boundIndices(outputSet),
	}, nil
}

// componentOrder returns component instances in registration order; block
// order in the stacked balance matrix follows it.
func (g *Graph) componentOrder() []component.Component {
	out := make([]component.Component, 0, len(g.order))
	for _, name := range g.order {
		if n := g.nodes[name]; n.kind == KindComponent {
			out = append(out, n.comp)
		}
	}
	return out
}
