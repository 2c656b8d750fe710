package topology

import (
	"github.com/google/uuid"
	"github.com/ohowland/ehub_core/internal/pkg/component"
)

// BranchRole tags how a branch meets the hub boundary.
type BranchRole string

const (
	BranchInternal  BranchRole = "internal"
	BranchHubInput  BranchRole = "hub_input"
	BranchHubOutput BranchRole = "hub_output"
)

// Branch is one global flow variable. Index is the branch's position in the
// lexicographically sorted branch list and is stable across recompilations
// of the same topology.
type Branch struct {
	Name  string     `json:"Name"`
	Index int        `json:"Index"`
	Role  BranchRole `json:"Role"`
}

// PortRef identifies one declared port of one component.
type PortRef struct {
	Component string `json:"Component"`
	Port      string `json:"Port"`
}

// Compiled is the immutable result of Graph.Compile. Accessors return
// copies; the snapshot itself is never mutated.
type Compiled struct {
	components []component.Component
	branches   []Branch
	bindings   map[PortRef]int
	hubInputs  []int
	hubOutputs []int
}

// Components returns the component instances in registration order.
func (c *Compiled) Components() []component.Component {
	out := make([]component.Component, len(c.components))
	copy(out, c.components)
	return out
}

// Branches returns the sorted branch list.
func (c *Compiled) Branches() []Branch {
	out := make([]Branch, len(c.branches))
	copy(out, c.branches)
	return out
}

// BranchCount returns the number of global branches.
func (c *Compiled) BranchCount() int { return len(c.branches) }

// BranchNames returns branch names in index order.
func (c *Compiled) BranchNames() []string {
	out := make([]string, len(c.branches))
	for i, b := range c.branches {
		out[i] = b.Name
	}
	return out
}

// Binding returns the branch index bound to the given component port.
func (c *Compiled) Binding(componentName, port string) (int, bool) {
	idx, ok := c.bindings[PortRef{Component: componentName, Port: port}]
	return idx, ok
}

// HubInputs returns the sorted indices of hub-input branches.
func (c *Compiled) HubInputs() []int {
	out := make([]int, len(c.hubInputs))
	copy(out, c.hubInputs)
	return out
}

// HubOutputs returns the sorted indices of hub-output branches.
func (c *Compiled) HubOutputs() []int {
	out := make([]int, len(c.hubOutputs))
	copy(out, c.hubOutputs)
	return out
}

// NodeView is a read-only description of one graph node for presentation
// consumers.
type NodeView struct {
	PID  uuid.UUID `json:"PID"`
	Name string    `json:"Name"`
	Kind NodeKind  `json:"Kind"`
	// Role is set for boundary nodes, the component variant otherwise.
	Role string `json:"Role"`
}

// EdgeView is a read-only description of one graph edge, including the
// branch it induces.
type EdgeView struct {
	From     string `json:"From"`
	FromPort string `json:"FromPort"`
	To       string `json:"To"`
	ToPort   string `json:"ToPort"`
	Branch   string `json:"Branch"`
}

type varianter interface {
	Variant() string
}

// Nodes returns node descriptions in registration order.
func (g *Graph) Nodes() []NodeView {
	out := make([]NodeView, 0, len(g.order))
	for _, name := range g.order {
		n := g.nodes[name]
		view := NodeView{PID: n.pid, Name: n.name, Kind: n.kind}
		if n.kind == KindBoundary {
			view.Role = string(n.role)
		} else if v, ok := n.comp.(varianter); ok {
			view.Role = v.Variant()
		}
		out = append(out, view)
	}
	return out
}

// Edges returns edge descriptions in insertion order.
func (g *Graph) Edges() []EdgeView {
	out := make([]EdgeView, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, EdgeView{
			From:     e.fromNode,
			FromPort: e.fromPort,
			To:       e.toNode,
			ToPort:   e.toPort,
			Branch:   e.branchName(),
		})
	}
	return out
}
