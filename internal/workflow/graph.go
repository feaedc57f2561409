package workflow

import (
	"context"
	"fmt"
	"time"
)

// End is the terminal pseudo-node. Routing to it finishes the run.
const End = "end"

// defaultMaxSteps bounds a single graph run. The loop guard should end a
// stalled run long before this trips; the ceiling is the backstop for a
// misbuilt graph.
const defaultMaxSteps = 10000

// StageFunc executes one node against the shared state.
type StageFunc func(ctx context.Context, st *State) error

// ConditionalEdge routes by inspecting the state after its source node runs.
// Decide returns a label, Routes maps labels to node names (or End).
type ConditionalEdge struct {
	Decide func(st *State) string
	Routes map[string]string
}

// Graph is a directed workflow of named stages with static edges and at most
// one conditional edge per node. It holds no per-run state and can be reused
// across runs.
type Graph struct {
	entry    string
	nodes    map[string]StageFunc
	edges    map[string]string
	conds    map[string]ConditionalEdge
	obs      Observer
	maxSteps int
}

// NewGraph creates an empty graph reporting to obs. A nil observer is
// replaced with a no-op one.
func NewGraph(obs Observer) *Graph {
	if obs == nil {
		obs = NoopObserver{}
	}
	return &Graph{
		nodes:    make(map[string]StageFunc),
		edges:    make(map[string]string),
		conds:    make(map[string]ConditionalEdge),
		obs:      obs,
		maxSteps: defaultMaxSteps,
	}
}

// AddNode registers a named stage.
func (g *Graph) AddNode(name string, fn StageFunc) *Graph {
	g.nodes[name] = fn
	return g
}

// AddEdge registers an unconditional transition from one node to the next.
func (g *Graph) AddEdge(from, to string) *Graph {
	g.edges[from] = to
	return g
}

// AddConditionalEdge registers a routed transition out of from.
func (g *Graph) AddConditionalEdge(from string, edge ConditionalEdge) *Graph {
	g.conds[from] = edge
	return g
}

// SetEntryPoint names the first node to run.
func (g *Graph) SetEntryPoint(name string) *Graph {
	g.entry = name
	return g
}

// Validate checks that every edge points at a registered node and the entry
// point exists.
func (g *Graph) Validate() error {
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("entry point %q is not a registered node", g.entry)
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("edge source %q is not a registered node", from)
		}
		if to != End {
			if _, ok := g.nodes[to]; !ok {
				return fmt.Errorf("edge target %q is not a registered node", to)
			}
		}
	}
	for from, edge := range g.conds {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("conditional edge source %q is not a registered node", from)
		}
		for label, to := range edge.Routes {
			if to != End {
				if _, ok := g.nodes[to]; !ok {
					return fmt.Errorf("conditional route %q -> %q is not a registered node", label, to)
				}
			}
		}
	}
	return nil
}

// Run walks the graph from the entry point until a transition reaches End or
// a node has no outgoing edge. Node errors abort the run immediately.
func (g *Graph) Run(ctx context.Context, st *State) error {
	current := g.entry
	for steps := 0; current != End; steps++ {
		if steps >= g.maxSteps {
			return fmt.Errorf("graph exceeded %d steps at node %q", g.maxSteps, current)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fn, ok := g.nodes[current]
		if !ok {
			return fmt.Errorf("unknown node %q", current)
		}

		g.obs.OnStageStart(current)
		started := time.Now()
		err := fn(ctx, st)
		g.obs.OnStageEnd(current, time.Since(started), err)
		if err != nil {
			return fmt.Errorf("stage %s: %w", current, err)
		}

		next, err := g.next(current, st)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func (g *Graph) next(current string, st *State) (string, error) {
	if edge, ok := g.conds[current]; ok {
		label := edge.Decide(st)
		g.obs.OnDecision(label)
		next, ok := edge.Routes[label]
		if !ok {
			return "", fmt.Errorf("node %q routed to unknown label %q", current, label)
		}
		return next, nil
	}
	if next, ok := g.edges[current]; ok {
		return next, nil
	}
	return End, nil
}
