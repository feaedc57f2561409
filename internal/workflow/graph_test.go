package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestGraphRunFollowsEdges(t *testing.T) {
	var order []string
	record := func(name string) StageFunc {
		return func(_ context.Context, _ *State) error {
			order = append(order, name)
			return nil
		}
	}

	g := NewGraph(nil).
		AddNode("a", record("a")).
		AddNode("b", record("b")).
		AddNode("c", record("c")).
		AddEdge("a", "b").
		AddEdge("b", "c").
		SetEntryPoint("a")

	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := g.Run(context.Background(), &State{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("execution order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("execution order = %v, want %v", order, want)
			break
		}
	}
}

func TestGraphConditionalRouting(t *testing.T) {
	loops := 0
	g := NewGraph(nil).
		AddNode("work", func(_ context.Context, _ *State) error {
			loops++
			return nil
		}).
		AddConditionalEdge("work", ConditionalEdge{
			Decide: func(_ *State) string {
				if loops < 3 {
					return "again"
				}
				return "done"
			},
			Routes: map[string]string{"again": "work", "done": End},
		}).
		SetEntryPoint("work")

	if err := g.Run(context.Background(), &State{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if loops != 3 {
		t.Errorf("loops = %d, want 3", loops)
	}
}

func TestGraphStageErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	g := NewGraph(nil).
		AddNode("first", func(_ context.Context, _ *State) error { return boom }).
		AddNode("second", func(_ context.Context, _ *State) error {
			ran = true
			return nil
		}).
		AddEdge("first", "second").
		SetEntryPoint("first")

	err := g.Run(context.Background(), &State{})
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want wrapped boom", err)
	}
	if ran {
		t.Errorf("second stage ran after first failed")
	}
}

func TestGraphStepCeiling(t *testing.T) {
	g := NewGraph(nil).
		AddNode("loop", func(_ context.Context, _ *State) error { return nil }).
		AddEdge("loop", "loop").
		SetEntryPoint("loop")
	g.maxSteps = 10

	if err := g.Run(context.Background(), &State{}); err == nil {
		t.Errorf("Run() expected step ceiling error, got nil")
	}
}

func TestGraphValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Graph
		wantErr bool
	}{
		{
			name: "valid graph",
			build: func() *Graph {
				return NewGraph(nil).
					AddNode("a", nil).
					AddEdge("a", End).
					SetEntryPoint("a")
			},
			wantErr: false,
		},
		{
			name: "missing entry point",
			build: func() *Graph {
				return NewGraph(nil).AddNode("a", nil).SetEntryPoint("missing")
			},
			wantErr: true,
		},
		{
			name: "edge to unknown node",
			build: func() *Graph {
				return NewGraph(nil).
					AddNode("a", nil).
					AddEdge("a", "ghost").
					SetEntryPoint("a")
			},
			wantErr: true,
		},
		{
			name: "conditional route to unknown node",
			build: func() *Graph {
				return NewGraph(nil).
					AddNode("a", nil).
					AddConditionalEdge("a", ConditionalEdge{
						Decide: func(_ *State) string { return "x" },
						Routes: map[string]string{"x": "ghost"},
					}).
					SetEntryPoint("a")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGraphUnknownRouteLabel(t *testing.T) {
	g := NewGraph(nil).
		AddNode("a", func(_ context.Context, _ *State) error { return nil }).
		AddConditionalEdge("a", ConditionalEdge{
			Decide: func(_ *State) string { return "nowhere" },
			Routes: map[string]string{"somewhere": End},
		}).
		SetEntryPoint("a")

	if err := g.Run(context.Background(), &State{}); err == nil {
		t.Errorf("Run() expected unknown label error, got nil")
	}
}
