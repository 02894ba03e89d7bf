package tests

import (
	"context"
	"testing"

	"github.com/luminex/symptomcheck/pkg/ports"
)

// GraphLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.GraphLoader.
// wantNodes lists node keys the loaded graph must contain, wantResults the result ids.
func GraphLoaderContractTest(t *testing.T, loader ports.GraphLoader, wantNodes, wantResults []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		g, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading graph: %v", err)
		}
		for _, key := range wantNodes {
			n, ok := g.Node(key)
			if !ok {
				t.Errorf("node %s missing from graph", key)
				continue
			}
			if len(n.Options) == 0 {
				t.Errorf("node %s has no options", key)
			}
		}
		for _, id := range wantResults {
			if _, ok := g.Result(id); !ok {
				t.Errorf("result %s missing from graph", id)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		g, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading graph: %v", err)
		}
		if _, ok := g.Node("non-existent-node"); ok {
			t.Error("expected non-existent node to be absent")
		}
	})

	t.Run("Load_Repeatable", func(t *testing.T) {
		a, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("first load: %v", err)
		}
		b, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("second load: %v", err)
		}
		if len(a.Nodes) != len(b.Nodes) {
			t.Errorf("expected %d nodes on reload, got %d", len(a.Nodes), len(b.Nodes))
		}
	})
}
