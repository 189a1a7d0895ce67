package cfg

import "testing"

func TestNewNodeAssignsMonotonicUIDs(t *testing.T) {
	g := NewGraph()
	a := g.NewNode("Foo")
	b := g.NewNode("Foo")

	if a.UID != 0 || b.UID != 1 {
		t.Errorf("UIDs = %d, %d, want 0, 1", a.UID, b.UID)
	}
	if len(g.Nodes()) != 2 {
		t.Fatalf("len(Nodes()) = %d, want 2", len(g.Nodes()))
	}
}

func TestNodeLookup(t *testing.T) {
	g := NewGraph()
	n := g.NewNode("Foo")

	if got := g.Node(n.UID); got != n {
		t.Errorf("Node(%d) = %v, want %v", n.UID, got, n)
	}
	if got := g.Node(-1); got != nil {
		t.Errorf("Node(-1) = %v, want nil", got)
	}
	if got := g.Node(99); got != nil {
		t.Errorf("Node(99) = %v, want nil", got)
	}
}

func TestHasFlag(t *testing.T) {
	n := &Node{Flags: FuncEntry}
	if !n.HasFlag(FuncEntry) {
		t.Error("HasFlag(FuncEntry) = false, want true")
	}
	if n.HasFlag(CallReturn) {
		t.Error("HasFlag(CallReturn) = true, want false")
	}

	n.Flags |= CallReturn
	if !n.HasFlag(FuncEntry) || !n.HasFlag(CallReturn) {
		t.Error("expected both flags set")
	}
}

func TestAddEdgeAndEdges(t *testing.T) {
	g := NewGraph()
	a := g.NewNode("Foo")
	b := g.NewNode("Foo")

	g.AddEdge(Edge{Source: a.UID, Target: b.UID, JumpType: Unconditional})

	edges := g.Edges()
	if len(edges) != 1 {
		t.Fatalf("len(Edges()) = %d, want 1", len(edges))
	}
	if edges[0].Source != a.UID || edges[0].Target != b.UID {
		t.Errorf("edge = %+v, want Source=%d Target=%d", edges[0], a.UID, b.UID)
	}
}

func TestJumpTypeString(t *testing.T) {
	cases := []struct {
		j    JumpType
		want string
	}{
		{Unconditional, "UNCONDITIONAL"},
		{Conditional, "CONDITIONAL"},
		{Call, "CALL"},
		{Return, "RETURN"},
		{TransactionBoundary, "TRANSACTION"},
		{JumpType(99), "UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.j.String(); got != c.want {
			t.Errorf("JumpType(%d).String() = %q, want %q", c.j, got, c.want)
		}
	}
}
