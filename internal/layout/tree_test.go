package layout

import "testing"

func TestNewTreeHasOneFocusedPane(t *testing.T) {
	tr := New()
	panes := tr.Panes()
	if len(panes) != 1 {
		t.Fatalf("pane count = %d, want 1", len(panes))
	}
	if tr.Focused() != panes[0] {
		t.Errorf("focused = %q, want %q", tr.Focused(), panes[0])
	}
}

func TestSplitFocusesNewPane(t *testing.T) {
	tr := New()
	p1 := tr.Focused()
	p2 := tr.Split(Horizontal)
	if p2 == "" || p2 == p1 {
		t.Fatalf("Split returned %q", p2)
	}
	if tr.Focused() != p2 {
		t.Errorf("focused = %q, want new pane %q", tr.Focused(), p2)
	}
	if got := len(tr.Panes()); got != 2 {
		t.Errorf("pane count = %d, want 2", got)
	}
}

func TestSplitCloseCollapse(t *testing.T) {
	// P1; split horizontal -> P2; split vertical -> P3; close P2.
	// Remaining tree is Horizontal(P1, P3); focus stays on P3.
	tr := New()
	p1 := tr.Focused()
	p2 := tr.Split(Horizontal)
	p3 := tr.Split(Vertical)

	tr.Close(p2)

	panes := tr.Panes()
	if len(panes) != 2 || panes[0] != p1 || panes[1] != p3 {
		t.Errorf("panes = %v, want [%s %s]", panes, p1, p3)
	}
	if tr.Focused() != p3 {
		t.Errorf("focused = %q, want %q", tr.Focused(), p3)
	}

	root := tr.root
	if root.leaf() || root.dir != Horizontal {
		t.Errorf("root is not a horizontal split")
	}
	if !root.first.leaf() || root.first.paneID != p1 || !root.second.leaf() || root.second.paneID != p3 {
		t.Errorf("collapsed tree shape wrong: %+v", root)
	}
}

func TestCloseFocusedMovesToSibling(t *testing.T) {
	tr := New()
	p1 := tr.Focused()
	p2 := tr.Split(Horizontal)

	tr.Close(p2)
	if tr.Focused() != p1 {
		t.Errorf("focused = %q, want sibling %q", tr.Focused(), p1)
	}
}

func TestCloseLastPaneLeavesDefault(t *testing.T) {
	tr := New()
	old := tr.Focused()
	fresh := tr.Close(old)
	if fresh == "" || fresh == old {
		t.Fatalf("Close last pane returned %q", fresh)
	}
	if len(tr.Panes()) != 1 || tr.Focused() != fresh {
		t.Errorf("tree not reset to a single fresh pane")
	}
}

func TestUniqueIDsAndLiveFocusInvariant(t *testing.T) {
	tr := New()
	ops := []func(){
		func() { tr.Split(Horizontal) },
		func() { tr.Split(Vertical) },
		func() { tr.Close(tr.Focused()) },
		func() { tr.Split(Horizontal) },
		func() { tr.Close(tr.Panes()[0]) },
		func() { tr.Split(Vertical) },
		func() { tr.Close(tr.Focused()) },
		func() { tr.Close(tr.Focused()) },
	}
	for i, op := range ops {
		op()
		seen := map[string]bool{}
		for _, id := range tr.Panes() {
			if seen[id] {
				t.Fatalf("op %d: duplicate pane id %q", i, id)
			}
			seen[id] = true
		}
		if !seen[tr.Focused()] {
			t.Fatalf("op %d: focused %q is not a live leaf", i, tr.Focused())
		}
	}
}

func TestLayoutSplitsByRatio(t *testing.T) {
	tr := New()
	p1 := tr.Focused()
	p2 := tr.Split(Horizontal)

	rects := tr.Layout(Rect{0, 0, 100, 40})
	if rects[p1].W != 50 || rects[p2].W != 50 {
		t.Errorf("widths = %d/%d, want 50/50", rects[p1].W, rects[p2].W)
	}
	if rects[p2].X != 50 {
		t.Errorf("second pane X = %d, want 50", rects[p2].X)
	}

	tr.SetRatio(p2, 0.25)
	rects = tr.Layout(Rect{0, 0, 100, 40})
	if rects[p1].W != 25 || rects[p2].W != 75 {
		t.Errorf("widths after SetRatio = %d/%d, want 25/75", rects[p1].W, rects[p2].W)
	}
}

func TestRatioClamped(t *testing.T) {
	tr := New()
	p1 := tr.Focused()
	p2 := tr.Split(Horizontal)

	tr.SetRatio(p2, 0.01)
	rects := tr.Layout(Rect{0, 0, 100, 40})
	if rects[p1].W != 10 {
		t.Errorf("width with clamped ratio = %d, want 10", rects[p1].W)
	}

	tr.SetRatio(p2, 1.5)
	rects = tr.Layout(Rect{0, 0, 100, 40})
	if rects[p1].W != 90 {
		t.Errorf("width with clamped ratio = %d, want 90", rects[p1].W)
	}
}

func TestVerticalLayout(t *testing.T) {
	tr := New()
	p1 := tr.Focused()
	p2 := tr.Split(Vertical)
	rects := tr.Layout(Rect{0, 0, 80, 40})
	if rects[p1].H != 20 || rects[p2].H != 20 || rects[p2].Y != 20 {
		t.Errorf("vertical layout wrong: %+v / %+v", rects[p1], rects[p2])
	}
}

func TestNavigateGeometric(t *testing.T) {
	// Horizontal(P1, Vertical(P2, P3)): P1 left column, P2 top right,
	// P3 bottom right.
	tr := New()
	p1 := tr.Focused()
	p2 := tr.Split(Horizontal)
	p3 := tr.Split(Vertical)
	tr.Layout(Rect{0, 0, 100, 40})

	if got := tr.Navigate(Left); got != p1 {
		t.Fatalf("Navigate(Left) from P3 = %q, want P1", got)
	}
	if got := tr.Navigate(Right); got != p2 && got != p3 {
		t.Fatalf("Navigate(Right) from P1 = %q, want a right-column pane", got)
	}
	tr.SetFocused(p2)
	if got := tr.Navigate(Down); got != p3 {
		t.Errorf("Navigate(Down) from P2 = %q, want P3", got)
	}
	if got := tr.Navigate(Up); got != p2 {
		t.Errorf("Navigate(Up) from P3 = %q, want P2", got)
	}
}

func TestNavigateNoCandidateKeepsFocus(t *testing.T) {
	tr := New()
	p1 := tr.Focused()
	tr.Layout(Rect{0, 0, 100, 40})
	if got := tr.Navigate(Left); got != p1 {
		t.Errorf("Navigate on single pane = %q, want %q", got, p1)
	}
}
