package layout

import "github.com/google/uuid"

// Direction selects how a split divides its rectangle.
type Direction int

const (
	// Horizontal places children side by side (left/right).
	Horizontal Direction = iota
	// Vertical stacks children (top/bottom).
	Vertical
)

// NavDirection is a focus-movement request.
type NavDirection int

const (
	Left NavDirection = iota
	Right
	Up
	Down
)

const (
	minRatio = 0.1
	maxRatio = 0.9
)

// Rect is a pane rectangle in cell coordinates.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) centerX() float64 { return float64(r.X) + float64(r.W)/2 }
func (r Rect) centerY() float64 { return float64(r.Y) + float64(r.H)/2 }

// node is either a pane leaf (PaneID set) or a split with two children.
type node struct {
	paneID string

	dir           Direction
	ratio         float64
	first, second *node
}

func (n *node) leaf() bool { return n.paneID != "" }

// Tree is a binary tree of splits over pane leaves. It stores pane ids only;
// pane state lives in a flat map owned by the tab.
type Tree struct {
	root    *node
	focused string

	lastLayout map[string]Rect
}

// New creates a tree holding a single fresh pane, which is focused.
func New() *Tree {
	id := uuid.NewString()
	return &Tree{
		root:    &node{paneID: id},
		focused: id,
	}
}

// Focused returns the id of the focused pane.
func (t *Tree) Focused() string {
	return t.focused
}

// SetFocused moves focus to id if it names a live leaf.
func (t *Tree) SetFocused(id string) bool {
	if t.find(t.root, id) == nil {
		return false
	}
	t.focused = id
	return true
}

// Panes returns all pane ids in tree order (first child before second).
func (t *Tree) Panes() []string {
	var ids []string
	var walk func(n *node)
	walk = func(n *node) {
		if n.leaf() {
			ids = append(ids, n.paneID)
			return
		}
		walk(n.first)
		walk(n.second)
	}
	walk(t.root)
	return ids
}

func (t *Tree) find(n *node, id string) *node {
	if n.leaf() {
		if n.paneID == id {
			return n
		}
		return nil
	}
	if found := t.find(n.first, id); found != nil {
		return found
	}
	return t.find(n.second, id)
}

// findParent returns the split whose child is the leaf with id, or nil when
// the leaf is the root.
func (t *Tree) findParent(n *node, id string) *node {
	if n.leaf() {
		return nil
	}
	if (n.first.leaf() && n.first.paneID == id) || (n.second.leaf() && n.second.paneID == id) {
		return n
	}
	if p := t.findParent(n.first, id); p != nil {
		return p
	}
	return t.findParent(n.second, id)
}

// Split replaces the focused leaf with a split holding the old pane first
// and a fresh pane second, at ratio 0.5. Focus moves to the new pane and its
// id is returned.
func (t *Tree) Split(dir Direction) string {
	leaf := t.find(t.root, t.focused)
	if leaf == nil {
		return ""
	}
	newID := uuid.NewString()
	old := leaf.paneID
	leaf.paneID = ""
	leaf.dir = dir
	leaf.ratio = 0.5
	leaf.first = &node{paneID: old}
	leaf.second = &node{paneID: newID}
	t.focused = newID
	return newID
}

// Close removes the leaf with id; its sibling subtree replaces the parent.
// Closing the last pane replaces it with a fresh default pane — a tab is
// never empty. When the focused pane is removed, focus moves to the nearest
// leaf of the sibling. Returns the id of the replacement pane when the tree
// was down to one pane, or "".
func (t *Tree) Close(id string) string {
	if t.find(t.root, id) == nil {
		return ""
	}

	if t.root.leaf() {
		fresh := uuid.NewString()
		t.root = &node{paneID: fresh}
		t.focused = fresh
		return fresh
	}

	parent := t.findParent(t.root, id)
	var sibling *node
	if parent.first.leaf() && parent.first.paneID == id {
		sibling = parent.second
	} else {
		sibling = parent.first
	}
	*parent = *sibling

	if t.focused == id {
		t.focused = firstLeaf(parent)
	}
	return ""
}

func firstLeaf(n *node) string {
	for !n.leaf() {
		n = n.first
	}
	return n.paneID
}

// Layout computes each pane's rectangle inside viewport. Ratios are clamped
// so no pane collapses to zero size. The result is cached for Navigate.
func (t *Tree) Layout(viewport Rect) map[string]Rect {
	out := make(map[string]Rect)
	layoutNode(t.root, viewport, out)
	t.lastLayout = out
	return out
}

func layoutNode(n *node, r Rect, out map[string]Rect) {
	if n.leaf() {
		out[n.paneID] = r
		return
	}
	ratio := clampRatio(n.ratio)
	if n.dir == Horizontal {
		w1 := int(float64(r.W) * ratio)
		layoutNode(n.first, Rect{r.X, r.Y, w1, r.H}, out)
		layoutNode(n.second, Rect{r.X + w1, r.Y, r.W - w1, r.H}, out)
	} else {
		h1 := int(float64(r.H) * ratio)
		layoutNode(n.first, Rect{r.X, r.Y, r.W, h1}, out)
		layoutNode(n.second, Rect{r.X, r.Y + h1, r.W, r.H - h1}, out)
	}
}

func clampRatio(r float64) float64 {
	if r < minRatio {
		return minRatio
	}
	if r > maxRatio {
		return maxRatio
	}
	return r
}

// NodeView is a read-only snapshot of the tree shape, for renderers that
// compose pane views recursively.
type NodeView struct {
	Leaf   bool
	PaneID string
	Dir    Direction
	Ratio  float64
	First  *NodeView
	Second *NodeView
}

// Structure snapshots the current tree shape.
func (t *Tree) Structure() *NodeView {
	return structureOf(t.root)
}

func structureOf(n *node) *NodeView {
	if n.leaf() {
		return &NodeView{Leaf: true, PaneID: n.paneID}
	}
	return &NodeView{
		Dir:    n.dir,
		Ratio:  clampRatio(n.ratio),
		First:  structureOf(n.first),
		Second: structureOf(n.second),
	}
}

// SetRatio adjusts the split directly above the pane with id (drag-resize).
func (t *Tree) SetRatio(id string, ratio float64) {
	parent := t.findParent(t.root, id)
	if parent == nil {
		return
	}
	parent.ratio = clampRatio(ratio)
}

// Navigate moves focus geometrically: among leaves whose centre lies in the
// requested half-plane relative to the focused rectangle, pick the one with
// the largest perpendicular overlap, breaking ties by proximity. Focus is
// unchanged (and the current id returned) when no candidate exists.
// Requires a prior Layout call for geometry.
func (t *Tree) Navigate(dir NavDirection) string {
	if t.lastLayout == nil {
		return t.focused
	}
	from, ok := t.lastLayout[t.focused]
	if !ok {
		return t.focused
	}

	best := ""
	bestOverlap := -1.0
	bestDist := 0.0
	for id, r := range t.lastLayout {
		if id == t.focused || !inHalfPlane(from, r, dir) {
			continue
		}
		overlap := perpOverlap(from, r, dir)
		dist := axisDistance(from, r, dir)
		if overlap > bestOverlap || (overlap == bestOverlap && dist < bestDist) {
			best = id
			bestOverlap = overlap
			bestDist = dist
		}
	}
	if best != "" {
		t.focused = best
	}
	return t.focused
}

func inHalfPlane(from, to Rect, dir NavDirection) bool {
	switch dir {
	case Left:
		return to.centerX() < from.centerX()
	case Right:
		return to.centerX() > from.centerX()
	case Up:
		return to.centerY() < from.centerY()
	default:
		return to.centerY() > from.centerY()
	}
}

// perpOverlap measures shared extent on the axis perpendicular to travel.
func perpOverlap(a, b Rect, dir NavDirection) float64 {
	if dir == Left || dir == Right {
		lo := maxInt(a.Y, b.Y)
		hi := minInt(a.Y+a.H, b.Y+b.H)
		return float64(hi - lo)
	}
	lo := maxInt(a.X, b.X)
	hi := minInt(a.X+a.W, b.X+b.W)
	return float64(hi - lo)
}

func axisDistance(a, b Rect, dir NavDirection) float64 {
	if dir == Left || dir == Right {
		d := a.centerX() - b.centerX()
		if d < 0 {
			d = -d
		}
		return d
	}
	d := a.centerY() - b.centerY()
	if d < 0 {
		d = -d
	}
	return d
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
