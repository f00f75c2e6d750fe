package outline

// tree is the insertion state of one Build call.
//
// previousLevel is the level of the last inserted heading and parent is
// the node that heading was appended under (nil for the root slice).
// Headings deeper than the previous one nest one step below it whatever
// the numeric gap; shallower ones are placed by walking down from the last
// root, stopping early where the tree is not yet that deep.
type tree struct {
	roots         []*Node
	previousLevel int
	parent        *Node
}

func newTree() *tree {
	return &tree{
		roots:         []*Node{},
		previousLevel: 1,
	}
}

// appendMarker adds a top/end of file marker. Markers do not touch the
// level state, but later headings can still nest under them.
func (t *tree) appendMarker(n *Node) {
	t.roots = append(t.roots, n)
}

func (t *tree) insert(n *Node) {
	level := n.Level

	switch {
	case level == t.previousLevel:
		t.appendTo(t.parent, n)

	case level > t.previousLevel:
		// With nothing to nest under yet, stay at the current level.
		if under := lastChild(t.roots, t.parent); under != nil {
			t.parent = under
		}
		t.appendTo(t.parent, n)

	case level == 1:
		t.parent = nil
		t.appendTo(nil, n)

	default:
		t.descend(n, level-2)
	}

	t.previousLevel = level
}

// descend walks steps levels down from the last root, following the last
// child each time, and appends n where the walk stops.
func (t *tree) descend(n *Node, steps int) {
	cur := lastChild(t.roots, nil)
	if cur == nil {
		t.parent = nil
		t.appendTo(nil, n)
		return
	}
	for ; steps > 0 && len(cur.Children) > 0; steps-- {
		cur = cur.Children[len(cur.Children)-1]
	}
	t.parent = cur
	t.appendTo(cur, n)
}

func (t *tree) appendTo(parent, n *Node) {
	if parent == nil {
		t.roots = append(t.roots, n)
		return
	}
	parent.Children = append(parent.Children, n)
}
