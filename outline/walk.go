package outline

import (
	"fmt"
	"io"
	"strings"
)

// Walk visits nodes depth-first in document order. Returning false from fn
// skips the node's children.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int) bool) {
	for _, n := range nodes {
		if fn(n, depth) {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Count returns the number of nodes in the outline, markers included.
func Count(nodes []*Node) int {
	count := 0
	Walk(nodes, func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Depth returns the number of levels in the outline; 0 for an empty one.
func Depth(nodes []*Node) int {
	depth := 0
	Walk(nodes, func(_ *Node, d int) bool {
		depth = max(depth, d+1)
		return true
	})
	return depth
}

// Format writes the outline as an indented list, one node per line.
func Format(w io.Writer, nodes []*Node) error {
	var err error
	Walk(nodes, func(n *Node, depth int) bool {
		if err != nil {
			return false
		}
		line := fmt.Sprintf("%s%s [%s] L%d", strings.Repeat("  ", depth), n.Name, n.Kind, n.Range.Start.Line+1)
		if n.Detail != "" {
			line += " (" + n.Detail + ")"
		}
		_, err = fmt.Fprintln(w, line)
		return true
	})
	return err
}
