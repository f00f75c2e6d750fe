// Package outline builds a tree of headings from a document by matching
// its lines against per-level rules.
package outline

import (
	"fmt"

	"github.com/joeychilson/regexpoutline/document"
)

// Kind is the display kind of a node, derived from its heading level.
type Kind int

const (
	KindFile     Kind = iota // level 0: top/end of file markers
	KindPackage              // level 1
	KindClass                // level 2
	KindMethod               // level 3
	KindVariable             // level 4 and deeper
)

var kindNames = [...]string{"file", "package", "class", "method", "variable"}

// KindForLevel maps a heading level to its kind. Levels past 3 share
// KindVariable but keep their own tree depth.
func KindForLevel(level int) Kind {
	switch level {
	case 0:
		return KindFile
	case 1:
		return KindPackage
	case 2:
		return KindClass
	case 3:
		return KindMethod
	default:
		return KindVariable
	}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", text)
}

// Node is one heading in the outline. Every node is owned by exactly one
// parent's Children, or by the root slice.
type Node struct {
	Name           string         `json:"name"`
	Detail         string         `json:"detail"`
	Kind           Kind           `json:"kind"`
	Level          int            `json:"level"`
	Range          document.Range `json:"range"`
	SelectionRange document.Range `json:"selectionRange"`
	Children       []*Node        `json:"children,omitempty"`
}

func newNode(name, detail string, level int, line document.Line) *Node {
	return &Node{
		Name:           name,
		Detail:         detail,
		Kind:           KindForLevel(level),
		Level:          level,
		Range:          line.Range,
		SelectionRange: line.Range,
	}
}

// lastChild returns the most recently appended child of parent, or the last
// root when parent is nil. It returns nil when there is none.
func lastChild(roots []*Node, parent *Node) *Node {
	children := roots
	if parent != nil {
		children = parent.Children
	}
	if len(children) == 0 {
		return nil
	}
	return children[len(children)-1]
}
