// Package manifest holds a parsed MPD document as an immutable arena of
// element nodes addressed by NodeID.
package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// NodeID addresses an element inside a Tree.
type NodeID int

// None is returned by lookups that found nothing.
const None NodeID = -1

// ErrMalformed is returned when the document cannot be turned into a tree.
var ErrMalformed = errors.New("malformed manifest document")

type attr struct {
	name  string
	value string
}

type node struct {
	tag      string
	text     string
	attrs    []attr
	children []NodeID
}

// Tree is a read-only view of an XML document. It is safe for concurrent use.
type Tree struct {
	nodes []node
}

// Parse builds a Tree from XML text.
func Parse(document string) (*Tree, error) {
	doc, err := xmlquery.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var root *xmlquery.Node
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			root = n
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}

	t := &Tree{}
	t.add(root)
	return t, nil
}

// add copies n and its element descendants into the arena, depth first.
// The root always lands at index 0.
func (t *Tree) add(n *xmlquery.Node) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{tag: n.Data})

	attrs := make([]attr, 0, len(n.Attr))
	for _, a := range n.Attr {
		name := a.Name.Local
		if a.Name.Space != "" {
			name = a.Name.Space + ":" + name
		}
		attrs = append(attrs, attr{name: name, value: a.Value})
	}

	var children []NodeID
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			children = append(children, t.add(c))
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(c.Data)
		}
	}

	t.nodes[id].text = strings.TrimSpace(text.String())
	t.nodes[id].attrs = attrs
	t.nodes[id].children = children
	return id
}

// Root returns the document element.
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of elements in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Tag returns the local element name of id.
func (t *Tree) Tag(id NodeID) string {
	return t.nodes[id].tag
}

// Text returns the trimmed character data directly inside id.
func (t *Tree) Text(id NodeID) string {
	return t.nodes[id].text
}

// Attr returns the value of the named attribute and whether it was present.
func (t *Tree) Attr(id NodeID, name string) (string, bool) {
	for _, a := range t.nodes[id].attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// Children returns the element children of id in document order.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// ChildrenByTag returns the element children of id named tag, in document order.
func (t *Tree) ChildrenByTag(id NodeID, tag string) []NodeID {
	var out []NodeID
	for _, c := range t.nodes[id].children {
		if t.nodes[c].tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first element child of id named tag, or None.
func (t *Tree) FirstChild(id NodeID, tag string) NodeID {
	for _, c := range t.nodes[id].children {
		if t.nodes[c].tag == tag {
			return c
		}
	}
	return None
}
