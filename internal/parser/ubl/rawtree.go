package ubl

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
)

// Document container roots accepted by the tree builder. SUNAT issues
// credit and debit notes under their own UBL root elements.
var containerRoots = map[string]bool{
	"Invoice":    true,
	"CreditNote": true,
	"DebitNote":  true,
}

// RawNode mirrors one XML element after namespace-prefix stripping. A node
// is either a leaf carrying text or a branch carrying named children; an
// element with both attributes and text keeps the text alongside so it is
// not lost. The tree is built once per document and never mutated.
type RawNode struct {
	Text     string
	Attrs    map[string]string
	Children map[string]*Entry
}

// Entry holds either a single child or an ordered repetition of the same
// tag under one parent. The source schema leaves cardinality open, so a tag
// may appear once or many times; Seq is the single coercion point and call
// sites never branch on the two shapes themselves.
type Entry struct {
	Node  *RawNode
	Nodes []*RawNode
}

// Seq coerces an entry into a sequence: repeated tags yield their nodes in
// document order, a single occurrence yields a one-element sequence, and a
// missing entry yields nil.
func (e *Entry) Seq() []*RawNode {
	if e == nil {
		return nil
	}
	if len(e.Nodes) > 0 {
		return e.Nodes
	}
	if e.Node != nil {
		return []*RawNode{e.Node}
	}
	return nil
}

// BuildTree parses UBL XML text into a RawNode tree. It fails on malformed
// XML and on root elements that are not a recognized document container;
// everything below the root is converted without further validation.
func BuildTree(xmlText string) (*RawNode, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlText); err != nil {
		return nil, model.NewParseError(model.ErrMalformedXML, "xml", "input is not well-formed XML", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, model.NewParseError(model.ErrMalformedXML, "xml", "document has no root element", nil)
	}
	if !containerRoots[root.Tag] {
		return nil, model.NewParseError(model.ErrUnsupportedRoot, "root", "unexpected root element <"+root.Tag+">", nil)
	}

	return convertElement(root), nil
}

// convertElement maps one etree element to a RawNode. etree already splits
// the cbc:/cac: prefix into Space, so Tag is the local name.
func convertElement(el *etree.Element) *RawNode {
	node := &RawNode{}

	for _, a := range el.Attr {
		if node.Attrs == nil {
			node.Attrs = make(map[string]string, len(el.Attr))
		}
		key := a.Key
		if a.Space == "xmlns" || a.Key == "xmlns" {
			// Namespace declarations are renamed so they cannot collide
			// with a child tag carrying the same local name.
			key = "xmlns_" + a.Key
		}
		node.Attrs[key] = a.Value
	}

	children := el.ChildElements()
	if len(children) == 0 {
		node.Text = strings.TrimSpace(el.Text())
		return node
	}

	if t := strings.TrimSpace(el.Text()); t != "" {
		node.Text = t
	}

	node.Children = make(map[string]*Entry, len(children))
	for _, child := range children {
		converted := convertElement(child)
		entry := node.Children[child.Tag]
		if entry == nil {
			node.Children[child.Tag] = &Entry{Node: converted}
			continue
		}
		if entry.Nodes == nil {
			entry.Nodes = []*RawNode{entry.Node}
			entry.Node = nil
		}
		entry.Nodes = append(entry.Nodes, converted)
	}

	return node
}

// First returns the first child with the given tag, nil when absent.
func (n *RawNode) First(tag string) *RawNode {
	if n == nil || n.Children == nil {
		return nil
	}
	seq := n.Children[tag].Seq()
	if len(seq) == 0 {
		return nil
	}
	return seq[0]
}

// Find walks a path of tags taking the first occurrence at each step.
func (n *RawNode) Find(path ...string) *RawNode {
	cur := n
	for _, tag := range path {
		cur = cur.First(tag)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Str returns the text of the leaf at the given path, or "".
func (n *RawNode) Str(path ...string) string {
	found := n.Find(path...)
	if found == nil {
		return ""
	}
	return found.Text
}

// Attr returns the named attribute, or "".
func (n *RawNode) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Seq coerces the named child into a sequence; see Entry.Seq.
func (n *RawNode) Seq(tag string) []*RawNode {
	if n == nil || n.Children == nil {
		return nil
	}
	return n.Children[tag].Seq()
}
