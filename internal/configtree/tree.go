// File: internal/configtree/tree.go
// Brief: Ordered, arbitrarily-shaped config values.

// Package configtree models the dynamic configuration values pulumiw merges:
// a tagged union of scalar, sequence, and mapping, where mappings keep their
// document key order so generated files stay reproducible.
package configtree

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type Kind int

const (
	Scalar Kind = iota
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Tree is one node of a configuration document. Exactly one of the value
// fields is meaningful, selected by Kind. A nil *Tree is a valid empty
// mapping for callers that tolerate absent input.
type Tree struct {
	Kind  Kind
	Value any      // Scalar: string, bool, int, float64, nil, ...
	Items []*Tree  // Sequence
	Pairs []Pair   // Mapping, in document order
}

// Pair is one mapping entry.
type Pair struct {
	Key   string
	Value *Tree
}

// NewMapping returns an empty mapping tree.
func NewMapping() *Tree {
	return &Tree{Kind: Mapping}
}

func NewScalar(v any) *Tree {
	return &Tree{Kind: Scalar, Value: v}
}

// IsMapping reports whether t is a mapping; a nil tree counts as an empty one.
func (t *Tree) IsMapping() bool {
	return t == nil || t.Kind == Mapping
}

// Len returns the number of entries or items in t.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case Mapping:
		return len(t.Pairs)
	case Sequence:
		return len(t.Items)
	default:
		return 1
	}
}

// Get looks up a top-level key in a mapping tree.
func (t *Tree) Get(key string) (*Tree, bool) {
	if t == nil || t.Kind != Mapping {
		return nil, false
	}
	for _, p := range t.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Keys returns the top-level mapping keys in document order.
func (t *Tree) Keys() []string {
	if t == nil || t.Kind != Mapping {
		return nil
	}
	keys := make([]string, 0, len(t.Pairs))
	for _, p := range t.Pairs {
		keys = append(keys, p.Key)
	}
	return keys
}

// Without returns a copy of a mapping tree with the named key removed.
func (t *Tree) Without(key string) *Tree {
	if t == nil || t.Kind != Mapping {
		return t.Clone()
	}
	out := &Tree{Kind: Mapping, Pairs: make([]Pair, 0, len(t.Pairs))}
	for _, p := range t.Pairs {
		if p.Key == key {
			continue
		}
		out.Pairs = append(out.Pairs, Pair{Key: p.Key, Value: p.Value.Clone()})
	}
	return out
}

// Clone returns a deep copy. Merging never mutates its inputs, so everything
// handed out of this package is cloned.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{Kind: t.Kind, Value: t.Value}
	if len(t.Items) > 0 {
		out.Items = make([]*Tree, len(t.Items))
		for i, item := range t.Items {
			out.Items[i] = item.Clone()
		}
	}
	if len(t.Pairs) > 0 {
		out.Pairs = make([]Pair, len(t.Pairs))
		for i, p := range t.Pairs {
			out.Pairs[i] = Pair{Key: p.Key, Value: p.Value.Clone()}
		}
	}
	return out
}

// UnmarshalYAML decodes an arbitrary YAML node, keeping mapping key order.
func (t *Tree) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode:
		t.Kind = Mapping
		t.Pairs = make([]Pair, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var key string
			if err := node.Content[i].Decode(&key); err != nil {
				return fmt.Errorf("decode mapping key at line %d: %w", node.Content[i].Line, err)
			}
			val := new(Tree)
			if err := node.Content[i+1].Decode(val); err != nil {
				return err
			}
			t.Pairs = append(t.Pairs, Pair{Key: key, Value: val})
		}
	case yaml.SequenceNode:
		t.Kind = Sequence
		t.Items = make([]*Tree, 0, len(node.Content))
		for _, c := range node.Content {
			item := new(Tree)
			if err := c.Decode(item); err != nil {
				return err
			}
			t.Items = append(t.Items, item)
		}
	case yaml.ScalarNode:
		t.Kind = Scalar
		return node.Decode(&t.Value)
	case 0:
		// Empty document: treat as an empty mapping.
		t.Kind = Mapping
	default:
		return fmt.Errorf("unsupported YAML node kind %d at line %d", node.Kind, node.Line)
	}
	return nil
}

// MarshalYAML re-encodes the tree as a yaml.Node so mapping order survives.
func (t *Tree) MarshalYAML() (any, error) {
	return t.toNode()
}

func (t *Tree) toNode() (*yaml.Node, error) {
	if t == nil {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	switch t.Kind {
	case Mapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range t.Pairs {
			keyNode := &yaml.Node{}
			if err := keyNode.Encode(p.Key); err != nil {
				return nil, err
			}
			valNode, err := p.Value.toNode()
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, keyNode, valNode)
		}
		return node, nil
	case Sequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t.Items {
			c, err := item.toNode()
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, c)
		}
		return node, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(t.Value); err != nil {
			return nil, err
		}
		return node, nil
	}
}

// Parse decodes a YAML document into a Tree. An empty document yields an
// empty mapping.
func Parse(data []byte) (*Tree, error) {
	t := new(Tree)
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, err
	}
	if t.Kind == Scalar && t.Value == nil {
		// yaml.Unmarshal turns a whitespace-only document into a null scalar.
		return NewMapping(), nil
	}
	return t, nil
}
