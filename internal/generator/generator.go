package generator

import (
	"bytes"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsontree/internal/models"
	"github.com/mcncl/jsontree/node"
)

// Generator is responsible for rendering document trees as YAML
type Generator struct {
	indent int
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{indent: 2}
}

// GenerateYAML renders the tree rooted at root as a YAML document. Member
// order is kept as it appears in the tree.
func (g *Generator) GenerateYAML(root *node.Value) (string, error) {
	if root == nil {
		return "", fmt.Errorf("generate yaml: %w", node.ErrNilValue)
	}
	doc, err := toYAMLNode(root, 0)
	if err != nil {
		return "", err
	}
	return g.encode(doc)
}

// GenerateStats renders document statistics as YAML
func (g *Generator) GenerateStats(stats models.Stats) (string, error) {
	var doc yaml.Node
	if err := doc.Encode(stats); err != nil {
		return "", fmt.Errorf("failed to encode stats: %w", err)
	}
	return g.encode(&doc)
}

func (g *Generator) encode(doc *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(g.indent)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.String(), nil
}

// toYAMLNode converts one tree value into the equivalent yaml.Node
func toYAMLNode(v *node.Value, depth int) (*yaml.Node, error) {
	if depth > node.NestingLimit {
		return nil, fmt.Errorf("generate yaml: %w", node.ErrNestingTooDeep)
	}

	switch v.Kind() {
	case node.KindNull:
		return scalar("!!null", "null"), nil
	case node.KindBool:
		if v.Bool() {
			return scalar("!!bool", "true"), nil
		}
		return scalar("!!bool", "false"), nil
	case node.KindNumber:
		return numberNode(v)
	case node.KindString:
		if v.IsRaw() {
			return rawNode(v.Text()), nil
		}
		return scalar("!!str", v.Text()), nil
	case node.KindArray:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items() {
			child, err := toYAMLNode(item, depth+1)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil
	case node.KindObject:
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for key, member := range v.Members() {
			child, err := toYAMLNode(member, depth+1)
			if err != nil {
				return nil, err
			}
			mapping.Content = append(mapping.Content, scalar("!!str", key), child)
		}
		return mapping, nil
	}
	return nil, fmt.Errorf("generate yaml: %w", node.ErrInvalidKind)
}

func numberNode(v *node.Value) (*yaml.Node, error) {
	text, err := node.PrintUnformatted(v)
	if err != nil {
		return nil, err
	}
	f := v.Number()
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return scalar("!!null", "null"), nil
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return scalar("!!int", text), nil
	}
	return scalar("!!float", text), nil
}

// rawNode decodes raw JSON text as flow YAML. Text that is not a single
// document is kept as a string.
func rawNode(text string) *yaml.Node {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil || len(doc.Content) != 1 {
		return scalar("!!str", text)
	}
	return doc.Content[0]
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
