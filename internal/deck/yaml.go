package deck

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes the YAML form of the deck format. It mirrors the JSON
// shape; the subsets mapping is read from the node tree to keep its order.
func ParseYAML(data []byte) (*Deck, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	d := &Deck{}
	if len(root.Content) == 0 {
		return d, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at the top level")
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "settings":
			if err := val.Decode(&d.Settings); err != nil {
				return nil, fmt.Errorf("settings: %w", err)
			}
		case "subsets":
			subsets, err := yamlSubsets(val)
			if err != nil {
				return nil, err
			}
			d.Subsets = subsets
		}
	}
	return d, nil
}

func yamlSubsets(node *yaml.Node) ([]Subset, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: subsets: expected a mapping", node.Line)
	}

	var subsets []Subset
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var segments []Segment
		if err := node.Content[i+1].Decode(&segments); err != nil {
			return nil, fmt.Errorf("subset %q: %w", name, err)
		}
		subsets = append(subsets, Subset{Name: name, Segments: segments})
	}
	return subsets, nil
}
