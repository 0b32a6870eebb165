package store

import (
	"fmt"

	"radiologi/xa-dose/internal/rules"

	"gopkg.in/yaml.v3"
)

// Top-level keys of a rule table asset.
const (
	keyName        = "name"
	keyVersion     = "version"
	keyDescription = "description"
	keyRules       = "rules"
	keyMapping     = "mapping"
)

// Asset is a parsed rule table file.
type Asset struct {
	Name        string
	Version     string
	Description string
	Source      string
	Rules       []rules.Rule
}

// Table builds the immutable rule table described by the asset.
func (a Asset) Table() *rules.Table {
	return rules.NewTable(a.Name, a.Version, a.Rules).WithSource(a.Source)
}

// ParseAsset decodes a rule table asset. Rules come either from an ordered "rules" list of
// key/category pairs or from a "mapping" of key to category; exactly one must be non-empty.
// The YAML is walked node by node so that authoring order and line numbers are kept.
func ParseAsset(data []byte, source string) (Asset, error) {
	asset := Asset{Source: source}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return asset, fmt.Errorf("error parsing rule table %s: %w", source, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return asset, fmt.Errorf("rule table %s is empty", source)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return asset, fmt.Errorf("rule table %s: line %d: expected a mapping at the top level", source, root.Line)
	}

	var listRules, mappingRules []rules.Rule
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		var err error
		switch key.Value {
		case keyName:
			asset.Name, err = scalar(value, keyName)
		case keyVersion:
			asset.Version, err = scalar(value, keyVersion)
		case keyDescription:
			asset.Description, err = scalar(value, keyDescription)
		case keyRules:
			listRules, err = parseRuleList(value)
		case keyMapping:
			mappingRules, err = parseMapping(value)
		default:
			err = fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
		}
		if err != nil {
			return asset, fmt.Errorf("rule table %s: %w", source, err)
		}
	}

	if asset.Name == "" {
		return asset, fmt.Errorf("rule table %s: missing %q", source, keyName)
	}
	switch {
	case len(listRules) > 0 && len(mappingRules) > 0:
		return asset, fmt.Errorf("rule table %s: only one of %q and %q may be given", source, keyRules, keyMapping)
	case len(listRules) > 0:
		asset.Rules = listRules
	default:
		// An empty mapping is reported by validation, not here.
		asset.Rules = mappingRules
	}
	return asset, nil
}

func scalar(node *yaml.Node, field string) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: %q must be a scalar", node.Line, field)
	}
	return node.Value, nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

// parseRuleList reads "- key: ... category: ..." entries.
func parseRuleList(node *yaml.Node) ([]rules.Rule, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: %q must be a list", node.Line, keyRules)
	}
	out := make([]rules.Rule, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: rule must be a mapping with key and category", item.Line)
		}
		var raw, label string
		var hasKey, hasLabel bool
		for i := 0; i+1 < len(item.Content); i += 2 {
			field, value := item.Content[i], item.Content[i+1]
			var err error
			switch field.Value {
			case "key":
				raw, err = scalar(value, "key")
				hasKey = true
			case "category":
				label, err = scalar(value, "category")
				hasLabel = true
			default:
				err = fmt.Errorf("line %d: unknown rule field %q", field.Line, field.Value)
			}
			if err != nil {
				return nil, err
			}
		}
		if !hasKey || !hasLabel {
			return nil, fmt.Errorf("line %d: rule needs both key and category", item.Line)
		}
		rule := rules.NewRule(raw, label)
		rule.Line = item.Line
		out = append(out, rule)
	}
	return out, nil
}

// parseMapping reads "key: category" pairs in authoring order.
func parseMapping(node *yaml.Node) ([]rules.Rule, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: %q must be a mapping of key to category", node.Line, keyMapping)
	}
	out := make([]rules.Rule, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		raw, err := scalar(key, "key")
		if err != nil {
			return nil, err
		}
		label, err := scalar(value, "category")
		if err != nil {
			return nil, err
		}
		rule := rules.NewRule(raw, label)
		rule.Line = key.Line
		out = append(out, rule)
	}
	return out, nil
}
