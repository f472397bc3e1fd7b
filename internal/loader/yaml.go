package loader

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sansstate/internal/bag"
)

var yamlLine = regexp.MustCompile(`line (\d+)`)

func parseYAML(name string, data []byte) (bag.Bag, positions, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		le := &LoadError{File: name, Code: CodeSyntax, Message: err.Error(), Err: err}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			le.Pos.Line, _ = strconv.Atoi(m[1])
			le.Pos.Col = 1
		}
		return nil, nil, le
	}
	if len(doc.Content) == 0 {
		return nil, nil, &LoadError{File: name, Code: CodeShape, Message: "empty document"}
	}

	ps := make(positions)
	root := doc.Content[0]
	v, err := yamlValue(name, "", root, ps)
	if err != nil {
		return nil, nil, err
	}
	b, ok := v.(bag.Bag)
	if !ok {
		return nil, nil, &LoadError{File: name, Pos: yamlPos(root), Code: CodeShape, Message: "document must be a mapping"}
	}
	return b, ps, nil
}

func yamlValue(name, path string, n *yaml.Node, ps positions) (bag.Value, error) {
	if n.Kind == yaml.AliasNode {
		return yamlValue(name, path, n.Alias, ps)
	}
	if path != "" {
		ps[path] = yamlPos(n)
	}

	switch n.Kind {
	case yaml.MappingNode:
		out := make(bag.Bag, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.ShortTag() == "!!merge" {
				return nil, yamlError(name, k, CodeValue, "merge keys are not supported")
			}
			var key string
			if err := k.Decode(&key); err != nil {
				return nil, yamlError(name, k, CodeValue, "mapping key must be a string")
			}
			child, err := yamlValue(name, join(path, key), v, ps)
			if err != nil {
				return nil, err
			}
			out[key] = child
		}
		return out, nil

	case yaml.SequenceNode:
		out := make(bag.List, 0, len(n.Content))
		for i, elem := range n.Content {
			child, err := yamlValue(name, join(path, strconv.Itoa(i)), elem, ps)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
		return out, nil

	case yaml.ScalarNode:
		return yamlScalar(name, path, n)

	default:
		return nil, yamlError(name, n, CodeValue, fmt.Sprintf("%s: unsupported YAML node", path))
	}
}

func yamlScalar(name, path string, n *yaml.Node) (bag.Value, error) {
	switch n.ShortTag() {
	case "!!str":
		return bag.String(n.Value), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, yamlError(name, n, CodeValue, fmt.Sprintf("%s: %v", path, err))
		}
		return bag.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, yamlError(name, n, CodeValue, fmt.Sprintf("%s: %v", path, err))
		}
		return bag.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, yamlError(name, n, CodeValue, fmt.Sprintf("%s: %v", path, err))
		}
		return bag.Float(f), nil
	case "!!null":
		return nil, yamlError(name, n, CodeValue, fmt.Sprintf("%s: null has no property bag equivalent", path))
	default:
		return nil, yamlError(name, n, CodeValue, fmt.Sprintf("%s: unsupported tag %s", path, n.ShortTag()))
	}
}

func yamlPos(n *yaml.Node) Pos {
	return Pos{Line: n.Line, Col: n.Column}
}

func yamlError(name string, n *yaml.Node, code, msg string) error {
	return &LoadError{File: name, Pos: yamlPos(n), Code: code, Message: msg}
}
