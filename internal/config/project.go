// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AddDatabase appends d to the databases list of the project file at path,
// creating the file when missing. Existing entries and comments are kept; an
// entry with the same binding is replaced.
func AddDatabase(path string, d Database) error {
	var doc yaml.Node
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: top level must be a mapping", path)
	}

	var list *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "databases" {
			list = root.Content[i+1]
			break
		}
	}
	if list == nil {
		list = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "databases"}, list)
	}
	if list.Kind != yaml.SequenceNode {
		return fmt.Errorf("%s: databases must be a list", path)
	}

	var entry yaml.Node
	if err := entry.Encode(d); err != nil {
		return err
	}
	replaced := false
	for i, item := range list.Content {
		var existing Database
		if err := item.Decode(&existing); err == nil && existing.Binding == d.Binding && d.Binding != "" {
			list.Content[i] = &entry
			replaced = true
		}
	}
	if !replaced {
		list.Content = append(list.Content, &entry)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
