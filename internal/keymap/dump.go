package keymap

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/char5742/wii2gamepad/internal/wiimote"
)

type dumpIdentity struct {
	Name    string `yaml:"name"`
	Vendor  string `yaml:"vendor"`
	Product string `yaml:"product"`
}

type dumpSection struct {
	Identity dumpIdentity      `yaml:"identity"`
	Bindings map[string]string `yaml:"bindings,omitempty"`
}

// Dump は解決済みのキーマップを YAML で書き出す
func Dump(w io.Writer, r *Registry) error {
	doc := yaml.Node{Kind: yaml.MappingNode}
	for _, kind := range Kinds {
		var section yaml.Node
		if err := section.Encode(r.section(kind)); err != nil {
			return fmt.Errorf("%s セクションの変換に失敗しました: %w", kind, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kind.String()},
			&section,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

func (r *Registry) section(kind Kind) dumpSection {
	id := r.Identity(kind)
	s := dumpSection{
		Identity: dumpIdentity{
			Name:    id.Name,
			Vendor:  fmt.Sprintf("0x%04x", id.Vendor),
			Product: fmt.Sprintf("0x%04x", id.Product),
		},
	}

	table := r.Table(kind)
	for key := wiimote.Key(0); key < wiimote.KeyNum; key++ {
		b, ok := table.Lookup(key)
		if !ok {
			continue
		}
		if s.Bindings == nil {
			s.Bindings = make(map[string]string)
		}
		s.Bindings[key.String()] = b.String()
	}
	return s
}
