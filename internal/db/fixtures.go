package db

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/wwsheet/internal/model"
)

// Fixtures is the YAML document loaded by the memory backend and the CLI:
// a list of entities and an item catalog keyed by reference.
type Fixtures struct {
	Entities []*model.Entity
	Catalog  Catalog
}

// LoadFixtures reads a fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures %s: %w", path, err)
	}
	fx, err := ParseFixtures(data)
	if err != nil {
		return nil, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return fx, nil
}

// ParseFixtures decodes a fixtures document. Fields absent from an entity
// keep the defaults of its kind.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var raw struct {
		Entities []yaml.Node          `yaml:"entities"`
		Catalog  map[string]model.Item `yaml:"catalog"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}

	fx := &Fixtures{Catalog: Catalog(raw.Catalog)}
	if fx.Catalog == nil {
		fx.Catalog = Catalog{}
	}
	for i := range raw.Entities {
		e, err := decodeEntityNode(&raw.Entities[i])
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		fx.Entities = append(fx.Entities, e)
	}
	return fx, nil
}

// LoadEntity reads a single entity document.
func LoadEntity(path string) (*model.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading entity %s: %w", path, err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing entity %s: %w", path, err)
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = *node.Content[0]
	}
	e, err := decodeEntityNode(&node)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", path, err)
	}
	return e, nil
}

func decodeEntityNode(node *yaml.Node) (*model.Entity, error) {
	var head struct {
		Kind model.ActorKind `yaml:"kind"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, fmt.Errorf("decoding kind: %w", err)
	}
	if !head.Kind.Valid() {
		return nil, fmt.Errorf("unknown kind %q", head.Kind)
	}

	e := model.NewEntity("", "", head.Kind)
	if err := node.Decode(e); err != nil {
		return nil, fmt.Errorf("decoding entity: %w", err)
	}
	e.Normalize()
	return e, nil
}

// Catalog resolves granted item references from a static map.
type Catalog map[string]model.Item

// Lookup returns a copy of the referenced item.
func (c Catalog) Lookup(ref string) (model.Item, error) {
	it, ok := c[ref]
	if !ok {
		return model.Item{}, fmt.Errorf("catalog item %s: %w", ref, model.ErrNotFound)
	}
	return it.Clone(), nil
}
