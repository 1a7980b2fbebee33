// Package design defines the result of evaluating a facet script: the
// named shapes it built and the named selections it made from them.
// A Design is produced fresh by each evaluation and not mutated afterwards.
package design

import (
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/selector"
)

// Defaults contains design-wide settings applied to selections that do not
// override them.
type Defaults struct {
	Tolerance float64          `json:"tolerance"`
	Kind      kernel.ShapeKind `json:"kind"`
}

// ShapeNode is a named shape.
type ShapeNode struct {
	Name  string       `json:"name"`
	Shape kernel.Shape `json:"-"`
}

// Selection records a query and the entities it selected.
type Selection struct {
	Name      string          `json:"name"`
	Query     string          `json:"query"`
	Tolerance float64         `json:"tolerance"`
	Entities  []kernel.Entity `json:"-"`
}

// Design holds every shape and selection a script defined.
type Design struct {
	Shapes     map[string]*ShapeNode `json:"shapes"`
	Order      []string              `json:"order"` // shape names in definition order, repeats kept
	Selections []*Selection          `json:"selections"`
	NameIndex  map[string]int        `json:"name_index"` // selection name -> index in Selections
	Defaults   Defaults              `json:"defaults"`
}

// New creates an empty Design with default settings.
func New() *Design {
	return &Design{
		Shapes:    make(map[string]*ShapeNode),
		NameIndex: make(map[string]int),
		Defaults: Defaults{
			Tolerance: selector.DefaultTolerance,
			Kind:      kernel.KindFace,
		},
	}
}

// AddShape registers a shape. A later shape with the same name replaces the
// earlier one; Validate reports the redefinition.
func (d *Design) AddShape(n *ShapeNode) {
	d.Shapes[n.Name] = n
	d.Order = append(d.Order, n.Name)
}

// Lookup returns the shape with the given name, or nil.
func (d *Design) Lookup(name string) *ShapeNode {
	return d.Shapes[name]
}

// MustLookup returns the shape with the given name, or panics.
func (d *Design) MustLookup(name string) *ShapeNode {
	n := d.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("design: no shape named %q", name))
	}
	return n
}

// AddSelection appends a selection. Anonymous selections are kept but not
// indexed.
func (d *Design) AddSelection(s *Selection) {
	d.Selections = append(d.Selections, s)
	if s.Name != "" {
		d.NameIndex[s.Name] = len(d.Selections) - 1
	}
}

// Selection returns the most recent selection with the given name, or nil.
func (d *Design) Selection(name string) *Selection {
	i, ok := d.NameIndex[name]
	if !ok {
		return nil
	}
	return d.Selections[i]
}

// ShapeCount returns the number of distinct shape names.
func (d *Design) ShapeCount() int {
	return len(d.Shapes)
}
