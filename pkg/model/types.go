package model

import (
	"fmt"

	"github.com/vanderheijden86/treetable/pkg/tree"
)

// Record is one flat row as stored by the console backend: a menu entry that
// points at its parent by id.
type Record struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Title    string `json:"title" yaml:"title"`
	Kind     Kind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Route    string `json:"route,omitempty" yaml:"route,omitempty"`
	Icon     string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Position int    `json:"position,omitempty" yaml:"position,omitempty"`
}

// Validate checks if the record is usable
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record ID cannot be empty")
	}
	if r.Title == "" {
		return fmt.Errorf("record %s: title cannot be empty", r.ID)
	}
	if r.Kind != "" && !r.Kind.IsValid() {
		return fmt.Errorf("record %s: invalid kind: %s", r.ID, r.Kind)
	}
	return nil
}

// Kind categorizes a menu entry
type Kind string

const (
	KindGroup  Kind = "group"  // Container with no route of its own
	KindPage   Kind = "page"   // Navigates to a screen
	KindAction Kind = "action" // Triggers a command
	KindLink   Kind = "link"   // External URL
)

// IsValid returns true if the kind is a recognized value
func (k Kind) IsValid() bool {
	switch k {
	case KindGroup, KindPage, KindAction, KindLink:
		return true
	}
	return false
}

// Menu is a navigation entry with its nested sub-entries.
type Menu struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Title    string `json:"title" yaml:"title"`
	Kind     Kind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Route    string `json:"route,omitempty" yaml:"route,omitempty"`
	Icon     string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Position int    `json:"position,omitempty" yaml:"position,omitempty"`
	Children []Menu `json:"children,omitempty" yaml:"children,omitempty"`
}

// Label is the text shown for the menu in a grid row
func (m Menu) Label() string {
	if m.Route == "" {
		return m.Title
	}
	return m.Title + "  " + m.Route
}

// MenuAccessor reads menus for the tree engine
var MenuAccessor = tree.AccessorFuncs[Menu, string]{
	IDFunc:       func(m Menu) string { return m.ID },
	ChildrenFunc: func(m Menu) []Menu { return m.Children },
}

// BusinessUnit is an organizational unit. Sub-units live under Units rather
// than Children, which is why the engine takes an accessor.
type BusinessUnit struct {
	Code       string         `json:"code" yaml:"code"`
	Name       string         `json:"name" yaml:"name"`
	ParentCode string         `json:"parent_code,omitempty" yaml:"parent_code,omitempty"`
	Manager    string         `json:"manager,omitempty" yaml:"manager,omitempty"`
	Units      []BusinessUnit `json:"units,omitempty" yaml:"units,omitempty"`
}

// Validate checks the unit and all of its sub-units
func (u *BusinessUnit) Validate() error {
	if u.Code == "" {
		return fmt.Errorf("business unit code cannot be empty")
	}
	if u.Name == "" {
		return fmt.Errorf("business unit %s: name cannot be empty", u.Code)
	}
	for i := range u.Units {
		if err := u.Units[i].Validate(); err != nil {
			return fmt.Errorf("%s: %w", u.Code, err)
		}
	}
	return nil
}

// Label is the text shown for the unit in a grid row
func (u BusinessUnit) Label() string {
	if u.Manager == "" {
		return u.Name
	}
	return u.Name + " (" + u.Manager + ")"
}

// UnitAccessor reads business units for the tree engine
var UnitAccessor = tree.AccessorFuncs[BusinessUnit, string]{
	IDFunc:       func(u BusinessUnit) string { return u.Code },
	ChildrenFunc: func(u BusinessUnit) []BusinessUnit { return u.Units },
}
