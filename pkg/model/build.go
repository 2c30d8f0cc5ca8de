package model

import (
	"sort"
)

// BuildMenus nests flat records into a menu forest using ParentID.
//
// Records whose parent is missing, or who name themselves as parent, become
// roots rather than disappearing. Records stuck in a parent cycle have no
// entry point from a root; the first one in input order is promoted to a
// root so the cycle is still shown. Duplicate ids keep the first record.
// Siblings are ordered by Position, then Title, then ID.
func BuildMenus(records []Record) []Menu {
	if len(records) == 0 {
		return nil
	}

	// Step 1: index records and their children
	byID := make(map[string]*Record, len(records))
	var ordered []*Record
	for i := range records {
		r := &records[i]
		if _, dup := byID[r.ID]; dup {
			continue
		}
		byID[r.ID] = r
		ordered = append(ordered, r)
	}

	childrenOf := make(map[string][]*Record)
	var roots []*Record
	for _, r := range ordered {
		if r.ParentID == "" || r.ParentID == r.ID {
			roots = append(roots, r)
			continue
		}
		if _, ok := byID[r.ParentID]; !ok {
			// Dangling parent reference
			roots = append(roots, r)
			continue
		}
		childrenOf[r.ParentID] = append(childrenOf[r.ParentID], r)
	}

	// Step 2: build from roots
	placed := make(map[string]bool, len(ordered))
	var menus []Menu
	for _, r := range roots {
		menus = append(menus, buildMenu(r, childrenOf, placed))
	}

	// Step 3: anything left is only reachable through a cycle
	for _, r := range ordered {
		if !placed[r.ID] {
			menus = append(menus, buildMenu(r, childrenOf, placed))
		}
	}

	sortMenus(menus)
	return menus
}

func buildMenu(r *Record, childrenOf map[string][]*Record, placed map[string]bool) Menu {
	placed[r.ID] = true
	m := Menu{
		ID:       r.ID,
		ParentID: r.ParentID,
		Title:    r.Title,
		Kind:     r.Kind,
		Route:    r.Route,
		Icon:     r.Icon,
		Position: r.Position,
	}
	for _, child := range childrenOf[r.ID] {
		if placed[child.ID] {
			continue
		}
		m.Children = append(m.Children, buildMenu(child, childrenOf, placed))
	}
	sortMenus(m.Children)
	return m
}

// sortMenus orders siblings by position, title, then id for stable output.
func sortMenus(menus []Menu) {
	if len(menus) <= 1 {
		return
	}
	sort.SliceStable(menus, func(i, j int) bool {
		a, b := menus[i], menus[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}

// Records flattens a menu forest back into parent-linked records, parents
// before children.
func Records(menus []Menu) []Record {
	var out []Record
	var walk func(parent string, ms []Menu)
	walk = func(parent string, ms []Menu) {
		for _, m := range ms {
			pid := m.ParentID
			if parent != "" {
				pid = parent
			}
			out = append(out, Record{
				ID:       m.ID,
				ParentID: pid,
				Title:    m.Title,
				Kind:     m.Kind,
				Route:    m.Route,
				Icon:     m.Icon,
				Position: m.Position,
			})
			walk(m.ID, m.Children)
		}
	}
	walk("", menus)
	return out
}
