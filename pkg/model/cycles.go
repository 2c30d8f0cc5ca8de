package model

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// FindCycles returns the groups of record ids whose parent links form a
// loop, each group sorted, groups ordered by their first id. A record that
// names itself as parent is reported as a group of one.
func FindCycles(records []Record) [][]string {
	if len(records) == 0 {
		return nil
	}

	ids := make(map[string]int64, len(records))
	names := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := ids[r.ID]; ok {
			continue
		}
		ids[r.ID] = int64(len(names))
		names = append(names, r.ID)
	}

	var cycles [][]string
	g := simple.NewDirectedGraph()
	for _, id := range ids {
		g.AddNode(simple.Node(id))
	}
	linked := make(map[string]bool, len(records))
	for _, r := range records {
		if linked[r.ID] {
			continue
		}
		linked[r.ID] = true
		parent, ok := ids[r.ParentID]
		if !ok || r.ParentID == "" {
			continue
		}
		child := ids[r.ID]
		if child == parent {
			// simple graphs reject self edges
			cycles = append(cycles, []string{r.ID})
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(child), simple.Node(parent)))
	}

	for _, component := range topo.TarjanSCC(g) {
		if len(component) < 2 {
			continue
		}
		group := make([]string, len(component))
		for i, n := range component {
			group[i] = names[n.ID()]
		}
		sort.Strings(group)
		cycles = append(cycles, group)
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}
