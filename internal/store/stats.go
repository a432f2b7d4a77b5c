package store

import (
	"context"
	"sort"
	"time"
)

// Stats holds history statistics.
type Stats struct {
	DBPath       string          `json:"dbPath,omitempty"`
	DBSizeBytes  int64           `json:"dbSizeBytes"`
	ImageBytes   int64           `json:"imageBytes"`
	TotalRecords int             `json:"totalRecords"`
	BySeverity   map[string]int  `json:"bySeverity"`
	TreeTypes    []TreeTypeStats `json:"treeTypes"`
	Newest       *time.Time      `json:"newest,omitempty"`
	Oldest       *time.Time      `json:"oldest,omitempty"`
}

// TreeTypeStats holds per-tree-type counts.
type TreeTypeStats struct {
	TreeType string `json:"treeType"`
	Count    int    `json:"count"`
}

// Stats returns record statistics. Storage sizes are filled in by the
// caller, which owns the database and image locations.
func (s *RecordStore) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		TotalRecords: len(records),
		BySeverity:   map[string]int{},
	}

	byTree := map[string]int{}
	for i, r := range records {
		st.BySeverity[string(r.Severity)]++
		tree := r.TreeType
		if tree == "" {
			tree = "unknown"
		}
		byTree[tree]++

		d := records[i].Date
		if st.Newest == nil || d.After(*st.Newest) {
			st.Newest = &d
		}
		if st.Oldest == nil || d.Before(*st.Oldest) {
			st.Oldest = &d
		}
	}

	for tree, n := range byTree {
		st.TreeTypes = append(st.TreeTypes, TreeTypeStats{TreeType: tree, Count: n})
	}
	sort.Slice(st.TreeTypes, func(i, j int) bool {
		if st.TreeTypes[i].Count != st.TreeTypes[j].Count {
			return st.TreeTypes[i].Count > st.TreeTypes[j].Count
		}
		return st.TreeTypes[i].TreeType < st.TreeTypes[j].TreeType
	})

	return st, nil
}
