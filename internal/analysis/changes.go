// Package analysis compares two snapshots of normalized people.
package analysis

import (
	"reflect"

	"pedigree/internal/extractor"
)

// ChangeReport summarizes the people affected between two snapshots.
type ChangeReport struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Changed []string `json:"changed"`
	// Affected are relatives of added, removed or changed people whose own
	// record is unchanged but whose family view may differ.
	Affected []string `json:"affected"`
}

// Empty reports whether nothing changed.
func (r *ChangeReport) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// Analyzer diffs against a baseline snapshot.
type Analyzer struct {
	before map[string]*extractor.Person
	order  []string
}

// NewAnalyzer creates an analyzer with before as the baseline.
func NewAnalyzer(before []*extractor.Person) *Analyzer {
	a := &Analyzer{before: make(map[string]*extractor.Person, len(before))}
	for _, p := range before {
		if _, dup := a.before[p.ID]; !dup {
			a.order = append(a.order, p.ID)
		}
		a.before[p.ID] = p
	}
	return a
}

// AnalyzeChanges compares after with the baseline. Ids keep snapshot order:
// added and changed follow after, removed follows the baseline.
func (a *Analyzer) AnalyzeChanges(after []*extractor.Person) *ChangeReport {
	report := &ChangeReport{
		Added:    []string{},
		Removed:  []string{},
		Changed:  []string{},
		Affected: []string{},
	}

	current := make(map[string]*extractor.Person, len(after))
	direct := make(map[string]bool)

	for _, p := range after {
		current[p.ID] = p
		old, existed := a.before[p.ID]
		switch {
		case !existed:
			report.Added = append(report.Added, p.ID)
			direct[p.ID] = true
		case !reflect.DeepEqual(old, p):
			report.Changed = append(report.Changed, p.ID)
			direct[p.ID] = true
		}
	}
	for _, id := range a.order {
		if _, ok := current[id]; !ok {
			report.Removed = append(report.Removed, id)
			direct[id] = true
		}
	}

	seen := make(map[string]bool)
	visit := func(p *extractor.Person) {
		if p == nil {
			return
		}
		for _, ids := range [][]string{p.ParentIDs, p.SpouseIDs, p.ChildIDs} {
			for _, id := range ids {
				if direct[id] || seen[id] {
					continue
				}
				// Relatives that exist in neither snapshot are dangling links.
				if _, ok := current[id]; !ok {
					if _, ok := a.before[id]; !ok {
						continue
					}
				}
				seen[id] = true
				report.Affected = append(report.Affected, id)
			}
		}
	}
	for _, group := range [][]string{report.Added, report.Changed, report.Removed} {
		for _, id := range group {
			visit(a.before[id])
			visit(current[id])
		}
	}

	return report
}
