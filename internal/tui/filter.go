package tui

import (
	"sort"

	"github.com/petrijr/sessionflow/pkg/api"
)

type filterKind int

const (
	filterStatus filterKind = iota
	filterSchema
)

type filterRow struct {
	kind  filterKind
	value string
	label string
}

// filterSheet offers every status and schema present in the candidates as
// a checkbox.
type filterSheet struct {
	rows    []filterRow
	checked map[int]bool
	cursor  int
}

func newFilterSheet(creds []api.Credential) filterSheet {
	statuses := map[string]struct{}{}
	schemas := map[string]string{}
	for _, c := range creds {
		if c.Status != "" {
			statuses[c.Status] = struct{}{}
		}
		if c.SchemaIdentifier != "" {
			schemas[c.SchemaIdentifier] = c.Schema
		}
	}

	var rows []filterRow
	for _, s := range sortedSet(statuses) {
		rows = append(rows, filterRow{kind: filterStatus, value: s, label: s})
	}
	ids := make([]string, 0, len(schemas))
	for id := range schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		label := schemas[id]
		if label == "" {
			label = id
		}
		rows = append(rows, filterRow{kind: filterSchema, value: id, label: label})
	}
	return filterSheet{rows: rows, checked: map[int]bool{}}
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (f *filterSheet) up() {
	if f.cursor > 0 {
		f.cursor--
	}
}

func (f *filterSheet) down() {
	if f.cursor < len(f.rows)-1 {
		f.cursor++
	}
}

func (f *filterSheet) toggle() {
	if len(f.rows) == 0 {
		return
	}
	f.checked[f.cursor] = !f.checked[f.cursor]
}

// selection returns the checked rows. Nothing checked means no filter.
func (f *filterSheet) selection() *api.FilterSelection {
	var statuses, schemas []string
	for i, r := range f.rows {
		if !f.checked[i] {
			continue
		}
		if r.kind == filterStatus {
			statuses = append(statuses, r.value)
		} else {
			schemas = append(schemas, r.value)
		}
	}
	return api.NewFilterSelection(statuses, schemas)
}
