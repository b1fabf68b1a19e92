package flatten

import "sort"

// FieldSet accumulates the union of flattened keys across sample records
// to establish a table's column set.
type FieldSet struct {
	fields map[string]struct{}
}

func NewFieldSet() *FieldSet {
	return &FieldSet{fields: map[string]struct{}{}}
}

func (s *FieldSet) AddRecord(r Record) {
	for key := range Flatten(r) {
		s.fields[key] = struct{}{}
	}
}

func (s *FieldSet) Len() int {
	return len(s.fields)
}

// Sorted returns the discovered keys in lexicographic order. The order is
// the column contract for every row built afterwards.
func (s *FieldSet) Sorted() []string {
	out := make([]string, 0, len(s.fields))
	for key := range s.fields {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
