package partition

// LabelContainers returns the entries that may carry a BSD disklabel,
// in table order.
func (t *Table) LabelContainers() []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if e.BSD {
			out = append(out, e)
		}
	}
	return out
}
