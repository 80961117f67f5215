package disklabel

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// ShowState summarizes the label status in one line.
func (t *Table) ShowState() string {
	switch t.status {
	case StatusValid:
		return "BSD: present"
	case StatusInvalid:
		return "BSD: not present"
	default:
		return "BSD: unknown"
	}
}

// WriteTable lists the records of a valid label. Nothing is written otherwise.
func (t *Table) WriteTable(w io.Writer) error {
	if !t.Valid() {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Number\tStart (sector)\tLength (sectors)\tType\t\n")
	for i, r := range t.records {
		fmt.Fprintf(tw, "%d\t%d\t%d\t0x%02X (%s)\t\n", i+1, r.FirstSector, r.Length, r.TypeCode, FSTypeName(r.TypeCode))
	}
	return tw.Flush()
}
