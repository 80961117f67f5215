package browse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"disklabeltool/internal/core"
	"disklabeltool/internal/disklabel"
	"disklabeltool/internal/units"
)

// row is one line of the label list. record is -1 for a label heading.
type row struct {
	label  int
	record int
	text   string
}

const (
	colNum   = 4
	colStart = 12
	colLen   = 12
	colType  = 10
)

type browser struct {
	app    *tview.Application
	pages  *tview.Pages
	grid   *tview.Grid
	header *tview.TextView
	list   *tview.TextView
	info   *tview.TextView
	footer *tview.TextView
	calc   *tview.InputField

	st         *core.State
	rep        *core.Report
	rows       []row
	index      int
	sectorSize uint64
}

// Run shows the scanned labels of st until the user quits.
func Run(st *core.State, conv map[*core.Label]*core.Conversion, sectorSize uint64) error {
	if sectorSize == 0 {
		sectorSize = units.DefaultSectorSize
	}
	rep := st.Report(conv)
	b := &browser{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		grid:       tview.NewGrid(),
		header:     tview.NewTextView(),
		list:       tview.NewTextView(),
		info:       tview.NewTextView(),
		footer:     tview.NewTextView(),
		calc:       tview.NewInputField(),
		st:         st,
		rep:        rep,
		rows:       buildRows(rep),
		sectorSize: sectorSize,
	}

	b.style()
	b.layout()
	b.bindKeys()

	b.drawHeader()
	b.drawList()
	b.drawInfo()

	b.pages.AddAndSwitchToPage("main", b.grid, true)
	b.app.SetRoot(b.pages, true)
	b.app.SetFocus(b.list)
	return b.app.Run()
}

func (b *browser) style() {
	tview.Styles.PrimitiveBackgroundColor = tcell.ColorNavy
	tview.Styles.ContrastBackgroundColor = tcell.ColorBlue
	tview.Styles.BorderColor = tcell.ColorSkyblue
	tview.Styles.PrimaryTextColor = tcell.ColorWhite

	b.header.SetBorder(true)
	b.header.SetDynamicColors(true)
	b.header.SetTitle(" disklabeltool ")
	b.header.SetTitleColor(tcell.ColorSkyblue)

	b.footer.SetBorder(true)
	b.footer.SetDynamicColors(true)
	fmt.Fprint(b.footer, footerText())

	for _, tv := range []*tview.TextView{b.list, b.info} {
		tv.SetBorder(true)
		tv.SetTitleAlign(tview.AlignLeft)
		tv.SetBackgroundColor(tcell.ColorBlue)
		tv.SetDynamicColors(true)
		tv.SetScrollable(false)
	}
	b.list.SetTitle(" labels ")
	b.info.SetTitle(" record ")

	b.calc.SetLabel("sector: ")
	b.calc.SetFieldWidth(32)
	b.calc.SetBorder(true)
	b.calc.SetTitle(" calculator (e.g. 2048, +1G, -16M) ")
}

func footerText() string {
	lbl := func(fn, t string) string { return fmt.Sprintf("[black:white] %s [-:-:-] [yellow]%s[-]", fn, t) }
	return strings.Join([]string{
		lbl("F1", "Help"),
		lbl("F3", "Hex"),
		lbl("F4", "Calc"),
		lbl("F10", "Quit"),
	}, "  ")
}

func (b *browser) layout() {
	b.grid.SetRows(3, 0, 2).SetColumns(0, 0).SetBorders(false)
	center := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(b.list, 0, 3, true).
		AddItem(b.info, 0, 2, false)
	b.grid.AddItem(b.header, 0, 0, 1, 2, 0, 0, false)
	b.grid.AddItem(center, 1, 0, 1, 2, 0, 0, true)
	b.grid.AddItem(b.footer, 2, 0, 1, 2, 0, 0, false)
}

func (b *browser) drawHeader() {
	b.header.Clear()
	fmt.Fprintf(b.header, "[yellow]DISK[-]: [white]%s[-]   [yellow]TABLE[-]: [white]%s[-]   [yellow]SIZE[-]: [white]%s[-]",
		b.rep.Source, b.rep.Scheme, b.rep.Size)
}

func (b *browser) drawList() {
	b.list.Clear()
	for i, r := range b.rows {
		if i == b.index {
			fmt.Fprintf(b.list, "[black:teal]%s[-:-:-]\n", tview.Escape(r.text))
		} else {
			fmt.Fprintf(b.list, "%s\n", tview.Escape(r.text))
		}
	}
}

func (b *browser) drawInfo() {
	b.info.Clear()
	if b.index < 0 || b.index >= len(b.rows) {
		fmt.Fprint(b.info, "no labels")
		return
	}
	fmt.Fprint(b.info, tview.Escape(detail(b.rep, b.rows[b.index])))
}

func (b *browser) bindKeys() {
	b.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if b.app.GetFocus() != b.list {
			return ev
		}
		switch ev.Key() {
		case tcell.KeyUp:
			b.moveCursor(-1); return nil
		case tcell.KeyDown:
			b.moveCursor(+1); return nil
		case tcell.KeyPgUp:
			b.moveCursor(-15); return nil
		case tcell.KeyPgDn:
			b.moveCursor(+15); return nil
		case tcell.KeyHome:
			b.setIndex(0); return nil
		case tcell.KeyEnd:
			b.setIndex(len(b.rows) - 1); return nil
		case tcell.KeyF1:
			b.alert("Up/Down/PgUp/PgDn - select\nF3 - hex dump of the label window\nF4 - sector calculator within the container\nF10/Esc - quit")
			return nil
		case tcell.KeyF3:
			b.hex(); return nil
		case tcell.KeyF4:
			b.calculator(); return nil
		case tcell.KeyF10, tcell.KeyEsc:
			b.app.Stop(); return nil
		}
		return ev
	})
}

func (b *browser) setIndex(i int) {
	if len(b.rows) == 0 { return }
	if i < 0 { i = 0 }
	if i >= len(b.rows) { i = len(b.rows) - 1 }
	b.index = i
	b.drawList()
	b.drawInfo()
}

func (b *browser) moveCursor(d int) { b.setIndex(b.index + d) }

func (b *browser) current() (core.LabelReport, bool) {
	if b.index < 0 || b.index >= len(b.rows) { return core.LabelReport{}, false }
	return b.rep.Labels[b.rows[b.index].label], true
}

func (b *browser) hex() {
	l, ok := b.current()
	if !ok { return }
	buf, err := b.st.Source.Window(l.FirstSector)
	if err != nil {
		b.alert(err.Error())
		return
	}
	b.view(hexDump(buf), fmt.Sprintf("window at sector %d", l.FirstSector))
}

func (b *browser) calculator() {
	l, ok := b.current()
	if !ok { return }
	low, high := l.FirstSector, l.LastSector
	b.calc.SetText("")
	b.calc.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			b.info.Clear()
			fmt.Fprint(b.info, tview.Escape(calcResult(b.calc.GetText(), b.sectorSize, low, high)))
		}
		b.pages.RemovePage("calc")
		b.app.SetFocus(b.list)
	})
	dlg := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(b.calc, 3, 0, true).
		AddItem(nil, 0, 1, false)
	b.pages.AddPage("calc", dlg, true, true)
	b.app.SetFocus(b.calc)
}

func (b *browser) alert(text string) {
	m := tview.NewModal().SetText(text).AddButtons([]string{"OK"})
	b.pages.AddAndSwitchToPage("modal", m, true)
	m.SetDoneFunc(func(_ int, _ string) {
		b.pages.RemovePage("modal")
		b.pages.SwitchToPage("main")
		b.app.SetFocus(b.list)
	})
}

func (b *browser) view(txt, title string) {
	tv := tview.NewTextView()
	tv.SetText(txt)
	tv.SetScrollable(true)
	tv.SetBorder(true)
	tv.SetTitle(fmt.Sprintf(" %s ", title))
	b.pages.AddAndSwitchToPage("view", tv, true)
	tv.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEsc || ev.Key() == tcell.KeyF10 {
			b.pages.RemovePage("view")
			b.pages.SwitchToPage("main")
			b.app.SetFocus(b.list)
			return nil
		}
		return ev
	})
}

// buildRows lays out one heading per label followed by its records.
func buildRows(r *core.Report) []row {
	var out []row
	for li, l := range r.Labels {
		head := fmt.Sprintf("Whole disk %d..%d: BSD %s", l.FirstSector, l.LastSector, l.Status)
		if l.Container != 0 {
			head = fmt.Sprintf("Partition %d %d..%d: BSD %s", l.Container, l.FirstSector, l.LastSector, l.Status)
		}
		out = append(out, row{label: li, record: -1, text: head})
		for ri, rec := range l.Records {
			out = append(out, row{label: li, record: ri, text: fmt.Sprintf("  %s %s %s %s",
				pad(fmt.Sprint(rec.Number), colNum),
				pad(fmt.Sprint(rec.FirstSector), colStart),
				pad(fmt.Sprint(rec.Length), colLen),
				pad(rec.FSType, colType))})
		}
	}
	return out
}

func detail(r *core.Report, rw row) string {
	l := r.Labels[rw.label]
	var sb strings.Builder
	if rw.record < 0 {
		fmt.Fprintf(&sb, "Container: %d (%s)\n", l.Container, l.ContainerType)
		fmt.Fprintf(&sb, "Sectors:   %d..%d\n", l.FirstSector, l.LastSector)
		fmt.Fprintf(&sb, "Status:    %s\n", l.Status)
		if l.Status == disklabel.StatusValid.String() {
			fmt.Fprintf(&sb, "Type name: %s\nPack name: %s\n", l.TypeName, l.PackName)
			fmt.Fprintf(&sb, "Sector size: %d\nRelative:  %t\nRecords:   %d\n", l.SectorSize, l.Relative, len(l.Records))
		}
		return sb.String()
	}
	rec := l.Records[rw.record]
	fmt.Fprintf(&sb, "Record %d\n", rec.Number)
	fmt.Fprintf(&sb, "Start:  %d\nLength: %d\nBSD type: 0x%02X %s\n", rec.FirstSector, rec.Length, rec.TypeCode, rec.FSType)
	p := rec.Partition
	if p == nil {
		sb.WriteString("\nnot converted\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "\nGPT %d..%d (%s)\n", p.FirstSector, p.LastSector, p.Size)
	fmt.Fprintf(&sb, "Type: %s %s\n      %s\n", p.TypeCode, p.Name, p.TypeGUID)
	fmt.Fprintf(&sb, "GUID: %s\n", p.GUID)
	return sb.String()
}

func calcResult(text string, sectorSize, low, high uint64) string {
	v := units.Parse(text, sectorSize, low, high, low)
	if v < low || v > high {
		return fmt.Sprintf("%q: out of range %d..%d", text, low, high)
	}
	return fmt.Sprintf("%q = sector %d\n%s from container start", text, v, units.Format(v-low, sectorSize))
}

func pad(s string, w int) string {
	if len(s) > w { return s[:w] }
	return s + strings.Repeat(" ", w-len(s))
}

func hexDump(b []byte) string {
	var out bytes.Buffer
	const cols = 16
	for i := 0; i < len(b); i += cols {
		end := i + cols; if end > len(b) { end = len(b) }
		chunk := b[i:end]
		fmt.Fprintf(&out, "%08x  ", i)
		for j := 0; j < cols; j++ {
			if i+j < len(b) { fmt.Fprintf(&out, "%02x ", b[i+j]) } else { out.WriteString("   ") }
		}
		out.WriteString(" ")
		for _, c := range chunk {
			if c >= 32 && c < 127 { out.WriteByte(c) } else { out.WriteByte('.') }
		}
		out.WriteByte('\n')
	}
	return out.String()
}
