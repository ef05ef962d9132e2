package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/dropselect/internal/selector"
)

const (
	// border + padding on each side of the container
	containerChrome = 4
	// " ×", " │", " ▾" after the value area
	controlsWidth = 6
	// cursor, space, three-cell mark, space
	rowPrefixWidth = 6
	// content row inside the container, relative to its top-left corner
	contentX = 2
	contentY = 1
)

type regionKind int

const (
	regionBody regionKind = iota
	regionClear
	regionBadge
	regionRow
)

// region is an inclusive rectangle in box-local cells.
type region struct {
	kind   regionKind
	index  int
	x0, y0 int
	x1, y1 int
}

func (r region) contains(x, y int) bool {
	return x >= r.x0 && x <= r.x1 && y >= r.y0 && y <= r.y1
}

type boxLayout struct {
	view    string
	width   int
	height  int
	regions []region
}

// SelectBox renders a selector and maps pointer events onto it.
type SelectBox struct {
	sel     *selector.Selector
	width   int
	focused bool
}

func NewSelectBox(sel *selector.Selector, width int) *SelectBox {
	return &SelectBox{sel: sel, width: width}
}

func (b *SelectBox) Selector() *selector.Selector {
	return b.sel
}

func (b *SelectBox) Focused() bool {
	return b.focused
}

func (b *SelectBox) Focus() {
	b.focused = true
}

// Blur drops focus, which always closes the dropdown.
func (b *SelectBox) Blur() {
	b.focused = false
	b.sel.Blur()
}

func (b *SelectBox) View() string {
	return b.layout().view
}

// Size reports the rendered width and height for the current state.
func (b *SelectBox) Size() (int, int) {
	l := b.layout()
	return l.width, l.height
}

// Click handles a left press at box-local (x, y). It reports whether the
// point was inside the widget.
func (b *SelectBox) Click(x, y int) bool {
	r, ok := b.hit(x, y)
	if !ok {
		return false
	}
	switch r.kind {
	case regionClear:
		b.sel.Clear()
	case regionBadge:
		if selected := b.sel.Selected(); r.index < len(selected) {
			b.sel.RemoveOne(selected[r.index])
		}
	case regionRow:
		if opts := b.sel.Options(); r.index < len(opts) {
			b.sel.Choose(opts[r.index])
		}
	default:
		b.sel.Toggle()
	}
	return true
}

// Hover highlights the menu row under the pointer.
func (b *SelectBox) Hover(x, y int) {
	r, ok := b.hit(x, y)
	if !ok || r.kind != regionRow {
		return
	}
	b.sel.Highlight(r.index)
}

func (b *SelectBox) Contains(x, y int) bool {
	_, ok := b.hit(x, y)
	return ok
}

func (b *SelectBox) hit(x, y int) (region, bool) {
	for _, r := range b.layout().regions {
		if r.contains(x, y) {
			return r, true
		}
	}
	return region{}, false
}

func (b *SelectBox) layout() boxLayout {
	s := b.sel
	var regions []region

	value := ""
	if s.Multiple() {
		parts := make([]string, 0, len(s.Selected()))
		off := 0
		for i, o := range s.Selected() {
			if i > 0 {
				off++
			}
			badge := badgeStyle.Render(o.Label + " ×")
			w := lipgloss.Width(badge)
			regions = append(regions, region{
				kind:  regionBadge,
				index: i,
				x0:    contentX + off,
				y0:    contentY,
				x1:    contentX + off + w - 1,
				y1:    contentY,
			})
			parts = append(parts, badge)
			off += w
		}
		value = strings.Join(parts, " ")
	} else if sel := s.Selected(); len(sel) == 1 {
		value = valueStyle.Render(sel[0].Label)
	}

	longest := 0
	for _, o := range s.Options() {
		longest = max(longest, lipgloss.Width(o.Label))
	}
	width := max(b.width, lipgloss.Width(value)+containerChrome+controlsWidth, longest+rowPrefixWidth+2)
	valueW := width - containerChrome - controlsWidth

	caret := "▾"
	if s.IsOpen() {
		caret = "▴"
	}
	line := padStyledLine(value, valueW) +
		" " + clearStyle.Render("×") +
		" " + dividerStyle.Render("│") +
		" " + caretStyle.Render(caret)
	regions = append(regions, region{
		kind: regionClear,
		x0:   contentX + valueW + 1,
		y0:   contentY,
		x1:   contentX + valueW + 1,
		y1:   contentY,
	})

	style := containerStyle
	if b.focused {
		style = focusedContainerStyle
	}
	view := style.Render(line)
	containerH := lipgloss.Height(view)

	if s.IsOpen() {
		rowW := width - 2
		rows := make([]string, 0, len(s.Options()))
		for i, o := range s.Options() {
			rows = append(rows, renderRow(o, s.IsSelected(o), i == s.Highlighted(), s.Multiple(), rowW))
			regions = append(regions, region{
				kind:  regionRow,
				index: i,
				x0:    1,
				y0:    containerH + 1 + i,
				x1:    width - 2,
				y1:    containerH + 1 + i,
			})
		}
		if len(rows) == 0 {
			rows = append(rows, padStyledLine(emptyStyle.Render("  no options"), rowW))
		}
		view = lipgloss.JoinVertical(lipgloss.Left, view, menuStyle.Render(strings.Join(rows, "\n")))
	}

	height := lipgloss.Height(view)
	regions = append(regions, region{kind: regionBody, x0: 0, y0: 0, x1: width - 1, y1: height - 1})

	return boxLayout{view: view, width: width, height: height, regions: regions}
}

func renderRow(o *selector.Option, selected, highlighted, multiple bool, width int) string {
	cursor := " "
	if highlighted {
		cursor = "›"
	}
	mark := "   "
	if multiple {
		if selected {
			mark = "[x]"
		} else {
			mark = "[ ]"
		}
	} else if selected {
		// Keep label columns aligned between single- and multi-select menus.
		mark = " ✓ "
	}
	content := cursor + " " + markStyle.Render(mark) + " " + o.Label
	return rowStyle(selected, highlighted).Render(padStyledLine(content, width))
}

func padStyledLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
