package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/dropselect/internal/keys"
	"github.com/jask/dropselect/internal/selector"
	"github.com/jask/dropselect/internal/store"
)

const (
	WidgetMulti  = "multi"
	WidgetSingle = "single"

	marginX     = 2
	headerLines = 2
	noFocus     = -1
)

// SelectionStore persists the harness selections. *store.Store implements it.
type SelectionStore interface {
	Save(ctx context.Context, sel store.Selection) error
	Load(ctx context.Context, widget string) (store.Selection, error)
}

// Params wires a Harness. Multi and Single are the initial host values.
type Params struct {
	Options []*selector.Option
	Multi   []*selector.Option
	Single  *selector.Option
	Keys    *keys.Registry
	Logger  selector.Logger
	Store   SelectionStore
	Width   int
}

type selectionSavedMsg struct {
	widget string
	err    error
}

// Harness is the host: it owns both selections and re-supplies them to the
// widgets after every change.
type Harness struct {
	ctx         context.Context
	multiValue  []*selector.Option
	singleValue *selector.Option
	multi       *SelectBox
	single      *SelectBox
	boxes       []*SelectBox
	titles      []string
	focus       int
	dirty       map[string]bool
	keys        *keys.Registry
	help        help.Model
	logger      selector.Logger
	store       SelectionStore
	status      string
	statusErr   bool
	quitting    bool
}

// DefaultSelection returns the starting values: the first option in both modes.
func DefaultSelection(options []*selector.Option) ([]*selector.Option, *selector.Option) {
	if len(options) == 0 {
		return []*selector.Option{}, nil
	}
	return []*selector.Option{options[0]}, options[0]
}

// RestoreSelection overlays persisted values onto the defaults. Values that no
// longer match a configured option are dropped.
func RestoreSelection(ctx context.Context, st SelectionStore, options []*selector.Option) ([]*selector.Option, *selector.Option, error) {
	multi, single := DefaultSelection(options)
	if st == nil {
		return multi, single, nil
	}

	saved, err := st.Load(ctx, WidgetMulti)
	switch {
	case err == nil:
		multi = make([]*selector.Option, 0, len(saved.Values))
		for _, v := range saved.Values {
			if o := selector.FindByValue(options, v); o != nil && selector.IndexOf(multi, o) < 0 {
				multi = append(multi, o)
			}
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, nil, fmt.Errorf("restore %s: %w", WidgetMulti, err)
	}

	saved, err = st.Load(ctx, WidgetSingle)
	switch {
	case err == nil:
		single = nil
		if len(saved.Values) > 0 {
			single = selector.FindByValue(options, saved.Values[0])
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, nil, fmt.Errorf("restore %s: %w", WidgetSingle, err)
	}
	return multi, single, nil
}

func New(ctx context.Context, p Params) *Harness {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.Keys == nil {
		p.Keys = keys.NewRegistry()
	}
	h := &Harness{
		ctx:         ctx,
		multiValue:  p.Multi,
		singleValue: p.Single,
		titles:      []string{"Multiple", "Single"},
		focus:       0,
		dirty:       make(map[string]bool),
		keys:        p.Keys,
		help:        help.New(),
		logger:      p.Logger,
		store:       p.Store,
		status:      "Ready",
	}
	if h.multiValue == nil {
		h.multiValue = []*selector.Option{}
	}

	multiSel := selector.New(p.Options, h.multiProps())
	singleSel := selector.New(p.Options, h.singleProps())
	if p.Logger != nil {
		multiSel.SetLogger(p.Logger)
		singleSel.SetLogger(p.Logger)
	}
	h.multi = NewSelectBox(multiSel, p.Width)
	h.single = NewSelectBox(singleSel, p.Width)
	h.boxes = []*SelectBox{h.multi, h.single}
	h.multi.Focus()
	return h
}

func (h *Harness) multiProps() selector.Props {
	return selector.Multi(h.multiValue, func(v []*selector.Option) {
		h.multiValue = v
		h.dirty[WidgetMulti] = true
		h.sync()
	})
}

func (h *Harness) singleProps() selector.Props {
	return selector.Single(h.singleValue, func(v *selector.Option) {
		h.singleValue = v
		h.dirty[WidgetSingle] = true
		h.sync()
	})
}

// sync hands the current host values back to both widgets.
func (h *Harness) sync() {
	if h.multi != nil {
		h.multi.sel.SetProps(h.multiProps())
	}
	if h.single != nil {
		h.single.sel.SetProps(h.singleProps())
	}
}

// Selections returns the host-owned values.
func (h *Harness) Selections() ([]*selector.Option, *selector.Option) {
	return h.multiValue, h.singleValue
}

func (h *Harness) Init() tea.Cmd {
	return nil
}

func (h *Harness) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.help.Width = msg.Width
		return h, nil
	case tea.KeyMsg:
		return h.handleKey(msg)
	case tea.MouseMsg:
		return h, h.handleMouse(msg)
	case tea.BlurMsg:
		if box := h.focused(); box != nil {
			box.sel.Blur()
		}
		return h, nil
	case selectionSavedMsg:
		if msg.err != nil {
			h.setError(fmt.Errorf("save %s: %w", msg.widget, msg.err))
		}
		return h, nil
	}
	return h, nil
}

func (h *Harness) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	scope := keys.ScopeGlobal
	if h.focus != noFocus {
		scope = keys.ScopeSelector
	}
	b := h.keys.Lookup(msg.String(), scope)
	if b == nil {
		return h, nil
	}
	switch b.Action {
	case keys.ActionQuit:
		h.quitting = true
		return h, tea.Quit
	case keys.ActionFocusNext:
		h.moveFocus(1)
		return h, nil
	case keys.ActionFocusPrev:
		h.moveFocus(-1)
		return h, nil
	}

	k := selectorKey(b.Action)
	if k == selector.KeyNone || h.focus == noFocus {
		return h, nil
	}
	// Every widget sees the event; only the focused container's ID matches.
	target := h.boxes[h.focus].sel.ID()
	for i, box := range h.boxes {
		res := box.sel.HandleKey(target, k)
		if res.Action != selector.ActionNone && h.logger != nil {
			h.logger.Printf("key %s: %s index=%d", h.widgetName(i), res.Action, res.Index)
		}
	}
	return h, h.flush()
}

func (h *Harness) handleMouse(msg tea.MouseMsg) tea.Cmd {
	idx, x, y := h.boxAt(msg.X, msg.Y)
	switch {
	case msg.Action == tea.MouseActionMotion:
		if idx != noFocus {
			h.boxes[idx].Hover(x, y)
		}
		return nil
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		h.setFocus(idx)
		if idx != noFocus {
			h.boxes[idx].Click(x, y)
		}
		return h.flush()
	}
	return nil
}

func (h *Harness) widgetName(i int) string {
	if h.boxes[i] == h.multi {
		return WidgetMulti
	}
	return WidgetSingle
}

func selectorKey(a keys.Action) selector.Key {
	switch a {
	case keys.ActionToggle:
		return selector.KeyToggle
	case keys.ActionUp:
		return selector.KeyUp
	case keys.ActionDown:
		return selector.KeyDown
	case keys.ActionClose:
		return selector.KeyEscape
	}
	return selector.KeyNone
}

func (h *Harness) focused() *SelectBox {
	if h.focus < 0 || h.focus >= len(h.boxes) {
		return nil
	}
	return h.boxes[h.focus]
}

func (h *Harness) setFocus(idx int) {
	if idx == h.focus {
		return
	}
	if box := h.focused(); box != nil {
		box.Blur()
	}
	h.focus = idx
	if box := h.focused(); box != nil {
		box.Focus()
	}
}

func (h *Harness) moveFocus(delta int) {
	n := len(h.boxes)
	if n == 0 {
		return
	}
	next := 0
	switch {
	case h.focus == noFocus && delta < 0:
		next = n - 1
	case h.focus == noFocus:
		next = 0
	default:
		next = ((h.focus+delta)%n + n) % n
	}
	h.setFocus(next)
}

// boxOrigins returns the top-left corner of each widget, matching View.
func (h *Harness) boxOrigins() [][2]int {
	out := make([][2]int, 0, len(h.boxes))
	y := headerLines
	for _, box := range h.boxes {
		y++ // label line
		out = append(out, [2]int{marginX, y})
		_, bh := box.Size()
		y += bh + 1
	}
	return out
}

// boxAt maps screen coordinates to a widget index and box-local coordinates.
func (h *Harness) boxAt(x, y int) (int, int, int) {
	for i, origin := range h.boxOrigins() {
		lx, ly := x-origin[0], y-origin[1]
		if h.boxes[i].Contains(lx, ly) {
			return i, lx, ly
		}
	}
	return noFocus, 0, 0
}

// flush turns pending changes into persistence commands.
func (h *Harness) flush() tea.Cmd {
	if len(h.dirty) == 0 {
		return nil
	}
	dirty := h.dirty
	h.dirty = make(map[string]bool)
	if h.store == nil {
		return nil
	}
	var cmds []tea.Cmd
	if dirty[WidgetMulti] {
		cmds = append(cmds, h.saveCmd(WidgetMulti, true, optionValues(h.multiValue)))
	}
	if dirty[WidgetSingle] {
		var values []string
		if h.singleValue != nil {
			values = []string{h.singleValue.Value.String()}
		}
		cmds = append(cmds, h.saveCmd(WidgetSingle, false, values))
	}
	return tea.Batch(cmds...)
}

func (h *Harness) saveCmd(widget string, multiple bool, values []string) tea.Cmd {
	st, ctx := h.store, h.ctx
	return func() tea.Msg {
		err := st.Save(ctx, store.Selection{Widget: widget, Multiple: multiple, Values: values})
		return selectionSavedMsg{widget: widget, err: err}
	}
}

func optionValues(list []*selector.Option) []string {
	out := make([]string, 0, len(list))
	for _, o := range list {
		out = append(out, o.Value.String())
	}
	return out
}

func (h *Harness) setError(err error) {
	h.status = err.Error()
	h.statusErr = true
	if h.logger != nil {
		h.logger.Printf("error: %v", err)
	}
}

func (h *Harness) helpBindings() []key.Binding {
	out := h.keys.HelpBindings(keys.ScopeSelector)
	return append(out, h.keys.HelpBindings(keys.ScopeGlobal)...)
}

func (h *Harness) View() string {
	if h.quitting {
		return ""
	}
	lines := []string{titleStyle.Render("dropselect"), ""}
	for i, box := range h.boxes {
		lines = append(lines, labelStyle.Render(h.titles[i]), box.View(), "")
	}
	status := statusStyle.Render(h.status)
	if h.statusErr {
		status = errorStyle.Render(h.status)
	}
	lines = append(lines, status, h.help.ShortHelpView(h.helpBindings()))
	body := strings.Join(lines, "\n")
	return lipgloss.NewStyle().PaddingLeft(marginX).Render(body)
}
