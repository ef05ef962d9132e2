package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/jask/dropselect/internal/store"
)

type fakeStore struct {
	saved   map[string]store.Selection
	saves   []store.Selection
	loadErr error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]store.Selection)}
}

func (f *fakeStore) Save(_ context.Context, sel store.Selection) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, sel)
	f.saved[sel.Widget] = sel
	return nil
}

func (f *fakeStore) Load(_ context.Context, widget string) (store.Selection, error) {
	if f.loadErr != nil {
		return store.Selection{}, f.loadErr
	}
	sel, ok := f.saved[widget]
	if !ok {
		return store.Selection{}, store.ErrNotFound
	}
	return sel, nil
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) keyLines() []string {
	var out []string
	for _, line := range l.lines {
		if strings.HasPrefix(line, "key ") {
			out = append(out, line)
		}
	}
	return out
}

func newTestHarness(t *testing.T, st SelectionStore) *Harness {
	t.Helper()
	opts := testOptions()
	multi, single := DefaultSelection(opts)
	p := Params{Options: opts, Multi: multi, Single: single, Width: 30}
	if st != nil {
		p.Store = st
	}
	return New(context.Background(), p)
}

func flowApplyMsg(t *testing.T, h *Harness, msg tea.Msg) *Harness {
	t.Helper()
	next, cmd := h.Update(msg)
	got, ok := next.(*Harness)
	if !ok {
		t.Fatalf("Update returned %T, want *Harness", next)
	}
	return flowDrainCmd(t, got, cmd)
}

func flowDrainCmd(t *testing.T, h *Harness, cmd tea.Cmd) *Harness {
	t.Helper()
	pending := []tea.Cmd{cmd}
	for i := 0; len(pending) > 0; i++ {
		if i >= 32 {
			t.Fatal("command chain exceeded max depth")
		}
		cmd, pending = pending[0], pending[1:]
		if cmd == nil {
			continue
		}
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			pending = append(pending, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		next, nextCmd := h.Update(msg)
		got, ok := next.(*Harness)
		if !ok {
			t.Fatalf("command update returned %T, want *Harness", next)
		}
		h = got
		pending = append(pending, nextCmd)
	}
	return h
}

func flowPress(t *testing.T, h *Harness, k tea.KeyType) *Harness {
	t.Helper()
	return flowApplyMsg(t, h, tea.KeyMsg{Type: k})
}

// flowClick presses the left button on a region of widget idx.
func flowClick(t *testing.T, h *Harness, idx int, kind regionKind, index int) *Harness {
	t.Helper()
	r := findRegion(t, h.boxes[idx], kind, index)
	origin := h.boxOrigins()[idx]
	return flowApplyMsg(t, h, tea.MouseMsg{
		X:      origin[0] + r.x0,
		Y:      origin[1] + r.y0,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})
}

func TestHarnessStartsWithFirstOptionAndMultiFocused(t *testing.T) {
	h := newTestHarness(t, nil)
	multi, single := h.Selections()
	if diff := cmp.Diff([]string{"first"}, labelsOf(multi)); diff != "" {
		t.Fatalf("multi mismatch (-want +got):\n%s", diff)
	}
	if single == nil || single.Label != "first" {
		t.Fatalf("single = %v, want first", single)
	}
	if !h.multi.Focused() || h.single.Focused() {
		t.Fatal("multi widget should start focused")
	}
	view := h.View()
	for _, want := range []string{"Multiple", "Single", "first ×", "open/select"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestHarnessMouseAddThenRemoveBadge(t *testing.T) {
	h := newTestHarness(t, nil)

	h = flowClick(t, h, 0, regionBody, 0)
	if !h.multi.Selector().IsOpen() {
		t.Fatal("body click should open the multi dropdown")
	}
	h = flowClick(t, h, 0, regionRow, 2)
	multi, _ := h.Selections()
	if diff := cmp.Diff([]string{"first", "third"}, labelsOf(multi)); diff != "" {
		t.Fatalf("after row click (-want +got):\n%s", diff)
	}
	if h.multi.Selector().IsOpen() {
		t.Fatal("row click should close the dropdown")
	}

	h = flowClick(t, h, 0, regionBadge, 0)
	multi, _ = h.Selections()
	if diff := cmp.Diff([]string{"third"}, labelsOf(multi)); diff != "" {
		t.Fatalf("after badge click (-want +got):\n%s", diff)
	}
	if h.multi.Selector().IsOpen() {
		t.Fatal("badge click must not open the dropdown")
	}
}

func TestHarnessKeyboardSingleSelection(t *testing.T) {
	h := newTestHarness(t, nil)
	h = flowPress(t, h, tea.KeyTab)
	if !h.single.Focused() || h.multi.Focused() {
		t.Fatal("tab should move focus to the single widget")
	}

	h = flowPress(t, h, tea.KeyEnter)
	if !h.single.Selector().IsOpen() || h.single.Selector().Highlighted() != 0 {
		t.Fatal("enter should open with the first row highlighted")
	}
	h = flowPress(t, h, tea.KeyDown)
	h = flowPress(t, h, tea.KeyDown)
	if got := h.single.Selector().Highlighted(); got != 2 {
		t.Fatalf("highlighted = %d, want 2", got)
	}
	h = flowPress(t, h, tea.KeyEnter)

	_, single := h.Selections()
	if single == nil || single.Label != "third" {
		t.Fatalf("single = %v, want third", single)
	}
	if h.single.Selector().IsOpen() {
		t.Fatal("enter on an open dropdown should close it")
	}
	if h.multi.Selector().IsOpen() {
		t.Fatal("keys for the single widget must not reach the multi widget")
	}
}

func TestHarnessSpaceTogglesFocusedWidget(t *testing.T) {
	h := newTestHarness(t, nil)
	h = flowApplyMsg(t, h, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !h.multi.Selector().IsOpen() {
		t.Fatal("space should open the focused widget")
	}
	if h.single.Selector().IsOpen() {
		t.Fatal("unfocused widget should stay closed")
	}
	h = flowPress(t, h, tea.KeyEscape)
	if h.multi.Selector().IsOpen() {
		t.Fatal("esc should close")
	}
}

func TestHarnessTabBlursAndCloses(t *testing.T) {
	h := newTestHarness(t, nil)
	h = flowPress(t, h, tea.KeyEnter)
	h = flowPress(t, h, tea.KeyShiftTab)
	if h.multi.Selector().IsOpen() {
		t.Fatal("losing focus should close the dropdown")
	}
	if !h.single.Focused() {
		t.Fatal("shift+tab from the first widget should wrap to the last")
	}
}

func TestHarnessClickOutsideClearsFocus(t *testing.T) {
	h := newTestHarness(t, nil)
	h = flowPress(t, h, tea.KeyEnter)
	h = flowApplyMsg(t, h, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	if h.multi.Focused() || h.single.Focused() {
		t.Fatal("click outside should clear focus")
	}
	if h.multi.Selector().IsOpen() {
		t.Fatal("click outside should close the open dropdown")
	}

	// With nothing focused the selector keys do nothing.
	h = flowPress(t, h, tea.KeyEnter)
	if h.multi.Selector().IsOpen() || h.single.Selector().IsOpen() {
		t.Fatal("enter without focus should be ignored")
	}
	h = flowPress(t, h, tea.KeyTab)
	if !h.multi.Focused() {
		t.Fatal("tab without focus should focus the first widget")
	}
}

func TestHarnessClickMovesFocus(t *testing.T) {
	h := newTestHarness(t, nil)
	h = flowPress(t, h, tea.KeyEnter)
	h = flowClick(t, h, 1, regionBody, 0)

	if !h.single.Focused() || h.multi.Focused() {
		t.Fatal("click should focus the clicked widget")
	}
	if h.multi.Selector().IsOpen() {
		t.Fatal("previously focused widget should close")
	}
	if !h.single.Selector().IsOpen() {
		t.Fatal("clicked widget should open")
	}
}

func TestHarnessWindowBlurClosesDropdown(t *testing.T) {
	h := newTestHarness(t, nil)
	h = flowPress(t, h, tea.KeyEnter)
	h = flowApplyMsg(t, h, tea.BlurMsg{})
	if h.multi.Selector().IsOpen() {
		t.Fatal("blur should close the dropdown")
	}
}

func TestHarnessMouseMotionHighlights(t *testing.T) {
	h := newTestHarness(t, nil)
	h = flowClick(t, h, 0, regionBody, 0)
	r := findRegion(t, h.multi, regionRow, 4)
	origin := h.boxOrigins()[0]
	h = flowApplyMsg(t, h, tea.MouseMsg{X: origin[0] + r.x0, Y: origin[1] + r.y0, Action: tea.MouseActionMotion})
	if got := h.multi.Selector().Highlighted(); got != 4 {
		t.Fatalf("highlighted = %d, want 4", got)
	}
}

func TestHarnessQuit(t *testing.T) {
	h := newTestHarness(t, nil)
	_, cmd := h.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
	if h.View() != "" {
		t.Fatal("view should be empty after quit")
	}
}

func TestHarnessPersistsChanges(t *testing.T) {
	st := newFakeStore()
	h := newTestHarness(t, st)

	h = flowClick(t, h, 0, regionBody, 0)
	if len(st.saves) != 0 {
		t.Fatalf("opening must not save, got %d saves", len(st.saves))
	}
	h = flowClick(t, h, 0, regionRow, 1)
	if diff := cmp.Diff([]string{"1", "2"}, st.saved[WidgetMulti].Values); diff != "" {
		t.Fatalf("saved multi (-want +got):\n%s", diff)
	}
	if !st.saved[WidgetMulti].Multiple {
		t.Fatal("multi selection should be saved as multiple")
	}

	h = flowClick(t, h, 1, regionClear, 0)
	single, ok := st.saved[WidgetSingle]
	if !ok || len(single.Values) != 0 {
		t.Fatalf("single clear should save no values, got %+v", single)
	}
	if _, s := h.Selections(); s != nil {
		t.Fatalf("single = %v, want nil", s)
	}
}

func TestHarnessSaveErrorShowsStatus(t *testing.T) {
	st := newFakeStore()
	st.saveErr = errors.New("disk full")
	h := newTestHarness(t, st)

	h = flowClick(t, h, 0, regionClear, 0)
	if !h.statusErr || !strings.Contains(h.status, "save multi") {
		t.Fatalf("status = %q, want save error", h.status)
	}
}

func TestRestoreSelection(t *testing.T) {
	opts := testOptions()
	ctx := context.Background()

	multi, single, err := RestoreSelection(ctx, newFakeStore(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"first"}, labelsOf(multi)); diff != "" || single != opts[0] {
		t.Fatalf("empty store should give defaults, multi diff:\n%s single=%v", diff, single)
	}

	st := newFakeStore()
	st.saved[WidgetMulti] = store.Selection{Widget: WidgetMulti, Multiple: true, Values: []string{"3", "9", "3", "1"}}
	st.saved[WidgetSingle] = store.Selection{Widget: WidgetSingle, Values: []string{}}
	multi, single, err = RestoreSelection(ctx, st, opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"third", "first"}, labelsOf(multi)); diff != "" {
		t.Fatalf("restored multi (-want +got):\n%s", diff)
	}
	if multi[0] != opts[2] {
		t.Fatal("restored options must be the host's own pointers")
	}
	if single != nil {
		t.Fatalf("single = %v, want nil", single)
	}

	st.loadErr = errors.New("boom")
	if _, _, err := RestoreSelection(ctx, st, opts); err == nil {
		t.Fatal("expected load error")
	}
}

func TestHarnessLogsKeyTransitions(t *testing.T) {
	opts := testOptions()
	multi, single := DefaultSelection(opts)
	logger := &recordingLogger{}
	h := New(context.Background(), Params{Options: opts, Multi: multi, Single: single, Logger: logger})

	h = flowPress(t, h, tea.KeyTab)
	h = flowPress(t, h, tea.KeyEnter)
	h = flowPress(t, h, tea.KeyDown)
	h = flowPress(t, h, tea.KeyDown)
	h = flowPress(t, h, tea.KeyDown)
	h = flowPress(t, h, tea.KeyUp)
	h = flowPress(t, h, tea.KeyEnter)
	h = flowPress(t, h, tea.KeyEscape)

	want := []string{
		"key single: opened index=0",
		"key single: moved index=1",
		"key single: moved index=2",
		"key single: moved index=3",
		"key single: moved index=2",
		"key single: committed index=2",
	}
	if diff := cmp.Diff(want, logger.keyLines()); diff != "" {
		t.Fatalf("key log (-want +got):\n%s", diff)
	}
	if _, got := h.Selections(); got != opts[2] {
		t.Fatalf("single = %v, want third", got)
	}
}
