package selector

import (
	"slices"
	"strings"
)

// Key is a keyboard input the selector understands.
type Key int

const (
	KeyNone Key = iota
	KeyToggle
	KeyUp
	KeyDown
	KeyEscape
)

type Action int

const (
	ActionNone Action = iota
	ActionOpened
	ActionClosed
	ActionMoved
	ActionCommitted
)

func (a Action) String() string {
	switch a {
	case ActionOpened:
		return "opened"
	case ActionClosed:
		return "closed"
	case ActionMoved:
		return "moved"
	case ActionCommitted:
		return "committed"
	default:
		return "none"
	}
}

// Result reports what a key did.
type Result struct {
	Action Action
	Index  int
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, v ...any)
}

// Selector owns only transient UI state. The selection itself lives in the
// host and arrives through Props.
type Selector struct {
	id          ID
	options     []*Option
	props       Props
	open        bool
	highlighted int
	logger      Logger
}

func New(options []*Option, props Props) *Selector {
	if props == nil {
		props = Single(nil, nil)
	}
	return &Selector{
		id:      NewID(),
		options: options,
		props:   props,
	}
}

func (s *Selector) SetLogger(l Logger) {
	if s == nil {
		return
	}
	s.logger = l
}

func (s *Selector) ID() ID {
	if s == nil {
		return ""
	}
	return s.id
}

// SetProps replaces the host-owned value and handler. Hosts call it after
// every change so the selector always reads the current selection.
func (s *Selector) SetProps(p Props) {
	if s == nil || p == nil {
		return
	}
	s.props = p
}

// SetOptions replaces the option list. The highlighted index is left alone
// even if it now points past the end.
func (s *Selector) SetOptions(options []*Option) {
	if s == nil {
		return
	}
	s.options = options
}

func (s *Selector) Options() []*Option {
	if s == nil {
		return nil
	}
	return s.options
}

func (s *Selector) Multiple() bool {
	return s != nil && s.props.Multiple()
}

func (s *Selector) IsOpen() bool {
	return s != nil && s.open
}

func (s *Selector) Highlighted() int {
	if s == nil {
		return 0
	}
	return s.highlighted
}

// Selected returns the current selection as a list in both modes.
func (s *Selector) Selected() []*Option {
	if s == nil {
		return nil
	}
	switch p := s.props.(type) {
	case MultiProps:
		return p.Value
	case SingleProps:
		if p.Value == nil {
			return nil
		}
		return []*Option{p.Value}
	}
	return nil
}

func (s *Selector) setOpen(open bool) {
	if open && !s.open {
		s.highlighted = 0
	}
	s.open = open
}

// Toggle flips the dropdown, as a click on the widget body does.
func (s *Selector) Toggle() {
	if s == nil {
		return
	}
	s.setOpen(!s.open)
}

func (s *Selector) Open() {
	if s == nil {
		return
	}
	s.setOpen(true)
}

func (s *Selector) Close() {
	if s == nil {
		return
	}
	s.setOpen(false)
}

// Blur closes the dropdown unconditionally.
func (s *Selector) Blur() {
	s.Close()
}

// Highlight moves the highlight to i, as pointer hover does.
func (s *Selector) Highlight(i int) {
	if s == nil || i < 0 || i >= len(s.options) {
		return
	}
	s.highlighted = i
}

// IsSelected reports list membership in multi mode and identity in single mode.
func (s *Selector) IsSelected(o *Option) bool {
	if s == nil || o == nil {
		return false
	}
	switch p := s.props.(type) {
	case MultiProps:
		return IndexOf(p.Value, o) >= 0
	case SingleProps:
		return p.Value == o
	}
	return false
}

// SelectOption toggles o in multi mode and replaces the value in single mode.
// Re-selecting the current single value does not call OnChange.
func (s *Selector) SelectOption(o *Option) {
	if s == nil || o == nil {
		return
	}
	switch p := s.props.(type) {
	case MultiProps:
		var next []*Option
		if IndexOf(p.Value, o) >= 0 {
			next = slices.DeleteFunc(slices.Clone(p.Value), func(it *Option) bool { return it == o })
		} else {
			next = append(slices.Clone(p.Value), o)
		}
		s.emitMulti(p, next)
	case SingleProps:
		if p.Value == o {
			return
		}
		s.emitSingle(p, o)
	}
}

// Choose selects o and closes the dropdown, as a click on a menu row does.
func (s *Selector) Choose(o *Option) {
	if s == nil {
		return
	}
	s.SelectOption(o)
	s.setOpen(false)
}

// Clear empties the selection without touching the open state.
func (s *Selector) Clear() {
	if s == nil {
		return
	}
	switch p := s.props.(type) {
	case MultiProps:
		s.emitMulti(p, []*Option{})
	case SingleProps:
		s.emitSingle(p, nil)
	}
}

// RemoveOne drops o from a multi selection. Single selectors ignore it.
func (s *Selector) RemoveOne(o *Option) {
	if s == nil || o == nil {
		return
	}
	p, ok := s.props.(MultiProps)
	if !ok || IndexOf(p.Value, o) < 0 {
		return
	}
	s.SelectOption(o)
}

// HandleKey runs the keyboard state machine. Events addressed to a different
// container are ignored.
func (s *Selector) HandleKey(target ID, k Key) Result {
	if s == nil || target != s.id {
		return Result{Action: ActionNone}
	}

	switch k {
	case KeyToggle:
		if !s.open {
			s.setOpen(true)
			return Result{Action: ActionOpened}
		}
		idx := s.highlighted
		s.commit(idx)
		s.setOpen(false)
		return Result{Action: ActionCommitted, Index: idx}
	case KeyUp, KeyDown:
		if !s.open {
			s.setOpen(true)
			return Result{Action: ActionOpened}
		}
		next := s.highlighted + 1
		if k == KeyUp {
			next = s.highlighted - 1
		}
		if next < 0 || next >= len(s.options) {
			return Result{Action: ActionNone, Index: s.highlighted}
		}
		s.highlighted = next
		return Result{Action: ActionMoved, Index: next}
	case KeyEscape:
		wasOpen := s.open
		s.setOpen(false)
		if wasOpen {
			return Result{Action: ActionClosed}
		}
		return Result{Action: ActionNone}
	}
	return Result{Action: ActionNone}
}

func (s *Selector) commit(idx int) {
	if idx < 0 || idx >= len(s.options) {
		// The option list shrank under an open dropdown.
		s.logf("selector %s: highlighted index %d outside %d options, nothing committed", s.id, idx, len(s.options))
		return
	}
	s.SelectOption(s.options[idx])
}

func (s *Selector) emitMulti(p MultiProps, next []*Option) {
	s.logf("selector %s: change %s", s.id, labels(next))
	if p.OnChange != nil {
		p.OnChange(next)
	}
}

func (s *Selector) emitSingle(p SingleProps, next *Option) {
	if next == nil {
		s.logf("selector %s: change <none>", s.id)
	} else {
		s.logf("selector %s: change %s", s.id, next.Label)
	}
	if p.OnChange != nil {
		p.OnChange(next)
	}
}

func (s *Selector) logf(format string, v ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Printf(format, v...)
}

func labels(list []*Option) string {
	if len(list) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(list))
	for _, o := range list {
		if o == nil {
			continue
		}
		parts = append(parts, o.Label)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
