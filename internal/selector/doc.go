// Package selector holds the interaction state machine of a dropdown selector.
//
// Allowed here:
// - option identity, the Single/Multi props contract, open and highlight state
// - the keyboard contract (Enter/Space, Up/Down, Escape) and pointer operations
//
// Not allowed here:
// - terminal rendering, mouse hit-testing, Bubble Tea message types
// - any selection state of its own: every change goes through the OnChange callback
package selector
