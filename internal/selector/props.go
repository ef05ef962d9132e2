package selector

// Props is what a host passes to a selector on every render. Only Single and
// Multi implement it, so a multi value can never be paired with a single
// change handler.
type Props interface {
	Multiple() bool
	sealed()
}

// SingleProps carries an optional current option and its change handler.
type SingleProps struct {
	Value    *Option
	OnChange func(*Option)
}

// MultiProps carries the ordered selection and its change handler.
type MultiProps struct {
	Value    []*Option
	OnChange func([]*Option)
}

func Single(value *Option, onChange func(*Option)) Props {
	return SingleProps{Value: value, OnChange: onChange}
}

func Multi(value []*Option, onChange func([]*Option)) Props {
	return MultiProps{Value: value, OnChange: onChange}
}

func (SingleProps) Multiple() bool { return false }
func (MultiProps) Multiple() bool  { return true }

func (SingleProps) sealed() {}
func (MultiProps) sealed()  {}
