package prompt

// State is the lifecycle of a Menu.
type State int

const (
	// Active means the menu is rendered and waiting for input.
	Active State = iota
	// Resolved means a choice was confirmed.
	Resolved
	// Aborted means the operator interrupted the menu.
	Aborted
)

// Option is one menu entry.
type Option[T any] struct {
	Label string
	Hint  string
	Value T
}

// Menu is a single-choice list with a highlight cursor. It starts at the
// first option, never wraps, and stops reacting to input once it has been
// resolved or aborted.
type Menu[T any] struct {
	title   string
	options []Option[T]
	index   int
	state   State
}

func NewMenu[T any](title string, options []Option[T]) *Menu[T] {
	return &Menu[T]{title: title, options: options}
}

// Handle applies one keypress and returns the resulting state.
func (m *Menu[T]) Handle(k Key) State {
	if m.state != Active {
		return m.state
	}

	switch k {
	case KeyUp:
		if m.index > 0 {
			m.index--
		}
	case KeyDown:
		if m.index < len(m.options)-1 {
			m.index++
		}
	case KeyEnter:
		if len(m.options) > 0 {
			m.state = Resolved
		}
	case KeyInterrupt:
		m.state = Aborted
	}
	return m.state
}

func (m *Menu[T]) Title() string { return m.title }

func (m *Menu[T]) Options() []Option[T] { return m.options }

func (m *Menu[T]) Index() int { return m.index }

func (m *Menu[T]) State() State { return m.state }

// Selected returns the highlighted option.
func (m *Menu[T]) Selected() Option[T] {
	return m.options[m.index]
}
