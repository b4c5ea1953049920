// Package state holds the values of the dashboard's input widgets for one
// session.
package state

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownWidget is returned by Set for a key that was never declared.
	ErrUnknownWidget = errors.New("unknown widget")
	// ErrOutsideDomain is returned by Set for a value the widget does not offer.
	ErrOutsideDomain = errors.New("value outside widget domain")
)

// Kind distinguishes widget types.
type Kind int

const (
	KindCheckbox Kind = iota
	KindSelectBox
)

func (k Kind) String() string {
	switch k {
	case KindCheckbox:
		return "checkbox"
	case KindSelectBox:
		return "selectbox"
	default:
		return "unknown"
	}
}

// Widget is a named input with a domain of legal values. Values are carried
// as strings; checkboxes use "true" and "false".
type Widget struct {
	Key     string
	Kind    Kind
	Label   string
	Default string
	Options []string
	Value   string
}

// Allows reports whether value is in the widget's domain.
func (w Widget) Allows(value string) bool {
	for _, o := range w.Options {
		if o == value {
			return true
		}
	}
	return false
}

// Checkbox declares a boolean widget.
func Checkbox(key, label string, def bool) Widget {
	return Widget{
		Key:     key,
		Kind:    KindCheckbox,
		Label:   label,
		Default: strconv.FormatBool(def),
		Options: []string{"false", "true"},
	}
}

// SelectBox declares a single-choice widget. An empty def selects the first
// option.
func SelectBox(key, label string, options []string, def string) Widget {
	if def == "" && len(options) > 0 {
		def = options[0]
	}
	opts := make([]string, len(options))
	copy(opts, options)
	return Widget{
		Key:     key,
		Kind:    KindSelectBox,
		Label:   label,
		Default: def,
		Options: opts,
	}
}

// Listener is told the key of every accepted Set.
type Listener func(key string)

// Store keeps widget values for one session.
type Store struct {
	mu        sync.RWMutex
	widgets   map[string]*Widget
	order     []string
	listeners []Listener
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{widgets: make(map[string]*Widget)}
}

// Declare registers w on first use and returns its current value. Later
// declarations refresh the label and domain but keep the value, unless the
// value has left the domain, in which case it falls back to the default.
// Declare never notifies listeners.
func (s *Store) Declare(w Widget) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.widgets[w.Key]
	if !ok {
		w.Value = w.Default
		s.widgets[w.Key] = &w
		s.order = append(s.order, w.Key)
		return w.Value
	}

	value := cur.Value
	*cur = w
	if w.Allows(value) {
		cur.Value = value
	} else {
		cur.Value = w.Default
	}
	return cur.Value
}

// Get returns the current value of key, or "" when key was never declared.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.widgets[key]; ok {
		return w.Value
	}
	return ""
}

// Bool reads a checkbox value.
func (s *Store) Bool(key string) bool {
	b, _ := strconv.ParseBool(s.Get(key))
	return b
}

// Widget returns a snapshot of one widget.
func (s *Store) Widget(key string) (Widget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.widgets[key]
	if !ok {
		return Widget{}, false
	}
	return snapshot(w), true
}

// Widgets returns snapshots of every widget in declaration order.
func (s *Store) Widgets() []Widget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Widget, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, snapshot(s.widgets[k]))
	}
	return out
}

// Set changes the value of a declared widget and then calls every listener.
// Invalid input is rejected before any listener runs.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	w, ok := s.widgets[key]
	if !ok {
		s.mu.Unlock()
		return errors.Wrapf(ErrUnknownWidget, "%q", key)
	}
	if w.Kind == KindCheckbox {
		if b, err := strconv.ParseBool(value); err == nil {
			value = strconv.FormatBool(b)
		}
	}
	if !w.Allows(value) {
		s.mu.Unlock()
		return errors.Wrapf(ErrOutsideDomain, "%q for %q", value, key)
	}
	w.Value = value
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(key)
	}
	return nil
}

// Subscribe registers l to run after every accepted Set.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func snapshot(w *Widget) Widget {
	c := *w
	c.Options = make([]string, len(w.Options))
	copy(c.Options, w.Options)
	return c
}
