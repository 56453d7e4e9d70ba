// Package uistate holds the page state of one calendar (the active
// volunteer filter and the active widget view) and recomputes the visible
// view whenever it changes.
//
// A Controller is the only writer of its state. Consumers observe changes
// through Subscribe instead of reading shared globals.
package uistate

import (
	"fmt"
	"sync"

	"github.com/lbc24/quest-calendar/internal/domain"
	"github.com/lbc24/quest-calendar/internal/viewmodel"
)

// Widget view names. Only FlatGridView flattens the resource list: it shows
// a single day with one column per resource, where nested groups would
// waste a column each.
const (
	DefaultView  = "timeGridWeek"
	FlatGridView = "resourceTimeGridDay"
)

// Views lists every view the page toolbar offers.
var Views = []string{
	DefaultView,
	"listYear",
	"resourceTimelineDay",
	"resourceTimelineMonth",
	FlatGridView,
}

// IsKnownView reports whether name is one of Views.
func IsKnownView(name string) bool {
	for _, v := range Views {
		if v == name {
			return true
		}
	}
	return false
}

// Listener is called with the recomputed view after every state change.
type Listener func(domain.View)

// Controller owns one UIState over an immutable Base.
type Controller struct {
	base *viewmodel.Base

	mu        sync.Mutex
	state     domain.UIState
	view      string
	listeners []Listener
}

// New returns a Controller with no volunteer filter on DefaultView.
func New(base *viewmodel.Base) *Controller {
	return &Controller{base: base, view: DefaultView}
}

// Subscribe registers l to be called after each change.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// State returns a copy of the current state.
func (c *Controller) State() domain.UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyState(c.state)
}

// ActiveView returns the name of the current widget view.
func (c *Controller) ActiveView() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// View computes the visible view for the current state.
func (c *Controller) View() domain.View {
	return viewmodel.ComputeView(c.State(), c.base)
}

// SelectVolunteer applies the drop-down value. The empty string and
// domain.NoVolunteer clear the filter. Any other value must be the
// namespaced id of a known volunteer, otherwise the state is left unchanged
// and an error wrapping domain.ErrNotFound is returned.
func (c *Controller) SelectVolunteer(value string) error {
	if value == "" || value == domain.NoVolunteer {
		c.update(func(s *domain.UIState) { s.ActiveVolunteer = nil })
		return nil
	}
	id, err := domain.ParseResourceID(value)
	if err != nil || id.Kind != domain.KindVolunteer {
		return fmt.Errorf("uistate.Controller.SelectVolunteer: %w: volunteer %q", domain.ErrNotFound, value)
	}
	v, ok := c.base.Volunteers.Get(id)
	if !ok {
		return fmt.Errorf("uistate.Controller.SelectVolunteer: %w: volunteer %q", domain.ErrNotFound, value)
	}
	c.update(func(s *domain.UIState) { s.ActiveVolunteer = &v })
	return nil
}

// ChangeView records the widget's newly active view. Resources are flattened
// exactly when the view is FlatGridView.
func (c *Controller) ChangeView(viewType string) {
	c.update(func(s *domain.UIState) {
		c.view = viewType
		s.FlattenResources = viewType == FlatGridView
	})
}

// update applies fn under the lock, then notifies listeners outside it so a
// listener may read the controller again.
func (c *Controller) update(fn func(*domain.UIState)) {
	c.mu.Lock()
	fn(&c.state)
	state := copyState(c.state)
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	if len(listeners) == 0 {
		return
	}
	view := viewmodel.ComputeView(state, c.base)
	for _, l := range listeners {
		l(view)
	}
}

func copyState(s domain.UIState) domain.UIState {
	if s.ActiveVolunteer != nil {
		v := *s.ActiveVolunteer
		s.ActiveVolunteer = &v
	}
	return s
}

// SelectorOptions returns the volunteer drop-down entries: the "none"
// sentinel first, then every volunteer in insertion order.
func SelectorOptions(base *viewmodel.Base) []domain.SelectorOption {
	all := base.Volunteers.All()
	out := make([]domain.SelectorOption, 0, len(all)+1)
	out = append(out, domain.SelectorOption{Value: domain.NoVolunteer, Label: "—"})
	for _, v := range all {
		out = append(out, domain.SelectorOption{Value: v.ID.String(), Label: v.Title})
	}
	return out
}
