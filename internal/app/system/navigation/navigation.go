// internal/app/system/navigation/navigation.go
package navigation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dalemusser/waffle/pantry/text"
)

// View is the tag of a screen.
type View string

const (
	Login     View = "login"
	Register  View = "register"
	Dashboard View = "dashboard"
	Profile   View = "profile"
	Group     View = "group"
	Submit    View = "submit"
)

// Views lists every known view.
var Views = []View{Login, Register, Dashboard, Profile, Group, Submit}

// MemberGated reports whether v requires a signed-in user.
func (v View) MemberGated() bool {
	switch v {
	case Dashboard, Profile, Group, Submit:
		return true
	}
	return false
}

// composite views carry an identifier after a colon.
func (v View) composite() bool {
	return v == Group || v == Submit
}

var (
	// ErrUnknownView is returned for targets that name no view.
	ErrUnknownView = errors.New("navigation: unknown view")
	// ErrMissingID is returned for "group:" or "submit:" without an id.
	ErrMissingID = errors.New("navigation: missing identifier")
)

// Params are the identifiers extracted from a composite target.
type Params struct {
	GroupID     string
	ChallengeID string
}

// State is the single current view. There is no history.
type State struct {
	View   View
	Params Params
}

// Target renders s back into target form ("group:<id>", "dashboard").
func (s State) Target() string {
	switch s.View {
	case Group:
		return string(Group) + ":" + s.Params.GroupID
	case Submit:
		return string(Submit) + ":" + s.Params.ChallengeID
	}
	return string(s.View)
}

// ParseTarget parses "<view>", "group:<id>" or "submit:<id>". View names
// are case-insensitive. Plain targets carry no params.
func ParseTarget(target string) (State, error) {
	target = strings.TrimSpace(target)
	name, id, hasID := strings.Cut(target, ":")
	view := View(text.Fold(strings.TrimSpace(name)))

	known := false
	for _, v := range Views {
		if v == view {
			known = true
			break
		}
	}
	if !known {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownView, target)
	}

	id = strings.TrimSpace(id)
	switch {
	case view.composite() && id == "":
		return State{}, fmt.Errorf("%w: %q", ErrMissingID, target)
	case !view.composite() && hasID:
		return State{}, fmt.Errorf("%w: %q takes no identifier", ErrUnknownView, target)
	}

	st := State{View: view}
	switch view {
	case Group:
		st.Params.GroupID = id
	case Submit:
		st.Params.ChallengeID = id
	}
	return st, nil
}

// Controller holds the active view. It does not check the session; the
// root controller decides which targets are honored.
type Controller struct {
	mu    sync.RWMutex
	state State
}

// New returns a Controller showing initial.
func New(initial View) *Controller {
	return &Controller{state: State{View: initial}}
}

// State returns the active view and its params.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// NavigateTo parses target and makes it the active view. On a parse error
// the active view is unchanged.
func (c *Controller) NavigateTo(target string) (State, error) {
	st, err := ParseTarget(target)
	if err != nil {
		return c.State(), err
	}
	c.Set(st)
	return st, nil
}

// Set replaces the active view.
func (c *Controller) Set(st State) {
	c.mu.Lock()
	c.state = st
	c.mu.Unlock()
}
