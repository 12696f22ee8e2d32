package portal

import (
	"github.com/expromedia/Marx/internal/dashboard"
)

// withSession runs fn on the client's state when it holds a committed session.
func (c *Choreographer) withSession(clientID string, fn func(st *clientState) error) (Snapshot, error) {
	st := c.state(clientID)

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.user == nil || st.phase == PhaseIdle || st.phase == PhaseLoggingIn {
		return st.snapshot(clientID), ErrNotLoggedIn
	}

	if err := fn(st); err != nil {
		return st.snapshot(clientID), err
	}

	return st.snapshot(clientID), nil
}

// SelectTab makes name the active tab when the session's role may see it.
// Unknown names resolve to Overview. Selecting closes the mobile overlay.
func (c *Choreographer) SelectTab(clientID, name string) (Snapshot, error) {
	return c.withSession(clientID, func(st *clientState) error {
		tab := dashboard.Resolve(name)
		if !tab.Allows(st.user.Role) {
			return ErrTabNotAllowed
		}

		st.nav.ActiveTab = tab.Label
		st.nav.MobileNavOpen = false
		st.nav.ProfileOpen = false
		return nil
	})
}

func (c *Choreographer) SetMobileNav(clientID string, open bool) (Snapshot, error) {
	return c.withSession(clientID, func(st *clientState) error {
		st.nav.MobileNavOpen = open
		if open {
			st.nav.ProfileOpen = false
		}
		return nil
	})
}

func (c *Choreographer) SetProfileMenu(clientID string, open bool) (Snapshot, error) {
	return c.withSession(clientID, func(st *clientState) error {
		st.nav.ProfileOpen = open
		return nil
	})
}

func (c *Choreographer) SetSidebarCollapsed(clientID string, collapsed bool) (Snapshot, error) {
	return c.withSession(clientID, func(st *clientState) error {
		st.nav.SidebarCollapsed = collapsed
		return nil
	})
}

// DismissMenus closes the profile dropdown, as a click outside it does.
func (c *Choreographer) DismissMenus(clientID string) (Snapshot, error) {
	return c.withSession(clientID, func(st *clientState) error {
		st.nav.ProfileOpen = false
		return nil
	})
}
