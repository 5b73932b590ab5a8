// Package guard decides what a navigation should do given the current
// session state. It is a pure function of {loading, authenticated, route}
// with no I/O, which keeps the decision table fully enumerable in tests.
package guard

import "github.com/dmitrijs2005/labbook/internal/client/session"

// Decision is the outcome of a guard check.
type Decision int

const (
	// Wait means a resolution is in flight; never redirect mid-resolution.
	Wait Decision = iota
	// Render means the requested route may be shown.
	Render
	// RedirectLogin sends an unauthenticated visitor to the login route.
	RedirectLogin
	// RedirectHome sends an already-authenticated visitor away from the
	// login route to the default view.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Route classifies the destinations the guard distinguishes.
type Route int

const (
	// Protected routes require an authenticated user.
	Protected Route = iota
	// Login is the sign-in route.
	Login
	// PasswordReset routes always render: a signed-out user must be able
	// to complete a reset, and a signed-in one may reset on behalf of a
	// recovery link.
	PasswordReset
)

// Check returns the decision for navigating to route under state.
func Check(state session.State, route Route) Decision {
	if route == PasswordReset {
		return Render
	}

	if state.Loading {
		return Wait
	}

	if state.Authenticated() {
		if route == Login {
			return RedirectHome
		}
		return Render
	}

	if route == Login {
		return Render
	}
	return RedirectLogin
}
