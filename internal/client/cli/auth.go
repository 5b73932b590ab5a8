package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/labbook/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in through the session store.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}

	user, err := a.store.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			printlnFn("Invalid username or password")
			return err
		}
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Logged in as %s", user.Username))
	return nil
}

// Register prompts for account details and creates a new account. The server
// signs the new user in immediately, so the returned session is adopted.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	displayName, err := getSimpleText(a.reader, "Enter display name (optional)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}

	user, err := a.store.Register(ctx, username, email, password, displayName)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateUser):
			printlnFn("An account with this username or email already exists")
		case errors.Is(err, common.ErrValidation):
			printlnFn("Invalid registration details")
		default:
			printlnFn("Registration failed:", err.Error())
		}
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s!", user.Username))
	return nil
}

// Logout signs out. Local state is cleared even when the server cannot be
// reached.
func (a *App) Logout(ctx context.Context) error {
	a.store.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

// Whoami prints the currently resolved user, re-resolving first if the last
// attempt failed transiently.
func (a *App) Whoami(ctx context.Context) error {
	state := a.store.Snapshot()
	if state.Err != nil {
		a.store.Resolve(ctx)
		state = a.store.Snapshot()
	}

	if !state.Authenticated() {
		printlnFn("Not logged in")
		return nil
	}

	u := state.User
	printlnFn(fmt.Sprintf("%s <%s>", u.Username, u.Email))
	if u.DisplayName != "" {
		printlnFn("Display name:", u.DisplayName)
	}
	return nil
}

// Status reports server reachability and the session state.
func (a *App) Status(ctx context.Context) error {
	if err := a.client.Health(ctx); err != nil {
		printlnFn("Server: unreachable")
	} else {
		printlnFn("Server: online")
	}
	printlnFn("Session:", a.statusLine())
	return nil
}

func (a *App) statusLine() string {
	state := a.store.Snapshot()
	switch {
	case state.Loading:
		return "resolving"
	case state.Authenticated():
		return state.User.Username
	case state.Err != nil:
		return "error"
	default:
		return "not logged in"
	}
}
