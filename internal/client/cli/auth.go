package cli

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// ErrNotLoggedIn is returned by commands that need a session token.
var ErrNotLoggedIn = errors.New("not logged in")

// sessionClaims mirrors the token payload. The client only reads it and
// never checks the signature; the server does that.
type sessionClaims struct {
	jwt.RegisteredClaims
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func decodeClaims(token string) (*sessionClaims, error) {
	var c sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// useToken switches the in-memory session without persisting it.
func (a *App) useToken(token string) {
	a.token = token
	a.userName = ""
	if c, err := decodeClaims(token); err == nil {
		a.userName = c.User.Name
	}
}

// setToken switches the session and persists it; "" ends the session.
func (a *App) setToken(ctx context.Context, token string) error {
	a.useToken(token)
	if token == "" {
		return a.session.Clear(ctx)
	}
	return a.session.Save(ctx, token)
}

// Register prompts for name, email and password, creates the account and
// keeps the returned token as the session.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	if err := a.setToken(ctx, token); err != nil {
		return err
	}
	printlnFn("Success!")
	return nil
}

// Login prompts for credentials and keeps the returned token as the session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := a.setToken(ctx, token); err != nil {
		return err
	}
	printlnFn("Login successful")
	return nil
}

// Verify asks the server whether the session token is still valid.
// An expired session is dropped.
func (a *App) Verify(ctx context.Context) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}
	if err := a.api.ValidateToken(ctx, a.token); err != nil {
		if errors.Is(err, client.ErrTokenExpired) {
			_ = a.setToken(ctx, "")
		}
		return err
	}
	printlnFn("Token is valid")
	return nil
}

// Refresh exchanges the session token for a fresh one.
func (a *App) Refresh(ctx context.Context) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}
	token, err := a.api.Refresh(ctx, a.token)
	if err != nil {
		if errors.Is(err, client.ErrTokenExpired) {
			_ = a.setToken(ctx, "")
		}
		return err
	}
	if err := a.setToken(ctx, token); err != nil {
		return err
	}
	printlnFn("Token refreshed")
	return nil
}

// WhoAmI loads the current user through the bearer-protected endpoint.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}
	c, err := decodeClaims(a.token)
	if err != nil {
		return err
	}
	u, err := a.api.GetUser(ctx, a.token, c.User.ID)
	if err != nil {
		return err
	}
	printlnFn(u.Username, "("+u.ID+")")
	return nil
}

// Logout forgets the session token, locally and on disk.
func (a *App) Logout(ctx context.Context) error {
	if err := a.setToken(ctx, ""); err != nil {
		return err
	}
	printlnFn("Logged out")
	return nil
}
