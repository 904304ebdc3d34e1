package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
)

// authAPI is the part of client.AuthClient the shell uses.
type authAPI interface {
	Register(ctx context.Context, name, email string, password []byte) (string, error)
	Login(ctx context.Context, email string, password []byte) (string, error)
	ValidateToken(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (string, error)
	GetUser(ctx context.Context, token, id string) (*client.User, error)
}

type App struct {
	config  *config.Config
	api     authAPI
	session session.Store
	db      *sql.DB
	reader  *bufio.Reader
	out     io.Writer

	token    string
	userName string
}

// NewApp opens the session database and restores a saved session, if any.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := session.Open(ctx, c.SessionFile)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:  c,
		api:     client.NewAuthClient(c.ServerURL, c.RequestTimeout),
		session: session.NewSQLiteStore(db),
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	if err := a.restore(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) restore(ctx context.Context) error {
	token, err := a.session.Load(ctx)
	if err != nil {
		return err
	}
	a.useToken(token)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ")"
}

// Run starts the interactive shell and returns when the user quits or stdin
// is closed.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	printlnFn("Welcome to authctl (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
