// Package app assembles the services from the infrastructure dependency
// bundle. It owns the session store lifecycle.
package app

import (
	"context"

	"github.com/contabank/contabank/pkg/config"
	accountsvc "github.com/contabank/contabank/pkg/service/account"
	authsvc "github.com/contabank/contabank/pkg/service/auth"
	transfersvc "github.com/contabank/contabank/pkg/service/transfer"
	usersvc "github.com/contabank/contabank/pkg/service/user"
	"github.com/contabank/contabank/pkg/session"
)

// App carries the constructed services plus the configuration they were built
// from.
type App struct {
	Store     *session.Store
	Loader    *accountsvc.Loader
	Refresher *accountsvc.Refresher
	Transfer  *transfersvc.Workflow
	Auth      *authsvc.Service
	User      *usersvc.Service

	Deps   *config.Deps
	Config *config.App
}

// New wires the full service graph on top of deps.
func New(deps *config.Deps) *App {
	loader := accountsvc.NewLoader(deps.Profiles, deps.Accounts, deps.Logger)
	store := session.New(deps.Identity, loader, session.LogNotifier{Logger: deps.Logger}, deps.Logger)
	refresher := accountsvc.NewRefresher(deps.Accounts, store, deps.Logger)

	return &App{
		Store:     store,
		Loader:    loader,
		Refresher: refresher,
		Transfer:  transfersvc.New(deps.Ledger, refresher, deps.Logger),
		Auth:      authsvc.New(deps.Identity, deps.Accounts, deps.Config.Account, deps.Logger),
		User:      usersvc.New(deps.Identity, deps.Logger),
		Deps:      deps,
		Config:    deps.Config,
	}
}

// Start subscribes the session store and loads any persisted session.
func (a *App) Start(ctx context.Context) error {
	return a.Store.Start(ctx)
}

// Stop tears the session store down.
func (a *App) Stop() {
	a.Store.Stop()
}
