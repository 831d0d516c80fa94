package config

import (
	"log/slog"

	"github.com/contabank/contabank/pkg/ledger"
	"github.com/contabank/contabank/pkg/provider/identity"
	"github.com/contabank/contabank/pkg/repository"
)

// Deps bundles the infrastructure dependencies needed to build the services
// and the web app.
type Deps struct {
	Identity identity.Provider
	Ledger   ledger.Client
	Profiles repository.ProfileReader
	Accounts repository.Accounts
	Logger   *slog.Logger
	Config   *App
}
