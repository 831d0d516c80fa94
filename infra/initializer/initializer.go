// Package initializer builds the infrastructure dependency bundle: logger,
// database connection, identity provider, repositories and the ledger client.
package initializer

import (
	"fmt"

	"github.com/contabank/contabank/infra"
	infraidentity "github.com/contabank/contabank/infra/identity"
	infraledger "github.com/contabank/contabank/infra/ledger"
	accountrepo "github.com/contabank/contabank/infra/repository/account"
	"github.com/contabank/contabank/pkg/config"
)

// InitializeDependencies initializes all the application dependencies.
func InitializeDependencies(cfg *config.App) (*config.Deps, error) {
	logger := setupLogger(cfg.Log)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &config.Deps{
		Identity: infraidentity.New(db, cfg.Auth.Jwt, logger),
		Ledger:   infraledger.New(db, logger),
		Profiles: accountrepo.NewProfileReader(db),
		Accounts: accountrepo.NewAccounts(db),
		Logger:   logger,
		Config:   cfg,
	}, nil
}
