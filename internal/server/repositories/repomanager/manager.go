package repomanager

import (
	"context"
	"database/sql"

	"github.com/yassinebz/expensetracker/internal/dbx"
	"github.com/yassinebz/expensetracker/internal/server/repositories/refreshtokens"
	"github.com/yassinebz/expensetracker/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can use
// the same repository code against the pool or against an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
