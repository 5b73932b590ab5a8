package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/labbook/internal/dbx"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/experiments"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/notes"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/projects"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
	Projects(db dbx.DBTX) projects.Repository
	Experiments(db dbx.DBTX) experiments.Repository
	Notes(db dbx.DBTX) notes.Repository
	Attachments(db dbx.DBTX) attachments.Repository
}
