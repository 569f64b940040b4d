package migrations

import (
	"embed"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// Source отдаёт встроенные миграции для golang-migrate.
func Source() (source.Driver, error) {
	return iofs.New(files, ".")
}
