package pg

import (
	"context"

	"github.com/pressly/goose/v3"

	"github.com/kiwabc123/supply-admin/internal/migrations"
)

// Migrate applies all embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, ".")
}
