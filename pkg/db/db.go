package db

import (
	"context"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

// DB is a wrapper around pg.DB.
type DB struct {
	*pg.DB
}

func New(dbc *pg.DB) DB {
	return DB{DB: dbc}
}

// Ping checks the database connection.
func (d DB) Ping(ctx context.Context) error {
	return d.DB.Ping(ctx)
}

// RunInTx runs fn inside a single transaction, rolling back on error.
func (d DB) RunInTx(ctx context.Context, fn func(tx *pg.Tx) error) error {
	return d.DB.RunInTransaction(ctx, fn)
}

// CreateTables creates all bot tables if they are absent. No migration logic
// beyond that is applied.
func (d DB) CreateTables(ctx context.Context) error {
	models := []interface{}{
		(*User)(nil),
		(*Expense)(nil),
		(*Category)(nil),
		(*BotState)(nil),
		(*WishlistItem)(nil),
		(*RefPhoto)(nil),
	}

	for _, model := range models {
		err := d.DB.ModelContext(ctx, model).CreateTable(&orm.CreateTableOptions{
			IfNotExists: true,
		})
		if err != nil {
			return err
		}
	}

	return nil
}
