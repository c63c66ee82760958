package tinytable

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// TableName is the name of the only table a database file holds.
const TableName = "rows"

// Database is a single table backed by a single file. The root of the
// table's B-tree always lives on page 0.
type Database struct {
	Name   string
	pager  Pager
	closer interface{ Close() error }
	table  *Table
	logger *zap.Logger
}

// OpenDatabase opens or creates a database file.
func OpenDatabase(ctx context.Context, logger *zap.Logger, name string) (*Database, error) {
	dbFile, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open database file: %w", err)
	}

	aPager, err := NewPager(dbFile, PageSize)
	if err != nil {
		return nil, multierr.Combine(err, dbFile.Close())
	}

	return NewDatabase(ctx, logger, name, aPager, aPager)
}

// NewDatabase assembles a database around an already opened pager. The
// closer is closed together with the database, for a file backed pager
// both arguments are the same value.
func NewDatabase(ctx context.Context, logger *zap.Logger, name string, aPager Pager, closer interface{ Close() error }) (*Database, error) {
	aDatabase := &Database{
		Name:   name,
		pager:  aPager,
		closer: closer,
		table:  NewTable(logger, TableName, aPager, 0),
		logger: logger,
	}

	aDatabase.logger.Sugar().With(
		"name", name,
		"total_pages", int(aPager.TotalPages()),
	).Debug("opening database")

	// Materialize the root page so an empty file starts out with an
	// empty root leaf
	if _, err := aPager.GetPage(ctx, 0); err != nil {
		return nil, fmt.Errorf("initialize root page: %w", err)
	}

	return aDatabase, nil
}

// Insert stores a row keyed by its ID.
func (d *Database) Insert(ctx context.Context, aRow Row) error {
	return d.table.Insert(ctx, aRow)
}

// Select streams all rows in ascending key order.
func (d *Database) Select(ctx context.Context) (Result, error) {
	return d.table.Select(ctx)
}

// Table exposes the underlying table for tree inspection.
func (d *Database) Table() *Table {
	return d.table
}

// Close flushes every cached page to the file and closes it. The database
// must not be used afterwards.
func (d *Database) Close(ctx context.Context) error {
	err := d.pager.FlushAll(ctx)
	if d.closer != nil {
		err = multierr.Append(err, d.closer.Close())
	}
	return err
}
