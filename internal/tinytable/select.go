package tinytable

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoMoreRows = errors.New("no more rows")
)

// Result streams rows out of a select. Call Rows repeatedly until it
// returns ErrNoMoreRows.
type Result struct {
	Rows func(ctx context.Context) (Row, error)
}

// Select scans the whole table in key order. Rows are produced by a
// background goroutine, cancelling the context stops the scan.
func (t *Table) Select(ctx context.Context) (Result, error) {
	var (
		rowsPipe   = make(chan Row)
		errorsPipe = make(chan error, 1)
	)

	go t.sequentialScan(ctx, rowsPipe, errorsPipe)

	aResult := Result{
		Rows: func(ctx context.Context) (Row, error) {
			select {
			case <-ctx.Done():
				return Row{}, fmt.Errorf("context done: %w", ctx.Err())
			case err := <-errorsPipe:
				return Row{}, err
			case aRow, open := <-rowsPipe:
				if !open {
					return Row{}, ErrNoMoreRows
				}
				return aRow, nil
			}
		},
	}

	return aResult, nil
}

func (t *Table) sequentialScan(ctx context.Context, out chan<- Row, errorsPipe chan<- error) {
	defer close(out)

	aCursor, err := t.SeekFirst(ctx)
	if err != nil {
		errorsPipe <- err
		return
	}

	for !aCursor.EndOfTable {
		aRow, err := aCursor.fetchRow(ctx)
		if err != nil {
			errorsPipe <- err
			return
		}

		select {
		case <-ctx.Done():
			return
		case out <- aRow:
			continue
		}
	}
}
