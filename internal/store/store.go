// Package store persists submitted evaluation records. Records are
// immutable once stored: a second Put with the same id is refused.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/fmuoria/intern-evaluation/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidID     = errors.New("invalid record id")
)

// RecordSource is the opaque provider of evaluation records used by the
// service. Implementations are safe for concurrent use.
type RecordSource interface {
	List(ctx context.Context) ([]models.EvaluationRecord, error)
	Get(ctx context.Context, id string) (models.EvaluationRecord, error)
	Put(ctx context.Context, rec models.EvaluationRecord) error
	Close() error
}

// Driver selects a RecordSource implementation
type Driver string

const (
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateID rejects ids that are empty or could escape a directory
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Open returns the store selected by driver. dir is used by the file
// store, dsn by the SQLite store.
func Open(ctx context.Context, driver Driver, dir, dsn string) (RecordSource, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(dir), nil
	case DriverSQLite:
		db, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}
