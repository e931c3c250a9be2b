package repository

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStorage marks failures of the underlying database.
	ErrStorage = errors.New("storage failure")
)

// StorageError wraps a driver error with the operation that produced it.
// errors.Is(err, ErrStorage) holds for every StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// translate maps gorm errors onto the package sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, op)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(ErrDuplicate, op)
	default:
		return errors.WithStack(&StorageError{Op: op, Err: err})
	}
}
