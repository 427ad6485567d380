// Package repositories holds the gorm-backed accessors. Each repository wraps
// a *gorm.DB, which may be a transaction:
//
//	db.Transaction(func(tx *gorm.DB) error {
//	    carts := repositories.NewCartRepository(tx)
//	    ...
//	})
package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
