package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFoundError reports whether a store error means "zero rows". Callers
// translate it to a domain NotFound error or an empty result, never surface
// it raw.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
