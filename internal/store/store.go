// Package store provides the persistent implementations of quiz.Store.
package store

import (
	"errors"

	"github.com/starquake/quizgen/internal/quiz"
)

// ErrUnsupportedDriver is returned when a store driver is not known.
var ErrUnsupportedDriver = errors.New("unsupported store driver")

// Drivers supported by the application.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// validateAll validates qs as given and returns the first validation error, so nothing is written for an
// invalid batch.
func validateAll(qs []quiz.Question) error {
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	return nil
}
