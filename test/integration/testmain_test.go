//go:build integration

package integration_test

import (
	"testing"

	"github.com/starquake/quizgen/internal/db"
	"github.com/starquake/quizgen/internal/must"
)

func TestMain(m *testing.M) {
	// Configure goose global state exactly once for this package's tests.
	must.OK(db.SetupGoose())

	// Run tests.
	m.Run()
}
