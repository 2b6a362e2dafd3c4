package postgres

import (
	"fmt"
	"strings"
	"testing"

	"xiuh/internal/adapters/storage/sqlschema"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatements_SplitsEmbeddedSchema(t *testing.T) {
	stmts := sqlschema.Statements(schema)
	assert.Len(t, stmts, 4)
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS"), s)
		assert.NotContains(t, s, "--")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(errors.Wrap(dup, "insert pet")))
	assert.True(t, isUniqueViolation(fmt.Errorf("tx: %w", dup)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}
