// Package sqlschema aplica los scripts de schema embebidos de los backends SQL.
package sqlschema

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
)

// Apply ejecuta cada sentencia del script en orden. Los scripts tienen que ser
// idempotentes (CREATE ... IF NOT EXISTS).
func Apply(ctx context.Context, db *sql.DB, script string) error {
	for _, stmt := range Statements(script) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "apply schema: %.40s", stmt)
		}
	}
	return nil
}

// Statements parte un script por ';' y descarta comentarios de línea.
// No soporta ';' dentro de literales.
func Statements(script string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(script, ";") {
		lines := make([]string, 0)
		for _, l := range strings.Split(part, "\n") {
			if t := strings.TrimSpace(l); t == "" || strings.HasPrefix(t, "--") {
				continue
			}
			lines = append(lines, l)
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
