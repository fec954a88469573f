package postgres

import (
	"fmt"
	"strings"

	"github.com/shopgraph/shopgraph-backend/config"
)

// DSN renders a libpq key/value connection string. pgx accepts the same
// format, so the source pool and the history handle share it.
func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, quote(cfg.User), quote(cfg.Password), quote(cfg.Name),
	)
}

// quote escapes a value for libpq's key/value syntax.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
