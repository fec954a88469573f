package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopgraph/shopgraph-backend/config"
)

func TestDSN(t *testing.T) {
	t.Run("plain values", func(t *testing.T) {
		got := DSN(&config.DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "secret", Name: "shop"})
		assert.Equal(t, "host=db port=5432 user=app password=secret dbname=shop sslmode=disable", got)
	})

	t.Run("values needing quotes", func(t *testing.T) {
		got := DSN(&config.DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: `p a'ss`, Name: ""})
		assert.Equal(t, `host=db port=5432 user=app password='p a\'ss' dbname='' sslmode=disable`, got)
	})
}
