package graphstore

import (
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Record is one result row keyed by the RETURN aliases.
type Record map[string]any

func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (r Record) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (r Record) Float64(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case int64:
		return v > 0
	default:
		return false
	}
}

// Date renders a DATE property as YYYY-MM-DD. Strings pass through.
func (r Record) Date(key string) string {
	switch v := r[key].(type) {
	case neo4j.Date:
		return v.Time().Format(time.DateOnly)
	case time.Time:
		return v.Format(time.DateOnly)
	case string:
		return v
	default:
		return ""
	}
}
