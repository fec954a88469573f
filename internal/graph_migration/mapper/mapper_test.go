package mapper

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamp(t *testing.T) {
	plus2 := time.FixedZone("", 2*60*60)

	t.Run("accepted inputs", func(t *testing.T) {
		ts := time.Date(2024, 5, 1, 10, 30, 0, 0, plus2)
		cases := []struct {
			name string
			in   any
			want string
		}{
			{"time with offset", ts, "2024-05-01T10:30:00+02:00"},
			{"time pointer", &ts, "2024-05-01T10:30:00+02:00"},
			{"utc time", time.Date(2024, 5, 1, 8, 30, 0, 500, time.UTC), "2024-05-01T08:30:00.0000005Z"},
			{"rfc3339 string", "2024-05-01T10:30:00+02:00", "2024-05-01T10:30:00+02:00"},
			{"postgres text short offset", "2024-05-01 10:30:00+02", "2024-05-01T10:30:00+02:00"},
			{"postgres text fractional", "2024-05-01 10:30:00.25+00", "2024-05-01T10:30:00.25Z"},
			{"naive iso string", "2024-05-01T10:30:00", "2024-05-01T10:30:00Z"},
			{"naive space string", " 2024-05-01 10:30:00 ", "2024-05-01T10:30:00Z"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := NormalizeTimestamp(tc.in)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			})
		}
	})

	t.Run("rejected inputs", func(t *testing.T) {
		var nilTime *time.Time
		for _, in := range []any{nil, "", "yesterday", time.Time{}, nilTime, 12345} {
			_, err := NormalizeTimestamp(in)
			assert.ErrorIs(t, err, domain.ErrMalformedValue, "input %#v", in)
		}
	})
}

func TestNormalizeDate(t *testing.T) {
	for in, want := range map[string]string{
		"2023-01-15":             "2023-01-15",
		"2023-01-15T00:00:00Z":   "2023-01-15",
		"2023-01-15 00:00:00+00": "2023-01-15",
		" 2023-12-31 ":           "2023-12-31",
	} {
		got, err := NormalizeDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "15/01/2023", "2023-13-01", "2023-01-15X"} {
		_, err := NormalizeDate(in)
		assert.ErrorIs(t, err, domain.ErrMalformedValue, in)
	}
}

func TestProduct(t *testing.T) {
	st, err := Product(domain.ProductRow{ID: "P1", Name: "Mug", CategoryID: "C1", Price: 9.5})
	require.NoError(t, err)
	assert.Equal(t, domain.EntityProduct, st.Entity)
	assert.Equal(t, "P1", st.SourceID)
	assert.Equal(t, "IN_CATEGORY", st.Rel)
	assert.Equal(t, 9.5, st.Params["price"])
	assert.Equal(t, "C1", st.Params["category_id"])
	assert.Contains(t, st.Cypher, "MERGE (p:Product {id: $id})")
	assert.Contains(t, st.Cypher, "MERGE (p)-[:IN_CATEGORY]->(cat)")

	_, err = Product(domain.ProductRow{ID: "P2", Price: math.NaN()})
	assert.ErrorIs(t, err, domain.ErrMalformedValue)
	assert.Contains(t, err.Error(), "product P2")

	_, err = Product(domain.ProductRow{ID: "P3", Name: "Lamp", CategoryID: "C1", PriceNull: true})
	assert.ErrorIs(t, err, domain.ErrMalformedValue)
	assert.Contains(t, err.Error(), "product P3: malformed value: price is null")
}

func TestCustomer(t *testing.T) {
	st, err := Customer(domain.CustomerRow{ID: "U1", Name: "Ada", JoinDate: "2022-02-03"})
	require.NoError(t, err)
	assert.Equal(t, "2022-02-03", st.Params["join_date"])
	assert.Contains(t, st.Cypher, "date($join_date)")

	_, err = Customer(domain.CustomerRow{ID: "U2", JoinDate: "not a date"})
	assert.ErrorIs(t, err, domain.ErrMalformedValue)
	assert.Contains(t, err.Error(), "customer U2")
}

func TestOrder(t *testing.T) {
	st, err := Order(domain.OrderRow{ID: "O1", CustomerID: "U1", TS: "2024-01-02 03:04:05+00"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T03:04:05Z", st.Params["ts"])
	assert.Equal(t, "U1", st.Params["customer_id"])
	assert.Contains(t, st.Cypher, "datetime($ts)")
	assert.Contains(t, st.Cypher, "MERGE (c)-[:PLACED]->(o)")

	_, err = Order(domain.OrderRow{ID: "O2", TS: "garbage"})
	assert.ErrorIs(t, err, domain.ErrMalformedValue)
	assert.Contains(t, err.Error(), "order O2")
}

func TestOrderItem(t *testing.T) {
	st, err := OrderItem(domain.OrderItemRow{OrderID: "O1", ProductID: "P1", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, "O1/P1", st.SourceID)
	assert.Equal(t, int64(3), st.Params["quantity"])
	assert.Contains(t, st.Cypher, "MERGE (o)-[r:CONTAINS]->(p)")
	assert.Contains(t, st.Cypher, "SET r.quantity = $quantity")

	_, err = OrderItem(domain.OrderItemRow{OrderID: "O1", ProductID: "P1", Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrMalformedValue)

	_, err = OrderItem(domain.OrderItemRow{OrderID: "O1", ProductID: "P2", QuantityNull: true})
	assert.ErrorIs(t, err, domain.ErrMalformedValue)
	assert.Contains(t, err.Error(), "order item O1/P2")
}

func TestEvent(t *testing.T) {
	row := domain.EventRow{ID: "E1", CustomerID: "U1", ProductID: "P1", TS: "2024-01-02T03:04:05Z"}

	for eventType, rel := range map[string]string{
		"view":        "VIEWED",
		"click":       "CLICKED",
		"add_to_cart": "ADDED_TO_CART",
		"wishlist":    "INTERACTED",
	} {
		row.EventType = eventType

		st, err := Event(row, domain.EventAppend)
		require.NoError(t, err)
		assert.Contains(t, st.Cypher, "CREATE (c)-[r:"+rel+"]->(p)")
		assert.Equal(t, rel, st.Rel)
		assert.NotContains(t, st.Cypher, "MERGE")
		assert.Equal(t, "E1", st.Params["event_id"])
		assert.Equal(t, "2024-01-02T03:04:05Z", st.Params["ts"])

		st, err = Event(row, domain.EventMerge)
		require.NoError(t, err)
		assert.Contains(t, st.Cypher, "MERGE (c)-[r:"+rel+" {event_id: $event_id}]->(p)")
	}

	row.TS = nil
	_, err := Event(row, domain.EventAppend)
	assert.ErrorIs(t, err, domain.ErrMalformedValue)
}

func TestStatementsAreParameterized(t *testing.T) {
	all := []string{upsertCategory, upsertProduct, upsertCustomer, upsertOrder, upsertOrderItem}
	for _, s := range createEvent {
		all = append(all, s)
	}
	for _, s := range mergeEvent {
		all = append(all, s)
	}
	for _, s := range all {
		assert.NotContains(t, s, "%")
		assert.True(t, strings.Contains(s, "RETURN") && strings.Contains(s, "AS linked"))
	}
	assert.Len(t, createEvent, 4)
	assert.Len(t, mergeEvent, 4)
}
