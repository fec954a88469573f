package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertEntityOrder(t *testing.T, calls []call) {
	t.Helper()
	rank := map[domain.Entity]int{}
	for i, e := range domain.LoadOrder {
		rank[e] = i
	}
	last := -1
	for _, c := range calls {
		e := entityOf(c)
		if e == "" {
			continue
		}
		require.GreaterOrEqual(t, rank[e], last, "%s written after a later entity type", e)
		last = rank[e]
	}
}

func TestLoader_Load(t *testing.T) {
	t.Run("loads every entity in dependency order", func(t *testing.T) {
		graph := newFakeGraph()
		loader := NewLoader(shopFixture(), graph, Config{}, nil)

		report, err := loader.Load(context.Background())
		require.NoError(t, err)

		assert.NotEmpty(t, report.RunID)
		assert.Equal(t, domain.RunCompleted, report.Status)
		assert.Empty(t, report.Failures)
		assert.Len(t, graph.calls, 2+3+2+2+3+2)
		assertEntityOrder(t, graph.calls)

		assert.Equal(t, domain.EntityStats{Read: 3, Written: 3}, *report.Entities[domain.EntityProduct])
		assert.Equal(t, domain.EntityStats{Read: 2, Written: 2}, *report.Entities[domain.EntityEvent])
		assert.False(t, report.FinishedAt.Before(report.StartedAt))
	})

	t.Run("keeps concurrent writes inside one entity type", func(t *testing.T) {
		graph := newFakeGraph()
		loader := NewLoader(shopFixture(), graph, Config{Workers: 4}, nil)

		report, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.RunCompleted, report.Status)
		assert.Equal(t, 3, report.Entities[domain.EntityOrderItem].Written)
		assertEntityOrder(t, graph.calls)
	})

	t.Run("event rows are never merged", func(t *testing.T) {
		src := shopFixture()
		src.events = append(src.events, src.events[0])
		graph := newFakeGraph()

		report, err := NewLoader(src, graph, Config{}, nil).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, report.Entities[domain.EntityEvent].Written)

		creates := 0
		for _, c := range graph.calls {
			if entityOf(c) == domain.EntityEvent {
				assert.Contains(t, c.cypher, "CREATE (c)-[r:")
				creates++
			}
		}
		assert.Equal(t, 3, creates)
	})

	t.Run("merge event mode keys edges on event id", func(t *testing.T) {
		graph := newFakeGraph()
		_, err := NewLoader(shopFixture(), graph, Config{EventMode: domain.EventMerge}, nil).Load(context.Background())
		require.NoError(t, err)
		for _, c := range graph.calls {
			if entityOf(c) == domain.EntityEvent {
				assert.Contains(t, c.cypher, "{event_id: $event_id}")
			}
		}
	})
}

func TestLoader_ReferentialGaps(t *testing.T) {
	withGaps := func() *fakeSource {
		src := shopFixture()
		src.products = append(src.products, domain.ProductRow{ID: "P9", Name: "Orphan", CategoryID: "C404", Price: 1})
		src.items = append(src.items, domain.OrderItemRow{OrderID: "O1", ProductID: "P404", Quantity: 1})
		return src
	}

	t.Run("skip policy reports and continues", func(t *testing.T) {
		graph := newFakeGraph()
		report, err := NewLoader(withGaps(), graph, Config{GapPolicy: domain.GapSkip}, nil).Load(context.Background())
		require.NoError(t, err)

		assert.Equal(t, domain.RunCompletedWithIssues, report.Status)
		assert.Equal(t, 2, report.TotalGaps())
		assert.Equal(t, domain.EntityStats{Read: 4, Written: 3, Gaps: 1}, *report.Entities[domain.EntityProduct])
		assert.Equal(t, domain.EntityStats{Read: 4, Written: 3, Gaps: 1}, *report.Entities[domain.EntityOrderItem])

		require.Len(t, report.Failures, 2)
		assert.Equal(t, domain.RowFailure{
			Entity:   domain.EntityProduct,
			SourceID: "P9",
			Kind:     domain.FailureGap,
			Reason:   "category C404 not found; IN_CATEGORY not created",
		}, report.Failures[0])
		assert.Equal(t, "O1/P404", report.Failures[1].SourceID)

		assert.Equal(t, 2, report.Entities[domain.EntityEvent].Written)
	})

	t.Run("abort policy stops at the first gap", func(t *testing.T) {
		graph := newFakeGraph()
		report, err := NewLoader(withGaps(), graph, Config{GapPolicy: domain.GapAbort}, nil).Load(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLoadAborted)
		assert.ErrorIs(t, err, domain.ErrReferentialGap)
		assert.Equal(t, domain.RunAborted, report.Status)
		assert.NotEmpty(t, report.Error)

		for _, c := range graph.calls {
			assert.NotEqual(t, domain.EntityCustomer, entityOf(c), "customers must not load after an aborted product stage")
		}
	})
}

func TestLoader_RowFailures(t *testing.T) {
	t.Run("malformed rows fail alone", func(t *testing.T) {
		src := shopFixture()
		src.customers = append(src.customers, domain.CustomerRow{ID: "U9", Name: "Bad", JoinDate: "someday"})
		src.orders = append(src.orders, domain.OrderRow{ID: "O9", CustomerID: "U1", TS: "not-a-time"})

		report, err := NewLoader(src, newFakeGraph(), Config{}, nil).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.RunCompletedWithIssues, report.Status)
		assert.Equal(t, domain.EntityStats{Read: 3, Written: 2, Failed: 1}, *report.Entities[domain.EntityCustomer])
		assert.Equal(t, domain.EntityStats{Read: 3, Written: 2, Failed: 1}, *report.Entities[domain.EntityOrder])

		ids := map[string]string{}
		for _, f := range report.Failures {
			ids[f.SourceID] = f.Kind
		}
		assert.Equal(t, map[string]string{"U9": domain.FailureMalformed, "O9": domain.FailureMalformed}, ids)
	})

	t.Run("null price and quantity fail the row", func(t *testing.T) {
		src := shopFixture()
		src.products = append(src.products, domain.ProductRow{ID: "P7", Name: "Lamp", CategoryID: "C1", PriceNull: true})
		src.items = append(src.items, domain.OrderItemRow{OrderID: "O2", ProductID: "P3", QuantityNull: true})

		report, err := NewLoader(src, newFakeGraph(), Config{}, nil).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.EntityStats{Read: 4, Written: 3, Failed: 1}, *report.Entities[domain.EntityProduct])
		assert.Equal(t, domain.EntityStats{Read: 4, Written: 3, Failed: 1}, *report.Entities[domain.EntityOrderItem])

		ids := map[string]string{}
		for _, f := range report.Failures {
			ids[f.SourceID] = f.Kind
		}
		assert.Equal(t, map[string]string{"P7": domain.FailureMalformed, "O2/P3": domain.FailureMalformed}, ids)
	})

	t.Run("fail fast stops on malformed row", func(t *testing.T) {
		src := shopFixture()
		src.customers[0].JoinDate = "bad"

		report, err := NewLoader(src, newFakeGraph(), Config{FailFast: true}, nil).Load(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMalformedValue)
		assert.Equal(t, domain.RunAborted, report.Status)
	})

	t.Run("write failures are isolated", func(t *testing.T) {
		graph := newFakeGraph()
		graph.failOn = func(_ string, params map[string]any) error {
			if params["id"] == "O2" {
				return errors.New("transient: leader switch")
			}
			return nil
		}

		report, err := NewLoader(shopFixture(), graph, Config{}, nil).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.EntityStats{Read: 2, Written: 1, Failed: 1}, *report.Entities[domain.EntityOrder])
		// O2 never made it, so its line item has no order to attach to
		assert.Equal(t, 1, report.Entities[domain.EntityOrderItem].Gaps)
	})

	t.Run("fail fast stops on write failure", func(t *testing.T) {
		graph := newFakeGraph()
		graph.failOn = func(_ string, params map[string]any) error {
			if params["id"] == "P2" {
				return errors.New("constraint violation")
			}
			return nil
		}

		report, err := NewLoader(shopFixture(), graph, Config{FailFast: true}, nil).Load(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLoadAborted)
		assert.Equal(t, domain.RunAborted, report.Status)
		assert.Equal(t, 1, report.Entities[domain.EntityProduct].Failed)
	})

	t.Run("unreadable table aborts", func(t *testing.T) {
		src := shopFixture()
		src.failOn = domain.EntityOrder

		report, err := NewLoader(src, newFakeGraph(), Config{}, nil).Load(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, errSourceDown)
		assert.Equal(t, domain.RunAborted, report.Status)
		assert.Equal(t, 2, report.Entities[domain.EntityCustomer].Written)
		assert.Zero(t, report.Entities[domain.EntityOrderItem].Read)
	})
}

func TestSplitStatements(t *testing.T) {
	got := SplitStatements(`
CREATE CONSTRAINT customer_id IF NOT EXISTS FOR (c:Customer) REQUIRE c.id IS UNIQUE;

CREATE INDEX product_price IF NOT EXISTS FOR (p:Product) ON (p.price);
  ;
`)
	assert.Equal(t, []string{
		"CREATE CONSTRAINT customer_id IF NOT EXISTS FOR (c:Customer) REQUIRE c.id IS UNIQUE",
		"CREATE INDEX product_price IF NOT EXISTS FOR (p:Product) ON (p.price)",
	}, got)
}

func TestLoader_SetupSchema(t *testing.T) {
	t.Run("runs statements in order and survives failures", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.cypher")
		require.NoError(t, os.WriteFile(path, []byte("STMT ONE;\nBROKEN;\nSTMT THREE;"), 0o644))

		graph := newFakeGraph()
		graph.failOn = func(cypher string, _ map[string]any) error {
			if cypher == "BROKEN" {
				return errors.New("syntax error")
			}
			return nil
		}

		res, err := NewLoader(shopFixture(), graph, Config{}, nil).SetupSchema(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Executed)
		assert.Equal(t, 1, res.Failed)
		assert.False(t, res.Skipped)

		require.Len(t, graph.calls, 3)
		assert.Equal(t, "STMT ONE", graph.calls[0].cypher)
		assert.Equal(t, "STMT THREE", graph.calls[2].cypher)
	})

	t.Run("missing file is skipped", func(t *testing.T) {
		graph := newFakeGraph()
		res, err := NewLoader(shopFixture(), graph, Config{}, nil).
			SetupSchema(context.Background(), filepath.Join(t.TempDir(), "absent.cypher"))
		require.NoError(t, err)
		assert.True(t, res.Skipped)
		assert.Empty(t, graph.calls)
	})
}
