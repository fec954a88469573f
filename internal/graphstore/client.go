package graphstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/shopgraph/shopgraph-backend/config"
	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
	"github.com/shopgraph/shopgraph-backend/internal/platform/retry"
)

const defaultQueryTimeout = 15 * time.Second

// Client runs parameterized Cypher against Neo4j. Every call opens its own
// session and runs inside a managed transaction bounded by the query timeout.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	timeout  time.Duration
	log      *logger.Logger
}

func New(cfg *config.GraphConfig, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("graphstore: config required")
	}
	if log == nil {
		log = logger.Nop()
	}

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		if cfg.MaxPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
		}
		c.SocketConnectTimeout = 10 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("graphstore: init driver: %w", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	return &Client{
		Driver:   driver,
		Database: cfg.Database,
		timeout:  timeout,
		log:      log.With("client", "Neo4j"),
	}, nil
}

// Ping verifies the driver can reach the server.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.Driver.VerifyConnectivity(ctx); err != nil {
		return classify(ctx, err)
	}
	return nil
}

// WaitReady polls Ping until the server answers or attempts run out.
func (c *Client) WaitReady(ctx context.Context, attempts int, delay time.Duration) error {
	return retry.Poll(ctx, "neo4j", attempts, delay, c.log, c.Ping)
}

// Run executes a write statement.
func (c *Client) Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return c.execute(ctx, neo4j.AccessModeWrite, cypher, params)
}

// Read executes a read-only statement.
func (c *Client) Read(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return c.execute(ctx, neo4j.AccessModeRead, cypher, params)
}

func (c *Client) execute(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) ([]Record, error) {
	if c == nil || c.Driver == nil {
		return nil, ErrClosed
	}
	if params == nil {
		params = map[string]any{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.Database,
	})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		recs, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Record, 0, len(recs))
		for _, r := range recs {
			out = append(out, Record(r.AsMap()))
		}
		return out, nil
	}

	var (
		out any
		err error
	)
	if mode == neo4j.AccessModeRead {
		out, err = session.ExecuteRead(ctx, work)
	} else {
		out, err = session.ExecuteWrite(ctx, work)
	}
	if err != nil {
		return nil, classify(ctx, err)
	}

	records, _ := out.([]Record)
	return records, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
