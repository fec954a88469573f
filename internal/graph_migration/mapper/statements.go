package mapper

import "github.com/shopgraph/shopgraph-backend/internal/graph_migration/domain"

// Every statement returns a single row with a "linked" column that tells the
// loader whether the relationship step found its endpoints.

const upsertCategory = `
MERGE (cat:Category {id: $id})
SET cat.name = $name
RETURN true AS linked
`

const upsertProduct = `
MERGE (p:Product {id: $id})
SET p.name = $name, p.price = $price
WITH p
OPTIONAL MATCH (p)-[stale:IN_CATEGORY]->(old:Category)
WHERE old.id <> $category_id
DELETE stale
WITH DISTINCT p
OPTIONAL MATCH (cat:Category {id: $category_id})
FOREACH (_ IN CASE WHEN cat IS NULL THEN [] ELSE [1] END |
  MERGE (p)-[:IN_CATEGORY]->(cat))
RETURN cat IS NOT NULL AS linked
`

const upsertCustomer = `
MERGE (c:Customer {id: $id})
SET c.name = $name, c.join_date = date($join_date)
RETURN true AS linked
`

const upsertOrder = `
MERGE (o:Order {id: $id})
SET o.ts = datetime($ts)
WITH o
OPTIONAL MATCH (prev:Customer)-[stale:PLACED]->(o)
WHERE prev.id <> $customer_id
DELETE stale
WITH DISTINCT o
OPTIONAL MATCH (c:Customer {id: $customer_id})
FOREACH (_ IN CASE WHEN c IS NULL THEN [] ELSE [1] END |
  MERGE (c)-[:PLACED]->(o))
RETURN c IS NOT NULL AS linked
`

const upsertOrderItem = `
MATCH (o:Order {id: $order_id})
MATCH (p:Product {id: $product_id})
MERGE (o)-[r:CONTAINS]->(p)
SET r.quantity = $quantity
RETURN count(r) AS linked
`

// Event edges are created per row. Relationship types cannot be
// parameterized in Cypher, so each kind has its own fixed statement.
var createEvent = map[domain.EventKind]string{
	domain.EventView: `
MATCH (c:Customer {id: $customer_id})
MATCH (p:Product {id: $product_id})
CREATE (c)-[r:VIEWED]->(p)
SET r.ts = datetime($ts), r.event_id = $event_id
RETURN count(r) AS linked
`,
	domain.EventClick: `
MATCH (c:Customer {id: $customer_id})
MATCH (p:Product {id: $product_id})
CREATE (c)-[r:CLICKED]->(p)
SET r.ts = datetime($ts), r.event_id = $event_id
RETURN count(r) AS linked
`,
	domain.EventAddToCart: `
MATCH (c:Customer {id: $customer_id})
MATCH (p:Product {id: $product_id})
CREATE (c)-[r:ADDED_TO_CART]->(p)
SET r.ts = datetime($ts), r.event_id = $event_id
RETURN count(r) AS linked
`,
	domain.EventOther: `
MATCH (c:Customer {id: $customer_id})
MATCH (p:Product {id: $product_id})
CREATE (c)-[r:INTERACTED]->(p)
SET r.ts = datetime($ts), r.event_id = $event_id
RETURN count(r) AS linked
`,
}

// mergeEvent keys the edge on event_id so reloading the same rows is a no-op.
var mergeEvent = map[domain.EventKind]string{
	domain.EventView: `
MATCH (c:Customer {id: $customer_id})
MATCH (p:Product {id: $product_id})
MERGE (c)-[r:VIEWED {event_id: $event_id}]->(p)
SET r.ts = datetime($ts)
RETURN count(r) AS linked
`,
	domain.EventClick: `
MATCH (c:Customer {id: $customer_id})
MATCH (p:Product {id: $product_id})
MERGE (c)-[r:CLICKED {event_id: $event_id}]->(p)
SET r.ts = datetime($ts)
RETURN count(r) AS linked
`,
	domain.EventAddToCart: `
MATCH (c:Customer {id: $customer_id})
MATCH (p:Product {id: $product_id})
MERGE (c)-[r:ADDED_TO_CART {event_id: $event_id}]->(p)
SET r.ts = datetime($ts)
RETURN count(r) AS linked
`,
	domain.EventOther: `
MATCH (c:Customer {id: $customer_id})
MATCH (p:Product {id: $product_id})
MERGE (c)-[r:INTERACTED {event_id: $event_id}]->(p)
SET r.ts = datetime($ts)
RETURN count(r) AS linked
`,
}
