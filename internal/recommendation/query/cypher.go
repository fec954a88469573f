package query

// Ranking ties in every pattern fall back to product id so equal rows
// come back in a stable order.

const popularCypher = `
MATCH (p:Product)<-[:CONTAINS]-(o:Order)
WITH p, count(DISTINCT o) AS score
RETURN p.id AS product_id, p.name AS product_name, p.price AS price, score
ORDER BY score DESC, price ASC, product_id ASC
LIMIT $limit
`

const contentCypher = `
MATCH (p:Product {id: $product_id})-[:IN_CATEGORY]->(cat:Category)
MATCH (rec:Product)-[:IN_CATEGORY]->(cat)
WHERE rec.id <> p.id
OPTIONAL MATCH (rec)<-[:CONTAINS]-(o:Order)
WITH rec, count(DISTINCT o) AS score
RETURN rec.id AS product_id, rec.name AS product_name, rec.price AS price, score
ORDER BY score DESC, price ASC, product_id ASC
LIMIT $limit
`

const coPurchaseCypher = `
MATCH (p:Product {id: $product_id})<-[:CONTAINS]-(o:Order)-[:CONTAINS]->(rec:Product)
WHERE rec.id <> p.id
WITH rec, count(DISTINCT o) AS score
RETURN rec.id AS product_id, rec.name AS product_name, rec.price AS price, score
ORDER BY score DESC, price ASC, product_id ASC
LIMIT $limit
`

const collaborativeCypher = `
MATCH (c:Customer {id: $customer_id})-[:PLACED]->(:Order)-[:CONTAINS]->(p:Product)
WITH c, collect(DISTINCT p) AS purchased
MATCH (other:Customer)-[:PLACED]->(:Order)-[:CONTAINS]->(shared:Product)
WHERE other.id <> c.id AND shared IN purchased
WITH purchased, other, count(DISTINCT shared) AS overlap
ORDER BY overlap DESC, other.id ASC
LIMIT $neighbors
MATCH (other)-[:PLACED]->(:Order)-[:CONTAINS]->(rec:Product)
WHERE NOT rec IN purchased
WITH rec, count(DISTINCT other) AS score
RETURN rec.id AS product_id, rec.name AS product_name, rec.price AS price, score
ORDER BY score DESC, price ASC, product_id ASC
LIMIT $limit
`

// Each count is aggregated before the next OPTIONAL MATCH so the
// interaction kinds never multiply into each other.
const journeyCypher = `
MATCH (c:Customer {id: $customer_id})
OPTIONAL MATCH (c)-[:VIEWED]->(viewed:Product)
WITH c, count(DISTINCT viewed) AS views
OPTIONAL MATCH (c)-[:CLICKED]->(clicked:Product)
WITH c, views, count(DISTINCT clicked) AS clicks
OPTIONAL MATCH (c)-[:ADDED_TO_CART]->(added:Product)
WITH c, views, clicks, count(DISTINCT added) AS cart_additions
OPTIONAL MATCH (c)-[:PLACED]->(:Order)-[:CONTAINS]->(purchased:Product)
WITH c, views, clicks, cart_additions, count(DISTINCT purchased) AS purchases
RETURN c.id AS customer_id, c.name AS customer_name,
       views, clicks, cart_additions, purchases
`

// Each count runs in its own subquery so an empty label still yields 0.
const statsCypher = `
CALL { MATCH (c:Customer) RETURN count(c) AS customers }
CALL { MATCH (p:Product) RETURN count(p) AS products }
CALL { MATCH (o:Order) RETURN count(o) AS orders }
CALL { MATCH (cat:Category) RETURN count(cat) AS categories }
CALL { MATCH ()-[r]->() RETURN count(r) AS relationships }
RETURN customers, products, orders, categories, relationships
`

const listCustomersCypher = `
MATCH (c:Customer)
RETURN c.id AS id, c.name AS name, c.join_date AS join_date
ORDER BY name, id
`

const listProductsCypher = `
MATCH (p:Product)
OPTIONAL MATCH (p)-[:IN_CATEGORY]->(cat:Category)
RETURN p.id AS id, p.name AS name, p.price AS price, cat.name AS category
ORDER BY name, id
`
