package domain

// Strategy names a recommendation pattern. The values are part of the API
// response.
type Strategy string

const (
	StrategyPopular       Strategy = "popular_products"
	StrategyContent       Strategy = "content_based"
	StrategyCoPurchase    Strategy = "co_purchase"
	StrategyCollaborative Strategy = "collaborative_filtering"
)

// ScoreField is the response field carrying the strategy's ranking count.
func (s Strategy) ScoreField() string {
	switch s {
	case StrategyPopular:
		return "order_count"
	case StrategyCoPurchase:
		return "co_purchase_count"
	default:
		return "popularity"
	}
}

const (
	// NeighborLimit is how many similar customers collaborative filtering
	// draws candidates from.
	NeighborLimit = 10

	DefaultLimit = 5
)

// Recommendation is one ranked product. Score is the strategy's ranking
// count: orders, co-occurrences or distinct neighbours.
type Recommendation struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Score       int64   `json:"score"`
}

// Journey counts distinct products per interaction kind. The counts
// overlap: a product both viewed and purchased appears in both.
type Journey struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	Views         int64  `json:"views"`
	Clicks        int64  `json:"clicks"`
	CartAdditions int64  `json:"cart_additions"`
	Purchases     int64  `json:"purchases"`
}

type Stats struct {
	Customers     int64 `json:"customers"`
	Products      int64 `json:"products"`
	Orders        int64 `json:"orders"`
	Categories    int64 `json:"categories"`
	Relationships int64 `json:"relationships"`
}

type CustomerSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JoinDate string `json:"join_date"`
}

type ProductSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}
