package http

import "github.com/gin-gonic/gin"

// Register registers the query routes
func (h *Handler) Register(rg gin.IRouter) {
	rg.GET("/customers", h.ListCustomers)
	rg.GET("/products", h.ListProducts)

	rec := rg.Group("/recommendations")
	rec.GET("/popular", h.Popular)
	rec.GET("/content/:product_id", h.ContentBased)
	rec.GET("/co-purchase/:product_id", h.CoPurchase)
	rec.GET("/collaborative/:customer_id", h.Collaborative)

	rg.GET("/analytics/customer-journey/:customer_id", h.CustomerJourney)
	rg.GET("/stats", h.Stats)

	rg.GET("/loads", h.ListLoads)
	rg.GET("/loads/:id", h.GetLoad)
}
