package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/service"
)

// NewRouter wires the session behind a gin engine. With no origins every
// origin is allowed.
func NewRouter(sess *service.Session, logger *logrus.Logger, origins ...string) *gin.Engine {
	r := gin.New()
	r.Use(requestID())
	r.Use(requestLogger(logger))
	r.Use(recovery(logger))

	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AddAllowHeaders("X-Request-ID")
	corsConfig.AddExposeHeaders("X-Request-ID", "Content-Disposition")
	r.Use(cors.New(corsConfig))

	h := NewHandler(sess)
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")

	chems := v1.Group("/chemicals")
	chems.GET("", h.ListChemicals)
	chems.POST("", h.CreateChemical)
	chems.GET("/:id", h.GetChemical)
	chems.POST("/:id/stock", h.AddChemicalStock)
	chems.POST("/:id/adjust", h.AdjustChemicalStock)
	chems.PUT("/:id/rate", h.SetChemicalRate)
	chems.DELETE("/:id", h.DeleteChemical)

	pack := v1.Group("/packaging")
	pack.GET("", h.ListPackaging)
	pack.POST("", h.CreatePackaging)
	pack.POST("/:type/adjust", h.AdjustPackagingStock)
	pack.PUT("/:type/rate", h.SetPackagingRate)
	pack.DELETE("/:type", h.DeletePackaging)

	v1.GET("/stock/low", h.LowStock)
	v1.GET("/stock/movements", h.Movements)

	v1.GET("/formulas", h.ListFormulas)
	v1.GET("/formulas/:product", h.GetFormula)

	v1.GET("/products", h.ListProductDetails)
	v1.PUT("/products", h.PutProductDetails)
	v1.DELETE("/products/:product", h.DeleteProductDetails)

	prod := v1.Group("/production")
	prod.POST("/preview", h.Preview)
	prod.POST("/commit", h.Commit)
	prod.GET("/history", h.History)

	vendors := v1.Group("/vendors")
	vendors.GET("/transactions", h.ListTransactions)
	vendors.POST("/transactions", h.CreateTransaction)
	vendors.PUT("/transactions/:id", h.UpdateTransaction)
	vendors.DELETE("/transactions/:id", h.DeleteTransaction)
	vendors.GET("/payments", h.ListPayments)
	vendors.POST("/payments", h.CreatePayment)
	vendors.PUT("/payments/:id", h.UpdatePayment)
	vendors.DELETE("/payments/:id", h.DeletePayment)
	vendors.GET("/balances", h.Balances)
	vendors.GET("/balances/:vendor", h.Balance)

	v1.GET("/settings", h.GetSettings)
	v1.PUT("/settings", h.PutSettings)

	reports := v1.Group("/reports")
	reports.GET("/stock", h.StockReport)
	reports.GET("/vendor-ledger", h.VendorLedgerReport)
	reports.GET("/production", h.ProductionReport)

	v1.GET("/export", h.Export)
	v1.POST("/import", h.Import)

	return r
}
