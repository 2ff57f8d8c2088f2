package handlers

import (
	"github.com/labstack/echo/v4"
)

// Routes bundles the handlers mounted under the protected API group
type Routes struct {
	Invoices   *InvoiceHandlers
	Businesses *BusinessHandlers
	TDS        *TDSHandlers
	Claims     *ClaimHandlers
}

// Register mounts every protected route on g
func (r Routes) Register(g *echo.Group) {
	invoices := g.Group("/invoices")
	invoices.POST("", r.Invoices.CreateInvoice)
	invoices.POST("/due-date", r.Invoices.ComputeDueDate)
	invoices.GET("/:id", r.Invoices.GetInvoice)
	invoices.DELETE("/:id", r.Invoices.DeleteInvoice)
	invoices.POST("/:id/payments", r.Invoices.RecordPayment)
	invoices.GET("/:id/document", r.Invoices.DownloadDocument)
	invoices.POST("/:id/document/archive", r.Invoices.ArchiveDocument)
	invoices.GET("/:id/document/link", r.Invoices.DocumentLink)

	g.POST("/businesses", r.Businesses.CreateBusiness)
	g.GET("/tds-entries", r.TDS.ListEntries)
	g.POST("/claims", r.Claims.Evaluate)
}

// RegisterHealth mounts the unauthenticated probes on e
func RegisterHealth(e *echo.Echo, h *HealthHandlers) {
	e.GET("/health", h.HealthCheck)
	e.GET("/health/ready", h.ReadinessCheck)
	e.GET("/health/live", h.LivenessCheck)
}
