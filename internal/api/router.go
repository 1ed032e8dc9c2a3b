package api

import (
	v1 "github.com/coachdesk/coachdesk/internal/api/v1"
	"github.com/coachdesk/coachdesk/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Tenant       *v1.TenantHandler
	Payer        *v1.PayerHandler
	Invoice      *v1.InvoiceHandler
	Commission   *v1.CommissionHandler
	Subscription *v1.SubscriptionHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		middleware.TenantMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	tenants := router.Group("/tenants")
	{
		tenants.POST("", handlers.Tenant.CreateTenant)
		tenants.GET("", handlers.Tenant.ListTenants)
		tenants.GET("/:id", handlers.Tenant.GetTenant)
		tenants.GET("/:id/children", handlers.Tenant.ListChildren)
		tenants.GET("/:id/ancestors", handlers.Tenant.ListAncestors)
		tenants.GET("/:id/descendants", handlers.Tenant.ListDescendants)
		tenants.POST("/:id/reparent", handlers.Tenant.ReparentTenant)
	}

	payers := router.Group("/payers")
	{
		payers.POST("", handlers.Payer.CreatePayer)
		payers.GET("", handlers.Payer.ListPayers)
		payers.GET("/:id", handlers.Payer.GetPayer)
		payers.POST("/:id/deactivate", handlers.Payer.DeactivatePayer)
	}

	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/status", handlers.Invoice.UpdateInvoiceStatus)
		invoices.DELETE("/:id", handlers.Invoice.DeleteInvoice)
		invoices.POST("/generate-dues", handlers.Invoice.GenerateMonthlyDues)
	}

	commissions := router.Group("/commissions")
	{
		commissions.POST("/agreements", handlers.Commission.CreateAgreement)
		commissions.GET("/agreements", handlers.Commission.ListAgreements)
		commissions.GET("/agreements/:id", handlers.Commission.GetAgreement)
		commissions.POST("/agreements/:id/deactivate", handlers.Commission.DeactivateAgreement)
		commissions.POST("/sales", handlers.Commission.OnSaleCompleted)
		commissions.GET("/transactions", handlers.Commission.ListPendingTransactions)
		commissions.GET("/transactions/:id", handlers.Commission.GetTransaction)
		commissions.POST("/transactions/:id/pay", handlers.Commission.MarkPaid)
		commissions.POST("/payouts", handlers.Commission.BulkPayout)
	}

	plans := router.Group("/plans")
	{
		plans.POST("", handlers.Subscription.CreatePlan)
		plans.GET("/:id", handlers.Subscription.GetPlan)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("/:tenant_id", handlers.Subscription.GetSubscription)
		subscriptions.GET("/:tenant_id/limit", handlers.Subscription.CheckLimit)
		subscriptions.GET("/:tenant_id/feature", handlers.Subscription.HasFeature)
		subscriptions.POST("/:tenant_id/reconcile", handlers.Subscription.ReconcileUsage)
	}
}
