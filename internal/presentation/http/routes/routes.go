package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billbook-api/internal/application/service"
	"github.com/sangkips/billbook-api/internal/config"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/internal/presentation/http/handler"
	"github.com/sangkips/billbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/billbook-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Vendor    *handler.VendorHandler
	Customer  *handler.CustomerHandler
	Challan   *handler.ChallanHandler
	Bill      *handler.BillHandler
	Payment   *handler.PaymentHandler
	Dashboard *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Scope           *service.ScopeResolver
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	rateLimiter := middleware.NewVendorRateLimiter(middleware.RateLimiterConfigFrom(deps.Cfg.RateLimit))

	v1 := router.Group("/api/v1")
	{
		// Public routes, limited per client IP
		public := v1.Group("")
		public.Use(rateLimiter.Middleware())
		registerAuthRoutes(public, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		protected.GET("/profile", h.Auth.GetProfile)
		protected.PUT("/profile/password", h.Auth.ChangePassword)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(enum.RoleAdmin))
		admin.GET("/vendors", h.Vendor.ListVendors)

		// Everything below works on one vendor's books
		scoped := protected.Group("")
		scoped.Use(middleware.VendorScope(deps.Scope))
		scoped.Use(rateLimiter.Middleware())
		scoped.Use(middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}))

		staff := scoped.Group("")
		staff.Use(middleware.RequireRole(enum.RoleVendor, enum.RoleAdmin))
		registerVendorRoutes(staff, h)
		registerCustomerRoutes(staff, h)
		registerChallanRoutes(staff, h)
		registerBillRoutes(staff, h)
		registerPaymentRoutes(staff, h)

		me := scoped.Group("/me")
		me.Use(middleware.RequireRole(enum.RoleCustomer))
		me.GET("/bills", h.Dashboard.MyBills)
		me.GET("/payments", h.Dashboard.MyPayments)
		me.GET("/outstanding", h.Dashboard.MyOutstanding)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/otp/request", h.Auth.RequestOTP)
		auth.POST("/otp/verify", h.Auth.VerifyOTP)
	}
}

func registerVendorRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/vendor", h.Vendor.GetVendor)
	rg.PUT("/vendor", h.Vendor.UpdateVendor)

	rg.GET("/invoice-settings", h.Vendor.GetInvoiceSettings)
	rg.PUT("/invoice-settings", h.Vendor.UpdateInvoiceSettings)

	slabs := rg.Group("/gst-slabs")
	{
		slabs.GET("", h.Vendor.ListGstSlabs)
		slabs.POST("", h.Vendor.CreateGstSlab)
		slabs.PUT("/:id", h.Vendor.UpdateGstSlab)
		slabs.DELETE("/:id", h.Vendor.DeleteGstSlab)
	}

	rg.GET("/dashboard", h.Dashboard.GetStats)
	rg.GET("/summary", h.Dashboard.GetSummary)
}

func registerCustomerRoutes(rg *gin.RouterGroup, h *Handlers) {
	customers := rg.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
		customers.GET("/:id/outstanding", h.Customer.Outstanding)
		customers.GET("/:id/ledger", h.Customer.Ledger)
	}

	imports := rg.Group("/imports")
	{
		imports.POST("", h.Customer.Import)
		imports.GET("/:id", h.Customer.ImportStatus)
	}
}

func registerChallanRoutes(rg *gin.RouterGroup, h *Handlers) {
	challans := rg.Group("/challans")
	{
		challans.GET("", h.Challan.List)
		challans.POST("", h.Challan.Create)
		challans.GET("/:id", h.Challan.Get)
		challans.DELETE("/:id", h.Challan.Delete)
		challans.POST("/:id/pay", h.Challan.Pay)
		challans.POST("/:id/reconcile", h.Challan.Reconcile)
		challans.POST("/:id/cancel", h.Challan.Cancel)
	}
}

func registerBillRoutes(rg *gin.RouterGroup, h *Handlers) {
	bills := rg.Group("/bills")
	{
		bills.GET("", h.Bill.List)
		bills.POST("", h.Bill.Create)
		bills.GET("/:id", h.Bill.Get)
		bills.PUT("/:id", h.Bill.Update)
		bills.DELETE("/:id", h.Bill.Delete)
		bills.POST("/:id/pay", h.Bill.Pay)
		bills.POST("/:id/cancel", h.Bill.Cancel)
	}
}

func registerPaymentRoutes(rg *gin.RouterGroup, h *Handlers) {
	payments := rg.Group("/payments")
	{
		payments.GET("", h.Payment.List)
		payments.POST("", h.Payment.Create)
		payments.POST("/opening-balance", h.Payment.OpeningBalance)
		payments.GET("/:id", h.Payment.Get)
		payments.PUT("/:id", h.Payment.Update)
		payments.DELETE("/:id", h.Payment.Delete)
		payments.POST("/:id/refresh-outstanding", h.Payment.RefreshOutstanding)
	}

	rg.GET("/transactions", h.Payment.Transactions)
}
