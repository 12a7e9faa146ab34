package router

import (
	"time"

	"tillpoint/internal/cache"
	"tillpoint/internal/config"
	"tillpoint/internal/handler"
	"tillpoint/internal/middleware"
	"tillpoint/internal/repository/postgres"
	"tillpoint/internal/service"
	"tillpoint/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repos ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	repos := postgres.New(db)

	// ── Services ─────────────────────────────────────────────────────────────
	prices := cache.NewRedisPriceCache(rdb)
	ledger := service.NewLedgerService()
	credit := service.NewCreditService()

	// Worker dispatcher — injected into the sale flow so committed sales can
	// enqueue the async low-stock scan
	dispatcher := worker.NewDispatcher(rdb)

	saleSvc := service.NewSaleService(repos, ledger, credit, dispatcher)
	productSvc := service.NewProductService(repos, ledger, prices)
	inventorySvc := service.NewInventoryService(repos, ledger, prices)
	customerSvc := service.NewCustomerService(repos, credit)

	// ── Handlers ─────────────────────────────────────────────────────────────
	salesH := handler.NewSalesHandler(saleSvc)
	productsH := handler.NewProductsHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	priceH := handler.NewPriceCheckHandler(repos.Products, prices, time.Duration(cfg.PriceCacheTTLMin)*time.Minute)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Price check — read-only, never touches the transactional path
	r.GET("/v1/price/:code", priceH.GetByCode)

	v1 := r.Group("/v1")
	{
		v1.POST("/sales", salesH.Create)
		v1.GET("/sales", salesH.List)
		v1.GET("/sales/:id", salesH.GetByID)
		v1.POST("/sales/search", salesH.Search)

		v1.POST("/products", productsH.Create)
		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.GetByID)
		v1.GET("/products/code/:code", productsH.GetByCode)
		v1.PUT("/products/:id", productsH.Update)
		v1.DELETE("/products/:id", productsH.Deactivate)
		v1.PATCH("/products/:id/reactivate", productsH.Reactivate)
		v1.GET("/products/:id/price-history", productsH.PriceHistory)
		v1.POST("/products/search", productsH.Search)

		inv := v1.Group("/inventory")
		{
			inv.POST("/receive", inventoryH.Receive)
			inv.POST("/adjust", inventoryH.Adjust)
			inv.GET("/movements", inventoryH.Movements)
			inv.GET("/alerts", inventoryH.Alerts)
			inv.GET("/consistency", inventoryH.Consistency)
		}

		cust := v1.Group("/customers")
		{
			cust.POST("", customersH.Create)
			cust.GET("", customersH.List)
			cust.GET("/:id", customersH.GetByID)
			cust.PUT("/:id", customersH.Update)
			cust.POST("/:id/payments", customersH.PostPayment)
			cust.GET("/:id/credit", customersH.CreditStatus)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
