package routes

import (
	"net/http"
	"time"

	"littlelemon/controllers"
	"littlelemon/middlewares"
	"littlelemon/pkg/events"
	"littlelemon/pkg/ratelimit"
	"littlelemon/repository"
	"littlelemon/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs from main.
type Deps struct {
	DB        *gorm.DB
	JWTSecret string
	JWTTTL    time.Duration
	Limiter   ratelimit.Limiter
	RateLimit middlewares.RateLimitOptions
	Events    events.Publisher
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	groupRepo := repository.NewGroupRepository(d.DB)
	catRepo := repository.NewCategoryRepository(d.DB)
	menuRepo := repository.NewMenuRepository(d.DB)
	cartRepo := repository.NewCartRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)

	// Services
	authSvc := services.NewAuthService(userRepo, groupRepo, d.JWTSecret, d.JWTTTL)
	menuSvc := services.NewMenuService(menuRepo, catRepo)
	catSvc := services.NewCategoryService(catRepo)
	cartSvc := services.NewCartService(d.DB, cartRepo, menuRepo)
	orderSvc := services.NewOrderService(d.DB, orderRepo, cartRepo, userRepo, groupRepo, d.Events)
	groupSvc := services.NewGroupService(d.DB, groupRepo, userRepo)

	// Controllers
	authCtrl := controllers.NewAuthController(authSvc)
	menuCtrl := controllers.NewMenuController(menuSvc)
	catCtrl := controllers.NewCategoryController(catSvc)
	cartCtrl := controllers.NewCartController(cartSvc)
	orderCtrl := controllers.NewOrderController(orderSvc)

	limiter := d.Limiter
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter()
	}
	throttle := middlewares.RateLimit(limiter, d.RateLimit)
	authn := []gin.HandlerFunc{
		middlewares.Authenticate(authSvc, throttle),
		throttle,
	}

	// Auth
	a := r.Group("/auth", authn...)
	{
		a.POST("/register", authCtrl.Register)
		a.POST("/login", authCtrl.Login)
		a.GET("/me", authCtrl.Me)
	}

	api := r.Group("/api", authn...)

	// Menu items (read: anyone, write: Manager)
	menu := api.Group("/menu-items", middlewares.Gate(services.ResourceMenu))
	{
		menu.GET("", menuCtrl.List)
		menu.POST("", menuCtrl.Create)
		menu.GET("/:id", menuCtrl.Get)
		menu.PUT("/:id", menuCtrl.Replace)
		menu.PATCH("/:id", menuCtrl.Patch)
		menu.DELETE("/:id", menuCtrl.Delete)
	}

	cats := api.Group("/categories", middlewares.Gate(services.ResourceCategory))
	{
		cats.GET("", catCtrl.List)
		cats.POST("", catCtrl.Create)
	}

	// Cart (customers only)
	cart := api.Group("/cart/menu-items", middlewares.Gate(services.ResourceCart))
	{
		cart.GET("", cartCtrl.List)
		cart.POST("", cartCtrl.Add)
		cart.DELETE("", cartCtrl.Clear)
		cart.DELETE("/:id", cartCtrl.Remove)
	}

	// Orders (rows filtered by role in the service)
	orders := api.Group("/orders", middlewares.Gate(services.ResourceOrder))
	{
		orders.GET("", orderCtrl.List)
		orders.POST("", orderCtrl.Create)
		orders.GET("/:id", orderCtrl.Get)
		orders.PUT("/:id", orderCtrl.Replace)
		orders.PATCH("/:id", orderCtrl.Patch)
		orders.DELETE("/:id", orderCtrl.Delete)
	}

	// Groups (Manager only)
	groups := api.Group("/groups", middlewares.Gate(services.ResourceGroup))
	for _, slug := range []string{"manager", "delivery-crew"} {
		name, _ := services.GroupNameFromSlug(slug)
		ctrl := controllers.NewGroupController(groupSvc, name)
		g := groups.Group("/" + slug + "/users")
		g.GET("", ctrl.List)
		g.POST("", ctrl.Add)
		g.DELETE("/:userId", ctrl.Remove)
	}
}
