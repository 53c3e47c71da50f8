package api

import (
	"net/http"
	"time"

	"collect-and-cruise/internal/api/handlers"
	"collect-and-cruise/internal/api/middleware"
	"collect-and-cruise/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the services the router exposes. UploadDir is served under
// /uploads when set.
type Deps struct {
	Auth     *services.AuthService
	Catalog  *services.CatalogService
	Cart     *services.CartService
	Wishlist *services.WishlistService
	Orders   *services.OrderService
	Admin    *services.AdminService

	CORSOrigins []string
	UploadDir   string
	Production  bool
}

// NewRouter builds the HTTP router for the storefront API.
func NewRouter(d Deps) *gin.Engine {
	if d.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.UseJSONFieldNames()
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.ErrorHandler(d.Production))

	authH := handlers.NewAuthHandler(d.Auth)
	productH := handlers.NewProductHandler(d.Catalog)
	cartH := handlers.NewCartHandler(d.Cart)
	wishlistH := handlers.NewWishlistHandler(d.Wishlist)
	orderH := handlers.NewOrderHandler(d.Orders)
	userH := handlers.NewUserHandler(d.Admin)

	protect := middleware.Protect(d.Auth)
	adminOnly := middleware.AdminOnly()

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	api := r.Group("/api")

	authG := api.Group("/auth")
	{
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
	}

	products := api.Group("/products")
	{
		products.GET("", productH.List)
		products.GET("/:id", productH.Get)
		products.POST("/:id/reviews", protect, productH.AddReview)
	}

	users := api.Group("/users")
	{
		users.POST("/login", authH.Login)
		users.GET("", protect, adminOnly, userH.List)
		users.GET("/profile", protect, authH.Profile)

		users.GET("/cart", protect, cartH.Get)
		users.POST("/cart", protect, cartH.Add)
		users.POST("/cart/merge", protect, cartH.Merge)
		users.DELETE("/cart/:productId", protect, cartH.Remove)

		users.GET("/wishlist", protect, wishlistH.Get)
		users.POST("/wishlist", protect, wishlistH.Add)
		users.POST("/wishlist/toggle", protect, wishlistH.Toggle)
		users.DELETE("/wishlist/:productId", protect, wishlistH.Remove)
	}

	orders := api.Group("/orders", protect)
	{
		orders.POST("", orderH.Checkout)
		orders.GET("", orderH.List)
		orders.GET("/has-purchased/:productId", orderH.HasPurchased)
		orders.GET("/:id", orderH.Get)
	}

	admin := api.Group("/admin", protect, adminOnly)
	{
		admin.GET("/products", productH.List)
		admin.POST("/products", productH.Create)
		admin.PUT("/products/:id", productH.Update)
		admin.DELETE("/products/:id", productH.Delete)

		admin.GET("/users", userH.List)
		admin.GET("/users/:id", userH.Get)
		admin.PUT("/users/:id", userH.Update)
		admin.DELETE("/users/:id", userH.Delete)
	}

	r.NoRoute(middleware.NotFound)
	return r
}
