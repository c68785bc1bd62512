package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pcb-shop/controllers"
	"pcb-shop/handler"
	"pcb-shop/libs"
	"pcb-shop/middleware"
)

type Deps struct {
	Sessions controllers.SessionProvider
	Orders   controllers.OrderHistory
	Metrics  *libs.Metrics
	Checks   map[string]handler.Check
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	cartCtrl := &controllers.CartController{Sessions: deps.Sessions}
	checkoutCtrl := &controllers.CheckoutController{Sessions: deps.Sessions}
	historyCtrl := &controllers.HistoryController{Orders: deps.Orders}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/ready", gin.WrapF(handler.Readiness("pcb-shop-checkout", deps.Checks)))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/cart", cartCtrl.GetCart)
		auth.POST("/cart/items", cartCtrl.AddItem)
		auth.PATCH("/cart/items/:id", cartCtrl.UpdateItem)
		auth.DELETE("/cart/items/:id", cartCtrl.RemoveItem)
		auth.POST("/cart/items/:id/toggle", cartCtrl.ToggleItem)
		auth.POST("/cart/selection", cartCtrl.SelectItems)
		auth.DELETE("/cart/selection", cartCtrl.ClearSelection)

		auth.GET("/checkout", checkoutCtrl.GetSummary)
		auth.GET("/checkout/addresses", checkoutCtrl.GetAddresses)
		auth.PUT("/checkout/address", checkoutCtrl.SelectAddress)
		auth.PUT("/checkout/addresses/:id/default", checkoutCtrl.SetDefaultAddress)
		auth.PUT("/checkout/shipping-method", checkoutCtrl.SetShippingMethod)
		auth.GET("/checkout/payment-methods", checkoutCtrl.GetPaymentMethods)
		auth.PUT("/checkout/payment-method", checkoutCtrl.SelectPaymentMethod)
		auth.POST("/checkout/orders", checkoutCtrl.SubmitOrder)
		auth.GET("/checkout/orders", historyCtrl.GetHistory)
	}
}
