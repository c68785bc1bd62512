package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pcb-shop/models"
)

type OrderHistory interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.OrderRecord, error)
}

type HistoryController struct {
	Orders OrderHistory
}

// @Summary Get submitted orders
// @Description Orders placed through checkout, newest first
// @Tags History
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max orders (default 20, max 100)"
// @Success 200 {object} models.Response{data=[]models.OrderRecord}
// @Router /checkout/orders [get]
func (ctrl *HistoryController) GetHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	if ctrl.Orders == nil {
		respondOK(c, "Order history retrieved", []models.OrderRecord{})
		return
	}

	orders, err := ctrl.Orders.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Message: "Failed to load order history",
			Error:   err.Error(),
		})
		return
	}
	if orders == nil {
		orders = []models.OrderRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order history retrieved",
		"data":    orders,
		"meta": gin.H{
			"limit": limit,
			"count": len(orders),
		},
	})
}
