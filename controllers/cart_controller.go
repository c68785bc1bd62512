package controllers

import (
	"github.com/gin-gonic/gin"

	"pcb-shop/models"
	"pcb-shop/services"
)

type CartController struct {
	Sessions SessionProvider
}

// @Summary Get cart
// @Description Get the cart lines, the checkout selection and totals
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 401 {object} models.ErrorResponse
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	session, _, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	respondOK(c, "Cart retrieved", session.Cart().View())
}

// @Summary Add cart item
// @Description Add a product (and optional variant) to the cart; the same product and variant merge into one line
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.AddCartItemRequest true "Item to add"
// @Success 200 {object} models.Response{data=models.CartItem}
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.PriceAtAdd == 0 {
		req.PriceAtAdd = req.Product.Price
	}

	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	item, err := session.AddItem(ctx, services.AddItemInput{
		ProductID:  req.ProductID,
		VariantID:  req.VariantID,
		Quantity:   req.Quantity,
		PriceAtAdd: req.PriceAtAdd,
		Product:    req.Product,
		Variant:    req.Variant,
	})
	if err != nil {
		respondError(c, "Failed to add item to cart", err)
		return
	}
	respondOK(c, "Item added to cart", item)
}

// @Summary Update cart item quantity
// @Description A quantity of zero or less removes the line
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart item ID"
// @Param body body models.UpdateCartItemRequest true "New quantity"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{id} [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	if err := session.UpdateQuantity(ctx, c.Param("id"), *req.Quantity); err != nil {
		respondError(c, "Failed to update cart item", err)
		return
	}
	respondOK(c, "Cart item updated", session.Cart().View())
}

// @Summary Remove cart item
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cart item ID"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	if err := session.RemoveItem(ctx, c.Param("id")); err != nil {
		respondError(c, "Failed to remove cart item", err)
		return
	}
	respondOK(c, "Cart item removed", session.Cart().View())
}

// @Summary Toggle cart item selection
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cart item ID"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{id}/toggle [post]
func (ctrl *CartController) ToggleItem(c *gin.Context) {
	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	if err := session.ToggleSelectItem(ctx, c.Param("id")); err != nil {
		respondError(c, "Failed to toggle cart item", err)
		return
	}
	respondOK(c, "Cart selection updated", session.Cart().View())
}

// @Summary Select cart items
// @Description Check or uncheck the given lines, or every line when ids is empty
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.SelectItemsRequest true "Selection"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/selection [post]
func (ctrl *CartController) SelectItems(c *gin.Context) {
	var req models.SelectItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	session.SelectAll(ctx, req.Checked, req.IDs...)
	respondOK(c, "Cart selection updated", session.Cart().View())
}

// @Summary Clear cart selection
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/selection [delete]
func (ctrl *CartController) ClearSelection(c *gin.Context) {
	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	session.ClearSelectedItems(ctx)
	respondOK(c, "Cart selection cleared", session.Cart().View())
}
