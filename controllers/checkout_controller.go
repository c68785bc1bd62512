package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pcb-shop/models"
	"pcb-shop/services"
)

type CheckoutController struct {
	Sessions SessionProvider
}

// @Summary Get checkout summary
// @Description Cart, addresses, shipping quote, payment methods and what still blocks submission
// @Tags Checkout
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.CheckoutSummary}
// @Failure 401 {object} models.ErrorResponse
// @Router /checkout [get]
func (ctrl *CheckoutController) GetSummary(c *gin.Context) {
	session, _, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	respondOK(c, "Checkout summary retrieved", session.Summary())
}

// @Summary Get shipping addresses
// @Tags Checkout
// @Security BearerAuth
// @Produce json
// @Param refresh query bool false "Reload from the storefront"
// @Success 200 {object} models.Response{data=models.AddressState}
// @Router /checkout/addresses [get]
func (ctrl *CheckoutController) GetAddresses(c *gin.Context) {
	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		if err := session.LoadAddresses(ctx); err != nil {
			respondError(c, "Failed to load shipping addresses", err)
			return
		}
	}
	respondOK(c, "Shipping addresses retrieved", session.Addresses())
}

// @Summary Choose shipping address
// @Tags Checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.SelectAddressRequest true "Address"
// @Success 200 {object} models.Response{data=models.CheckoutSummary}
// @Failure 404 {object} models.ErrorResponse
// @Router /checkout/address [put]
func (ctrl *CheckoutController) SelectAddress(c *gin.Context) {
	var req models.SelectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	if _, err := session.SelectAddress(ctx, req.AddressID); err != nil {
		respondError(c, "Failed to select shipping address", err)
		return
	}
	respondOK(c, "Shipping address selected", session.Summary())
}

// @Summary Set default shipping address
// @Tags Checkout
// @Security BearerAuth
// @Produce json
// @Param id path string true "Address ID"
// @Success 200 {object} models.Response{data=models.AddressState}
// @Failure 404 {object} models.ErrorResponse
// @Router /checkout/addresses/{id}/default [put]
func (ctrl *CheckoutController) SetDefaultAddress(c *gin.Context) {
	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	if err := session.SetDefaultAddress(ctx, c.Param("id")); err != nil {
		respondError(c, "Failed to set default address", err)
		return
	}
	respondOK(c, "Default address updated", session.Addresses())
}

// @Summary Choose shipping method
// @Description standard or fast; fast is only quoted for order values between 1 and 20,000,000
// @Tags Checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.ShippingMethodRequest true "Tier"
// @Success 200 {object} models.Response{data=models.ShippingQuote}
// @Failure 400 {object} models.ErrorResponse
// @Router /checkout/shipping-method [put]
func (ctrl *CheckoutController) SetShippingMethod(c *gin.Context) {
	var req models.ShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}
	tier, err := services.ParseTier(req.Tier)
	if err != nil {
		respondBadRequest(c, "Invalid shipping method", err)
		return
	}

	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	quote, err := session.SetShippingTier(ctx, tier)
	if err != nil {
		respondError(c, "Failed to set shipping method", err)
		return
	}
	respondOK(c, "Shipping method updated", quote)
}

// @Summary Get payment methods
// @Tags Checkout
// @Security BearerAuth
// @Produce json
// @Param refresh query bool false "Reload after a failure"
// @Success 200 {object} models.Response{data=models.PaymentState}
// @Router /checkout/payment-methods [get]
func (ctrl *CheckoutController) GetPaymentMethods(c *gin.Context) {
	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		if err := session.RefreshPaymentMethods(ctx); err != nil {
			respondError(c, "Failed to load payment methods", err)
			return
		}
	}
	respondOK(c, "Payment methods retrieved", session.Payments())
}

// @Summary Choose payment method
// @Tags Checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.PaymentMethodRequest true "Payment method code"
// @Success 200 {object} models.Response{data=models.PaymentState}
// @Failure 404 {object} models.ErrorResponse
// @Router /checkout/payment-method [put]
func (ctrl *CheckoutController) SelectPaymentMethod(c *gin.Context) {
	var req models.PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	session, _, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	if _, err := session.SelectPaymentMethod(req.Code); err != nil {
		respondError(c, "Failed to select payment method", err)
		return
	}
	respondOK(c, "Payment method selected", session.Payments())
}

// @Summary Place order
// @Description Submit the selected items with the chosen address, shipping and payment
// @Tags Checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.SubmitOrderRequest false "Order note"
// @Success 201 {object} models.Response{data=models.SubmitOrderResponse}
// @Failure 422 {object} models.ErrorResponse
// @Router /checkout/orders [post]
func (ctrl *CheckoutController) SubmitOrder(c *gin.Context) {
	var req models.SubmitOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body", err)
			return
		}
	}

	session, ctx, ok := currentSession(c, ctrl.Sessions)
	if !ok {
		return
	}
	result, sent, err := session.Submit(ctx, services.SubmitOptions{
		Note:  req.Note,
		Email: c.GetString("user_email"),
	})
	if err != nil {
		respondError(c, "Failed to place order", err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Order placed",
		Data:    models.SubmitOrderResponse{Order: *result, Sent: sent},
	})
}
