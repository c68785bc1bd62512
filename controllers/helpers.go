package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pcb-shop/libs"
	"pcb-shop/models"
	"pcb-shop/services"
)

// SessionProvider returns the opened checkout session of a user.
type SessionProvider interface {
	Get(ctx context.Context, userID string) *services.CheckoutSession
}

const sessionExpiredMessage = "session expired, please log in again"

// requestContext carries the caller's token so remote calls act on their behalf.
func requestContext(c *gin.Context) context.Context {
	return libs.WithBearerToken(c.Request.Context(), c.GetString("access_token"))
}

func currentSession(c *gin.Context, sessions SessionProvider) (*services.CheckoutSession, context.Context, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Success: false,
			Message: "User not authenticated",
		})
		return nil, nil, false
	}
	ctx := requestContext(c)
	return sessions.Get(ctx, userID), ctx, true
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondBadRequest(c *gin.Context, message string, err error) {
	resp := models.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// respondError maps domain and remote API errors onto HTTP statuses.
func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	var apiErr *libs.APIError

	switch {
	case errors.Is(err, libs.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = sessionExpiredMessage
	case errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrAddressNotFound),
		errors.Is(err, services.ErrPaymentMethodNotFound),
		errors.Is(err, libs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrItemRejected),
		errors.Is(err, services.ErrUnknownTier):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrCheckoutIncomplete):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSubmitInProgress):
		status = http.StatusConflict
	case errors.Is(err, libs.ErrUpstream):
		status = http.StatusBadGateway
	case errors.As(err, &apiErr):
		status = apiErr.Status
		if apiErr.Message != "" {
			message = apiErr.Message
		}
	}

	c.JSON(status, models.ErrorResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}
