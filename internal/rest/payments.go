package rest

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"futureBridge/business/payments"
	"futureBridge/domain"
	"futureBridge/pkg/logger"
)

type (
	PaymentsHandler struct {
		validate        *validator.Validate
		paymentsService PaymentsService
	}

	PaymentsService interface {
		InitiatePayment(ctx context.Context, req payments.InitiateRequest) (domain.PaymentWithLink, error)
		VerifyAndSavePayment(ctx context.Context, orderID string) (bool, error)
		HandleWebhook(ctx context.Context, body []byte, signature string) error
		FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error)
		DropPaymentDetails(ctx context.Context, username string) (bool, error)
	}

	OrderIDInput struct {
		OrderID string `json:"order_id" validate:"required"`
	}
)

func NewPaymentsHandler(paymentsService PaymentsService) *PaymentsHandler {
	return &PaymentsHandler{
		validate:        validator.New(),
		paymentsService: paymentsService,
	}
}

func (h *PaymentsHandler) InitiatePayment(c echo.Context) error {
	var request payments.InitiateRequest
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Initiate payment validation failed", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	order, err := h.paymentsService.InitiatePayment(c.Request().Context(), request)
	if err != nil {
		logger.Error("Failed to initiate payment", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(order))
}

func (h *PaymentsHandler) VerifyPayment(c echo.Context) error {
	var request OrderIDInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	paid, err := h.paymentsService.VerifyAndSavePayment(c.Request().Context(), request.OrderID)
	if err != nil {
		logger.Error("Failed to verify payment", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]any{"order_id": request.OrderID, "paid": paid}))
}

func (h *PaymentsHandler) PaymentInfo(c echo.Context) error {
	var request OrderIDInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	payment, err := h.paymentsService.FindByOrderID(c.Request().Context(), request.OrderID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "order not found"})
	}
	if err != nil {
		logger.Error("Failed to fetch payment info", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(payment))
}

// DeletePayment drops all payment rows of the authenticated user.
func (h *PaymentsHandler) DeletePayment(c echo.Context) error {
	email := c.Get("email").(string)

	deleted, err := h.paymentsService.DropPaymentDetails(c.Request().Context(), email)
	if err != nil {
		logger.Error("Failed to delete payment details", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no payment details found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("payment details deleted"))
}

// Webhook settles orders from gateway callbacks. The raw body is needed for
// signature verification, so it is read before any decoding.
func (h *PaymentsHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.Error("Failed to read webhook body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "unreadable body"})
	}
	signature := c.Request().Header.Get("X-Razorpay-Signature")

	err = h.paymentsService.HandleWebhook(c.Request().Context(), body, signature)
	if errors.Is(err, payments.ErrBadSignature) {
		logger.Warn("webhook signature rejected")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "invalid signature"})
	}
	if err != nil {
		logger.Error("Failed to handle webhook", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("ok"))
}
