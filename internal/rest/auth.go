package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"

	"futureBridge/business/user"
	"futureBridge/domain"
	"futureBridge/pkg/logger"
)

type ResponseError struct {
	Message string `json:"message"`
}

type (
	AuthHandler struct {
		userService UserService
	}

	UserService interface {
		RequestOTP(ctx context.Context, email string) error
		ValidateOTP(ctx context.Context, email, otp string) (user.ValidateOTPResult, error)
	}

	SendOTPInput struct {
		Email string `json:"email"`
	}

	ValidateOTPInput struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
)

func NewAuthHandler(userService UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

func (h *AuthHandler) SendOTP(c echo.Context) error {
	var request SendOTPInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	err := h.userService.RequestOTP(c.Request().Context(), request.Email)
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err != nil {
		logger.Error("Failed to send otp", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("OTP sent"))
}

func (h *AuthHandler) ValidateOTP(c echo.Context) error {
	var request ValidateOTPInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	result, err := h.userService.ValidateOTP(c.Request().Context(), request.Email, request.OTP)
	if err != nil {
		logger.Error("Failed to validate otp", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !result.IsValid {
		return c.JSON(http.StatusUnauthorized, result)
	}

	return c.JSON(http.StatusOK, result)
}
