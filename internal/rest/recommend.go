package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"futureBridge/business/recommend"
	"futureBridge/domain"
	"futureBridge/pkg/logger"
)

type (
	RecommendHandler struct {
		validate         *validator.Validate
		recommendService RecommendService
	}

	RecommendService interface {
		Generate(ctx context.Context, prefs domain.RoundPreferences) (domain.RecommendationGroup, error)
		GetRecommendations(ctx context.Context, email string, roundNo int, examType string) (*domain.RecommendationGroup, error)
		StoreCollegeConfig(ctx context.Context, cfg domain.CollegeConfig) error
		GetCollegeConfigs(ctx context.Context, email string) ([]domain.CollegeConfig, error)
		StoreRoundPreferences(ctx context.Context, prefs domain.RoundPreferences) error
		GetRoundPreferences(ctx context.Context, email, examType string, roundNo int) (*domain.RoundPreferences, error)
		StoreRoundChoice(ctx context.Context, choice domain.CollegeRoundPreference) error
		GetRoundChoice(ctx context.Context, email, examType string, roundNo int) (*domain.CollegeRoundPreference, error)
		SearchCollegeByName(ctx context.Context, collegeName, examType string) ([]recommend.CollegeCourses, error)
		SearchCollegeByCode(ctx context.Context, collegeCode int, examType string) ([]recommend.CollegeCourses, error)
		SearchCollegeByChoiceCode(ctx context.Context, choiceCode, examType string) (recommend.ChoiceCodeMatch, error)
	}

	RoundPreferencesInput struct {
		ExamType                   string   `json:"exam_type" validate:"required"`
		RoundNo                    int      `json:"round_no" validate:"required,min=1"`
		Category                   string   `json:"category" validate:"required"`
		Gender                     string   `json:"gender"`
		District                   string   `json:"district"`
		Score                      float64  `json:"score"`
		Branches                   []string `json:"branches"`
		Locations                  []string `json:"locations"`
		LastCollegeRoundChoiceCode int64    `json:"last_college_round_choice_code"`
	}

	RoundChoiceInput struct {
		ExamType   string `json:"exam_type" validate:"required"`
		RoundNo    int    `json:"round_no" validate:"required,min=1"`
		ChoiceCode int64  `json:"choice_code" validate:"required"`
	}
)

func NewRecommendHandler(recommendService RecommendService) *RecommendHandler {
	return &RecommendHandler{
		validate:         validator.New(),
		recommendService: recommendService,
	}
}

func (i RoundPreferencesInput) toDomain(email string) domain.RoundPreferences {
	return domain.RoundPreferences{
		UserEmail:                  email,
		ExamType:                   i.ExamType,
		RoundNo:                    i.RoundNo,
		Category:                   i.Category,
		Gender:                     i.Gender,
		District:                   i.District,
		Score:                      i.Score,
		Branches:                   i.Branches,
		Locations:                  i.Locations,
		LastCollegeRoundChoiceCode: i.LastCollegeRoundChoiceCode,
	}
}

// StoreCollegeConfig saves the student's admission setup for one exam type.
// The whole body is kept as the config document.
func (h *RecommendHandler) StoreCollegeConfig(c echo.Context) error {
	email := c.Get("email").(string)

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	examType, _ := body["exam_type"].(string)
	if examType == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "exam_type is required"})
	}

	cfg := domain.CollegeConfig{
		UserEmail: email,
		ExamType:  examType,
		Config:    body,
	}
	if err := h.recommendService.StoreCollegeConfig(c.Request().Context(), cfg); err != nil {
		logger.Error("Failed to store college config", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(cfg))
}

func (h *RecommendHandler) GetCollegeConfigs(c echo.Context) error {
	email := c.Get("email").(string)

	configs, err := h.recommendService.GetCollegeConfigs(c.Request().Context(), email)
	if err != nil {
		logger.Error("Failed to get college configs", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if len(configs) == 0 {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no college configuration found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(configs))
}

// GenerateRecommendations stores the submitted round preferences and runs a
// recommendation pass in one call.
func (h *RecommendHandler) GenerateRecommendations(c echo.Context) error {
	email := c.Get("email").(string)

	var request RoundPreferencesInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Round preferences validation failed", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	prefs := request.toDomain(email)
	if err := h.recommendService.StoreRoundPreferences(c.Request().Context(), prefs); err != nil {
		logger.Error("Failed to store round preferences", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	group, err := h.recommendService.Generate(c.Request().Context(), prefs)
	if err != nil {
		logger.Error("Failed to generate recommendations", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(group))
}

func (h *RecommendHandler) GetRoundPreferences(c echo.Context) error {
	email := c.Get("email").(string)
	examType := c.Param("exam_type")
	roundNo, err := strconv.Atoi(c.Param("round_no"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid round number"})
	}

	prefs, err := h.recommendService.GetRoundPreferences(c.Request().Context(), email, examType, roundNo)
	if err != nil {
		logger.Error("Failed to get round preferences", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if prefs == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no round preferences found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(prefs))
}

func (h *RecommendHandler) GetRecommendations(c echo.Context) error {
	email := c.Get("email").(string)
	examType := c.Param("exam_type")
	roundNo, err := strconv.Atoi(c.Param("round_no"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid round number"})
	}

	group, err := h.recommendService.GetRecommendations(c.Request().Context(), email, roundNo, examType)
	if err != nil {
		logger.Error("Failed to get recommendations", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if group == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no recommendations found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(group))
}

func (h *RecommendHandler) StoreRoundChoice(c echo.Context) error {
	email := c.Get("email").(string)

	var request RoundChoiceInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Round choice validation failed", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	choice := domain.CollegeRoundPreference{
		UserEmail:  email,
		ExamType:   request.ExamType,
		RoundNo:    request.RoundNo,
		ChoiceCode: request.ChoiceCode,
	}
	if err := h.recommendService.StoreRoundChoice(c.Request().Context(), choice); err != nil {
		logger.Error("Failed to store round choice", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(choice))
}

func (h *RecommendHandler) GetRoundChoice(c echo.Context) error {
	email := c.Get("email").(string)
	examType := c.Param("exam_type")
	roundNo, err := strconv.Atoi(c.Param("round_no"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid round number"})
	}

	choice, err := h.recommendService.GetRoundChoice(c.Request().Context(), email, examType, roundNo)
	if err != nil {
		logger.Error("Failed to get round choice", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if choice == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no round choice found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(choice))
}

func (h *RecommendHandler) SearchCollegeByName(c echo.Context) error {
	examType := c.Param("exam_type")
	collegeName := c.Param("college_name")

	result, err := h.recommendService.SearchCollegeByName(c.Request().Context(), collegeName, examType)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "college not found"})
	}
	if err != nil {
		logger.Error("Failed to search college by name", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func (h *RecommendHandler) SearchCollegeByCode(c echo.Context) error {
	examType := c.Param("exam_type")
	collegeCode, err := strconv.Atoi(c.Param("college_code"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid college code"})
	}

	result, err := h.recommendService.SearchCollegeByCode(c.Request().Context(), collegeCode, examType)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "college not found"})
	}
	if err != nil {
		logger.Error("Failed to search college by code", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func (h *RecommendHandler) SearchCollegeByChoiceCode(c echo.Context) error {
	examType := c.Param("exam_type")
	choiceCode := c.Param("choice_code")

	result, err := h.recommendService.SearchCollegeByChoiceCode(c.Request().Context(), choiceCode, examType)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "college not found"})
	}
	if err != nil {
		logger.Error("Failed to search college by choice code", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
