package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"futureBridge/business/explore"
	"futureBridge/domain"
	"futureBridge/pkg/logger"
)

type (
	ExploreHandler struct {
		validate       *validator.Validate
		exploreService ExploreService
	}

	ExploreService interface {
		GenerateRecommendations(ctx context.Context, req explore.RecommendationRequest, email string) (domain.RecommendationGroup, error)
		GenerateRecommendationsRound(ctx context.Context, req explore.RecommendationRequest, email string) (domain.RecommendationGroup, error)
		GenerateRecommendationsDiploma(ctx context.Context, req explore.RecommendationRequest, email string) (domain.RecommendationGroup, error)
		GetRecommendationList(ctx context.Context, email string) (*domain.RecommendationGroup, error)
		GetRecommendationListDiploma(ctx context.Context, email string, roundNo int) (*domain.RecommendationGroup, error)
		GetDiplomaConfig(ctx context.Context, email string, roundNo int) (*domain.DiplomaUserConfig, error)
		AdmissionChances(ctx context.Context, sjCode int, courseName string, percentile float64, category string) (domain.AdmissionChance, error)
		SearchCollegeByName(ctx context.Context, name string) ([]domain.CollegeSearchResult, error)
		SearchCollegeByCode(ctx context.Context, collegeCode int) (*domain.CollegeSearchResult, error)
		SearchByChoiceCode(ctx context.Context, choiceCode int64) (*domain.ChoiceCodeSearchResult, error)
		ScanColleges(ctx context.Context, q explore.ScanQuery) (domain.CollegeScan, error)
		CollegeReport(ctx context.Context, sjCode int) (map[string]any, error)
		AllCutoffs(ctx context.Context) ([]map[string]any, error)
	}

	AdmissionChancesInput struct {
		SJCode        int     `json:"sj_code" validate:"required"`
		CourseName    string  `json:"course_name" validate:"required"`
		CETPercentile float64 `json:"cet_percentile" validate:"gte=0,lte=100"`
		Category      string  `json:"category"`
	}

	CollegeNameSearchInput struct {
		CollegeName string `json:"college_name" validate:"required"`
	}

	CollegeCodeSearchInput struct {
		CollegeCode int `json:"college_code" validate:"required"`
	}

	ChoiceCodeSearchInput struct {
		ChoiceCode int64 `json:"choice_code" validate:"required"`
	}
)

func NewExploreHandler(exploreService ExploreService) *ExploreHandler {
	return &ExploreHandler{
		validate:       validator.New(),
		exploreService: exploreService,
	}
}

func (h *ExploreHandler) bindRequest(c echo.Context, request *explore.RecommendationRequest) error {
	if err := c.Bind(request); err != nil {
		logger.Error("Invalid request body", err)
		return err
	}
	return h.validate.Struct(request)
}

// GenerateCollegeList runs the flat explore flow.
func (h *ExploreHandler) GenerateCollegeList(c echo.Context) error {
	email := c.Get("email").(string)

	var request explore.RecommendationRequest
	if err := h.bindRequest(c, &request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	group, err := h.exploreService.GenerateRecommendations(c.Request().Context(), request, email)
	if err != nil {
		logger.Error("Failed to generate college list", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(group))
}

// GetCollegeList returns the stored explore group for the user.
func (h *ExploreHandler) GetCollegeList(c echo.Context) error {
	email := c.Get("email").(string)

	group, err := h.exploreService.GetRecommendationList(c.Request().Context(), email)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no recommendations found"})
	}
	if err != nil {
		logger.Error("Failed to get college list", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(group))
}

// GenerateRoundList runs the round-carry explore flow.
func (h *ExploreHandler) GenerateRoundList(c echo.Context) error {
	email := c.Get("email").(string)

	var request explore.RecommendationRequest
	if err := h.bindRequest(c, &request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	group, err := h.exploreService.GenerateRecommendationsRound(c.Request().Context(), request, email)
	if err != nil {
		logger.Error("Failed to generate round list", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(group))
}

// GenerateDiplomaRoundList runs the diploma (DSY) flow.
func (h *ExploreHandler) GenerateDiplomaRoundList(c echo.Context) error {
	email := c.Get("email").(string)

	var request explore.RecommendationRequest
	if err := h.bindRequest(c, &request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	group, err := h.exploreService.GenerateRecommendationsDiploma(c.Request().Context(), request, email)
	if err != nil {
		logger.Error("Failed to generate diploma round list", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(group))
}

func (h *ExploreHandler) GetDiplomaRoundList(c echo.Context) error {
	email := c.Get("email").(string)
	roundNo, err := strconv.Atoi(c.Param("round_no"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid round number"})
	}

	group, err := h.exploreService.GetRecommendationListDiploma(c.Request().Context(), email, roundNo)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no recommendations found"})
	}
	if err != nil {
		logger.Error("Failed to get diploma round list", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(group))
}

func (h *ExploreHandler) GetDiplomaConfig(c echo.Context) error {
	email := c.Get("email").(string)
	roundNo, err := strconv.Atoi(c.Param("round_no"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid round number"})
	}

	cfg, err := h.exploreService.GetDiplomaConfig(c.Request().Context(), email, roundNo)
	if err != nil {
		logger.Error("Failed to get diploma config", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if cfg == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no diploma configuration found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}

func (h *ExploreHandler) AdmissionChances(c echo.Context) error {
	var request AdmissionChancesInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Admission chances validation failed", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	chance, err := h.exploreService.AdmissionChances(c.Request().Context(), request.SJCode, request.CourseName, request.CETPercentile, request.Category)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "cutoff data not found"})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err != nil {
		logger.Error("Failed to calculate admission chances", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(chance))
}

// ScanColleges serves the paginated college browse listing.
func (h *ExploreHandler) ScanColleges(c echo.Context) error {
	var request explore.ScanQuery
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	scan, err := h.exploreService.ScanColleges(c.Request().Context(), request)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no colleges found"})
	}
	if err != nil {
		logger.Error("Failed to scan colleges", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(scan))
}

// GetCollegeReport serves the full single-college document.
func (h *ExploreHandler) GetCollegeReport(c echo.Context) error {
	sjCode, err := strconv.Atoi(c.Param("sj_code"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid college id"})
	}

	report, err := h.exploreService.CollegeReport(c.Request().Context(), sjCode)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "college not found"})
	}
	if err != nil {
		logger.Error("Failed to get college report", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(report))
}

// GetAllCutoffs serves the latest-year cutoff export.
func (h *ExploreHandler) GetAllCutoffs(c echo.Context) error {
	docs, err := h.exploreService.AllCutoffs(c.Request().Context())
	if err != nil {
		logger.Error("Failed to get cutoff export", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(docs))
}

func (h *ExploreHandler) SearchCollegeByName(c echo.Context) error {
	var request CollegeNameSearchInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	results, err := h.exploreService.SearchCollegeByName(c.Request().Context(), request.CollegeName)
	if err != nil {
		logger.Error("Failed to search college by name", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(results))
}

func (h *ExploreHandler) SearchCollegeByCode(c echo.Context) error {
	var request CollegeCodeSearchInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	result, err := h.exploreService.SearchCollegeByCode(c.Request().Context(), request.CollegeCode)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "college not found"})
	}
	if err != nil {
		logger.Error("Failed to search college by code", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func (h *ExploreHandler) SearchByChoiceCode(c echo.Context) error {
	var request ChoiceCodeSearchInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	result, err := h.exploreService.SearchByChoiceCode(c.Request().Context(), request.ChoiceCode)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "choice code not found"})
	}
	if err != nil {
		logger.Error("Failed to search by choice code", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
