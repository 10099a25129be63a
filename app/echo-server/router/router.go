package router

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"futureBridge/internal/middleware"
	"futureBridge/internal/rest"
	"futureBridge/pkg/metrics"
)

// MetricsMiddleware records per-route latency and status counts.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			path := c.Path()
			metrics.RequestLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())
			metrics.RequestsTotal.WithLabelValues(path, strconv.Itoa(c.Response().Status)).Inc()
			return err
		}
	}
}

func SetupMetricsRoute(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func SetupAuthRoutes(api *echo.Group, handler *rest.AuthHandler) {
	api.POST("/sendOTP", handler.SendOTP)
	api.POST("/validateOTP", handler.ValidateOTP)
}

func SetupRecommendRoutes(api *echo.Group, handler *rest.RecommendHandler, authRequired echo.MiddlewareFunc) {
	common := api.Group("", authRequired)

	common.POST("/college/configuration", handler.StoreCollegeConfig)
	common.GET("/college/configuration", handler.GetCollegeConfigs)

	common.POST("/store/round_preferences_and_generate_recommendations", handler.GenerateRecommendations)
	common.GET("/get/round_preferences/:round_no/:exam_type", handler.GetRoundPreferences)
	common.GET("/get/recommendations/:round_no/:exam_type", handler.GetRecommendations)

	common.POST("/store_round_college_preference", handler.StoreRoundChoice)
	common.GET("/get_round_college_preferences/:round_no/:exam_type", handler.GetRoundChoice)

	common.GET("/search_college_by_name/:exam_type/:college_name", handler.SearchCollegeByName)
	common.GET("/search_college_by_college_code/:exam_type/:college_code", handler.SearchCollegeByCode)
	common.GET("/search_college_by_choice_code/:exam_type/:choice_code", handler.SearchCollegeByChoiceCode)
}

func SetupExploreRoutes(api *echo.Group, handler *rest.ExploreHandler, authRequired echo.MiddlewareFunc) {
	api.POST("/admission-chances", handler.AdmissionChances)

	api.POST("/Quick_College_Scan/", handler.ScanColleges)
	api.GET("/college/:sj_code", handler.GetCollegeReport)
	// The cutoff export only checks the token signature; it stays readable
	// even after the token is rotated out of the store.
	api.GET("/colleges/cutoff/all", handler.GetAllCutoffs, middleware.AuthMiddleware())

	explore := api.Group("", authRequired)
	explore.POST("/recommendation/college-list", handler.GenerateCollegeList)
	explore.GET("/recommendation/college-list", handler.GetCollegeList)
	explore.POST("/generate/round-list", handler.GenerateRoundList)

	explore.POST("/generate/diploma-round-list", handler.GenerateDiplomaRoundList)
	explore.GET("/get/diploma-round-list/:round_no", handler.GetDiplomaRoundList)
	explore.GET("/get-diploma-config/:round_no", handler.GetDiplomaConfig)

	explore.POST("/search_college_by/college_name", handler.SearchCollegeByName)
	explore.POST("/search_college_by/college_code", handler.SearchCollegeByCode)
	explore.POST("/search_college_by/choice_code", handler.SearchByChoiceCode)
}

func SetupPaymentRoutes(api *echo.Group, handler *rest.PaymentsHandler, authRequired echo.MiddlewareFunc) {
	api.POST("/payment/initiate", handler.InitiatePayment)
	api.PUT("/payment/verify", handler.VerifyPayment)
	api.POST("/payment/info", handler.PaymentInfo)
	api.POST("/payment/webhook", handler.Webhook)

	api.DELETE("/payment/delete", handler.DeletePayment, authRequired)
}
