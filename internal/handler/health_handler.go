package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/BheemChand1/attendance-backend/prometheus"
)

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "attendance-backend",
	})
}

// Metrics exposes the Prometheus scrape endpoint
func Metrics(c echo.Context) error {
	prometheus.GetPrometheusHandler().ServeHTTP(c.Response(), c.Request())
	return nil
}
