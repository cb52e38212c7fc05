package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/BheemChand1/attendance-backend/internal/auth"
	"github.com/BheemChand1/attendance-backend/internal/entitlement"
	"github.com/BheemChand1/attendance-backend/internal/middleware"
	"github.com/BheemChand1/attendance-backend/pkg/logger"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

// SubscriptionHandler exposes the company's subscription assignment.
type SubscriptionHandler struct {
	Engine *entitlement.Engine
}

// NewSubscriptionHandler creates a SubscriptionHandler.
func NewSubscriptionHandler(engine *entitlement.Engine) *SubscriptionHandler {
	return &SubscriptionHandler{Engine: engine}
}

// expiringSoonWindowDays is the lookahead used for the renewal nudge.
const expiringSoonWindowDays = 7

// Current handles GET /subscription/current
func (h *SubscriptionHandler) Current(c echo.Context) error {
	p, ok := middleware.PrincipalFromEcho(c)
	if !ok || p.CompanyID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}
	if err := auth.Authorize(p, auth.ActionManageSubscription, *p.CompanyID); err != nil {
		return respondError(c, err)
	}

	a, err := h.Engine.ActiveAssignment(*p.CompanyID)
	if err != nil {
		return respondError(c, err)
	}
	if a == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"message": "No active subscription found",
			"status":  false,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": true,
		"data": echo.Map{
			"subscription":  a,
			"expiring_soon": h.Engine.ExpiringSoon(a, expiringSoonWindowDays),
		},
	})
}

// Renew handles POST /subscription/renew
func (h *SubscriptionHandler) Renew(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.SubscriptionOperationCounter.WithLabelValues("renew").Inc()

	p, ok := middleware.PrincipalFromEcho(c)
	if !ok || p.CompanyID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}
	if err := auth.Authorize(p, auth.ActionManageSubscription, *p.CompanyID); err != nil {
		return respondError(c, err)
	}

	a, err := h.Engine.ActiveAssignment(*p.CompanyID)
	if err != nil {
		return respondError(c, err)
	}
	if a == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"message": "No active subscription found",
			"status":  false,
		})
	}

	if err := h.Engine.Renew(a); err != nil {
		log.Error("subscription renewal failed", zap.Uint("company_id", *p.CompanyID), zap.Error(err))
		return respondError(c, err)
	}

	log.Info("subscription renewed",
		zap.Uint("company_id", *p.CompanyID),
		zap.String("billing_cycle", a.BillingCycle))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Subscription renewed successfully",
		"status":  true,
		"data":    a,
	})
}

// Cancel handles POST /subscription/cancel
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.SubscriptionOperationCounter.WithLabelValues("cancel").Inc()

	p, ok := middleware.PrincipalFromEcho(c)
	if !ok || p.CompanyID == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required", "status": false})
	}
	if err := auth.Authorize(p, auth.ActionManageSubscription, *p.CompanyID); err != nil {
		return respondError(c, err)
	}

	a, err := h.Engine.ActiveAssignment(*p.CompanyID)
	if err != nil {
		return respondError(c, err)
	}
	if a == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"message": "No active subscription found",
			"status":  false,
		})
	}

	if err := h.Engine.Cancel(a); err != nil {
		log.Error("subscription cancellation failed", zap.Uint("company_id", *p.CompanyID), zap.Error(err))
		return respondError(c, err)
	}

	log.Info("subscription cancelled", zap.Uint("company_id", *p.CompanyID))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Subscription cancelled successfully",
		"status":  true,
		"data":    a,
	})
}
