// Package entitlement resolves a company's current subscription and answers
// feature and quota questions. It never mutates user or employee rows; the
// onboarding and reporting flows consult it before proceeding.
package entitlement

import (
	"time"

	"go.uber.org/zap"

	"github.com/BheemChand1/attendance-backend/internal/apperr"
	"github.com/BheemChand1/attendance-backend/internal/model"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

// Repository is the tenant-scoped persistence boundary for assignments.
type Repository interface {
	// ActiveAssignments returns every assignment for the company with
	// status=active, start_date <= today and (end_date null or >= today),
	// plan and features preloaded, ordered by start_date descending.
	ActiveAssignments(companyID uint, today time.Time) ([]model.CompanySubscription, error)
	// Save persists changes to an assignment.
	Save(a *model.CompanySubscription) error
}

// Engine answers entitlement questions for companies.
type Engine struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

// NewEngine creates an Engine backed by repo.
func NewEngine(repo Repository, log *zap.Logger) *Engine {
	return &Engine{repo: repo, log: log, now: time.Now}
}

// dateOf truncates t to its calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ActiveAssignment resolves the single currently-active assignment for the
// company, or nil when there is none. More than one match is a
// data-integrity violation: it is logged and counted, and the assignment
// with the latest start date wins deterministically.
func (e *Engine) ActiveAssignment(companyID uint) (*model.CompanySubscription, error) {
	today := dateOf(e.now())
	rows, err := e.repo.ActiveAssignments(companyID, today)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load subscription", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		e.log.Warn("multiple active subscriptions for company",
			zap.Uint("company_id", companyID),
			zap.Int("count", len(rows)))
		prometheus.RecordIntegrityAnomaly(companyID)
	}
	// Rows arrive ordered by start_date descending.
	return &rows[0], nil
}

// HasFeature reports whether the company's active plan unlocks featureKey.
// A company without an active assignment has no features.
func (e *Engine) HasFeature(companyID uint, featureKey string) (bool, error) {
	a, err := e.ActiveAssignment(companyID)
	if err != nil {
		return false, err
	}
	if a == nil || a.Plan == nil {
		return false, nil
	}
	return a.Plan.HasFeature(featureKey), nil
}

// CanAddEmployee reports whether one more employee fits within the active
// plan's quota. False when no assignment is active.
func (e *Engine) CanAddEmployee(companyID uint) (bool, error) {
	a, err := e.ActiveAssignment(companyID)
	if err != nil {
		return false, err
	}
	if a == nil || a.Plan == nil {
		return false, nil
	}
	return a.EmployeeCount < a.Plan.MaxEmployees, nil
}

// ExpiringSoon reports whether the assignment ends within withinDays of
// today, counting today as day zero. Open-ended assignments never expire.
func (e *Engine) ExpiringSoon(a *model.CompanySubscription, withinDays int) bool {
	if a == nil || a.EndDate == nil {
		return false
	}
	today := dateOf(e.now())
	end := dateOf(*a.EndDate)
	if end.Before(today) {
		return false
	}
	days := int(end.Sub(today).Hours() / 24)
	return days <= withinDays
}

// Renew restarts the assignment from today for one billing cycle and forces
// it active.
func (e *Engine) Renew(a *model.CompanySubscription) error {
	today := dateOf(e.now())
	var end time.Time
	if a.BillingCycle == model.BillingYearly {
		end = today.AddDate(1, 0, 0)
	} else {
		end = today.AddDate(0, 1, 0)
	}

	a.StartDate = today
	a.EndDate = &end
	a.NextBillingDate = &end
	a.Status = model.SubscriptionActive

	if err := e.repo.Save(a); err != nil {
		return apperr.Wrap(apperr.KindPersistence, "failed to renew subscription", err)
	}
	e.log.Info("subscription renewed",
		zap.Uint("company_id", a.CompanyID),
		zap.String("billing_cycle", a.BillingCycle),
		zap.Time("end_date", end))
	return nil
}

// Cancel marks the assignment cancelled. The row is kept for audit.
func (e *Engine) Cancel(a *model.CompanySubscription) error {
	a.Status = model.SubscriptionCancelled
	if err := e.repo.Save(a); err != nil {
		return apperr.Wrap(apperr.KindPersistence, "failed to cancel subscription", err)
	}
	e.log.Info("subscription cancelled", zap.Uint("company_id", a.CompanyID))
	return nil
}
