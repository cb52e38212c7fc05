package entitlement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/BheemChand1/attendance-backend/internal/model"
)

type fakeRepo struct {
	rows  []model.CompanySubscription
	err   error
	saved *model.CompanySubscription
}

func (f *fakeRepo) ActiveAssignments(companyID uint, today time.Time) ([]model.CompanySubscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.CompanySubscription
	for _, a := range f.rows {
		if a.CompanyID != companyID || a.Status != model.SubscriptionActive {
			continue
		}
		if a.StartDate.After(today) {
			continue
		}
		if a.EndDate != nil && a.EndDate.Before(today) {
			continue
		}
		out = append(out, a)
	}
	// latest start date first, like the SQL ordering
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartDate.After(out[i].StartDate) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) Save(a *model.CompanySubscription) error {
	f.saved = a
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func newTestEngine(repo Repository, today time.Time) *Engine {
	e := NewEngine(repo, zap.NewNop())
	e.now = func() time.Time { return today }
	return e
}

func basicPlan() *model.SubscriptionPlan {
	return &model.SubscriptionPlan{
		ID:           1,
		Name:         "Basic",
		Price:        decimal.NewFromFloat(99.00),
		MaxEmployees: 50,
		Features: []model.SubscriptionFeature{
			{FeatureKey: "attendance", FeatureName: "Attendance Tracking", IsIncluded: true},
		},
	}
}

func professionalPlan() *model.SubscriptionPlan {
	return &model.SubscriptionPlan{
		ID:           2,
		Name:         "Professional",
		Price:        decimal.NewFromFloat(299.00),
		MaxEmployees: 500,
		Features: []model.SubscriptionFeature{
			{FeatureKey: "attendance", FeatureName: "Attendance Tracking", IsIncluded: true},
			{FeatureKey: "payroll", FeatureName: "Payroll Management", IsIncluded: true},
			{FeatureKey: "leave_management", FeatureName: "Leave Management", IsIncluded: true},
		},
	}
}

func TestActiveAssignmentNone(t *testing.T) {
	e := newTestEngine(&fakeRepo{}, date(2025, 6, 1))

	a, err := e.ActiveAssignment(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != nil {
		t.Fatalf("expected nil assignment, got %+v", a)
	}
}

func TestActiveAssignmentExpiredByEndDate(t *testing.T) {
	repo := &fakeRepo{rows: []model.CompanySubscription{{
		ID: 1, CompanyID: 1, Status: model.SubscriptionActive,
		StartDate: date(2025, 1, 1), EndDate: datePtr(date(2025, 5, 31)),
		Plan: basicPlan(),
	}}}
	e := newTestEngine(repo, date(2025, 6, 1))

	a, err := e.ActiveAssignment(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != nil {
		t.Fatal("assignment past its end date should not resolve")
	}
}

func TestActiveAssignmentAnomalyPicksLatestStart(t *testing.T) {
	repo := &fakeRepo{rows: []model.CompanySubscription{
		{ID: 1, CompanyID: 1, Status: model.SubscriptionActive, StartDate: date(2025, 1, 1), Plan: basicPlan()},
		{ID: 2, CompanyID: 1, Status: model.SubscriptionActive, StartDate: date(2025, 3, 1), Plan: professionalPlan()},
	}}
	e := newTestEngine(repo, date(2025, 6, 1))

	a, err := e.ActiveAssignment(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil || a.ID != 2 {
		t.Fatalf("expected assignment 2 (latest start date), got %+v", a)
	}
}

func TestHasFeature(t *testing.T) {
	repo := &fakeRepo{rows: []model.CompanySubscription{{
		ID: 1, CompanyID: 1, Status: model.SubscriptionActive,
		StartDate: date(2025, 1, 1), EndDate: datePtr(date(2025, 12, 31)),
		Plan: basicPlan(),
	}}}
	e := newTestEngine(repo, date(2025, 6, 1))

	if ok, _ := e.HasFeature(1, "attendance"); !ok {
		t.Fatal("basic plan should include attendance")
	}
	if ok, _ := e.HasFeature(1, "payroll"); ok {
		t.Fatal("basic plan should not include payroll")
	}
	if ok, _ := e.HasFeature(2, "attendance"); ok {
		t.Fatal("company without assignment should have no features")
	}
}

func TestHasFeatureFlipsAfterEndDate(t *testing.T) {
	repo := &fakeRepo{rows: []model.CompanySubscription{{
		ID: 1, CompanyID: 1, Status: model.SubscriptionActive,
		StartDate: date(2025, 1, 1), EndDate: datePtr(date(2025, 6, 10)),
		Plan: basicPlan(),
	}}}

	before := newTestEngine(repo, date(2025, 6, 10))
	if ok, _ := before.HasFeature(1, "attendance"); !ok {
		t.Fatal("feature should be enabled on the end date itself")
	}

	after := newTestEngine(repo, date(2025, 6, 11))
	if ok, _ := after.HasFeature(1, "attendance"); ok {
		t.Fatal("feature should flip to false the instant the end date passes")
	}
}

func TestCanAddEmployeeQuota(t *testing.T) {
	mk := func(count int) *Engine {
		repo := &fakeRepo{rows: []model.CompanySubscription{{
			ID: 1, CompanyID: 1, Status: model.SubscriptionActive,
			StartDate: date(2025, 1, 1), EmployeeCount: count,
			Plan: basicPlan(),
		}}}
		return newTestEngine(repo, date(2025, 6, 1))
	}

	if ok, _ := mk(49).CanAddEmployee(1); !ok {
		t.Fatal("49 of 50 should allow one more")
	}
	if ok, _ := mk(50).CanAddEmployee(1); ok {
		t.Fatal("50 of 50 should deny")
	}

	empty := newTestEngine(&fakeRepo{}, date(2025, 6, 1))
	if ok, _ := empty.CanAddEmployee(1); ok {
		t.Fatal("no active assignment should deny")
	}
}

func TestExpiringSoonBounds(t *testing.T) {
	today := date(2025, 6, 1)
	e := newTestEngine(&fakeRepo{}, today)

	cases := []struct {
		end    *time.Time
		within int
		want   bool
	}{
		{datePtr(date(2025, 6, 1)), 7, true},   // today is day 0
		{datePtr(date(2025, 6, 8)), 7, true},   // exactly within
		{datePtr(date(2025, 6, 9)), 7, false},  // one past
		{datePtr(date(2025, 5, 31)), 7, false}, // already expired
		{nil, 7, false},                        // open-ended
	}

	for i, tc := range cases {
		a := &model.CompanySubscription{EndDate: tc.end}
		if got := e.ExpiringSoon(a, tc.within); got != tc.want {
			t.Fatalf("case %d: ExpiringSoon = %v, want %v", i, got, tc.want)
		}
	}
}

func TestRenewMonthly(t *testing.T) {
	repo := &fakeRepo{}
	e := newTestEngine(repo, date(2025, 6, 1))

	a := &model.CompanySubscription{
		CompanyID:    1,
		Status:       model.SubscriptionExpired,
		BillingCycle: model.BillingMonthly,
	}
	if err := e.Renew(a); err != nil {
		t.Fatalf("renew: %v", err)
	}
	if !a.StartDate.Equal(date(2025, 6, 1)) {
		t.Fatalf("start date = %v", a.StartDate)
	}
	if a.EndDate == nil || !a.EndDate.Equal(date(2025, 7, 1)) {
		t.Fatalf("end date = %v", a.EndDate)
	}
	if a.NextBillingDate == nil || !a.NextBillingDate.Equal(*a.EndDate) {
		t.Fatalf("next billing date = %v", a.NextBillingDate)
	}
	if a.Status != model.SubscriptionActive {
		t.Fatalf("status = %s", a.Status)
	}
	if repo.saved != a {
		t.Fatal("renew did not persist the assignment")
	}
}

func TestRenewYearly(t *testing.T) {
	e := newTestEngine(&fakeRepo{}, date(2025, 6, 1))

	a := &model.CompanySubscription{BillingCycle: model.BillingYearly}
	if err := e.Renew(a); err != nil {
		t.Fatalf("renew: %v", err)
	}
	if a.EndDate == nil || !a.EndDate.Equal(date(2026, 6, 1)) {
		t.Fatalf("end date = %v", a.EndDate)
	}
}

func TestCancelKeepsRow(t *testing.T) {
	repo := &fakeRepo{}
	e := newTestEngine(repo, date(2025, 6, 1))

	a := &model.CompanySubscription{CompanyID: 1, Status: model.SubscriptionActive}
	if err := e.Cancel(a); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if a.Status != model.SubscriptionCancelled {
		t.Fatalf("status = %s", a.Status)
	}
	if repo.saved != a {
		t.Fatal("cancel did not persist the assignment")
	}
}
