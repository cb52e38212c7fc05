package auth

import (
	"testing"

	"github.com/BheemChand1/attendance-backend/internal/apperr"
	"github.com/BheemChand1/attendance-backend/internal/model"
)

func uintPtr(v uint) *uint { return &v }

func TestAuthorizeSelfAttendance(t *testing.T) {
	p := Principal{UserID: 7, CompanyID: uintPtr(3), Role: model.RoleEmployee}

	for _, action := range []Action{ActionCheckIn, ActionCheckOut, ActionViewOwnStatus, ActionViewOwnHistory} {
		if err := Authorize(p, action, 3); err != nil {
			t.Fatalf("employee denied %s in own company: %v", action, err)
		}
	}
}

func TestAuthorizeTenantIsolation(t *testing.T) {
	p := Principal{UserID: 7, CompanyID: uintPtr(3), Role: model.RoleCompanyAdmin}

	err := Authorize(p, ActionViewCompanyReport, 4)
	if err == nil {
		t.Fatal("cross-tenant access allowed")
	}
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAuthorizeRoleTable(t *testing.T) {
	cases := []struct {
		role    string
		action  Action
		allowed bool
	}{
		{model.RoleEmployee, ActionViewCompanyReport, false},
		{model.RoleHR, ActionViewCompanyReport, true},
		{model.RoleCompanyAdmin, ActionViewCompanyReport, true},
		{model.RoleEmployee, ActionOnboardEmployee, false},
		{model.RoleHR, ActionOnboardEmployee, true},
		{model.RoleHR, ActionDeleteEmployee, false},
		{model.RoleCompanyAdmin, ActionDeleteEmployee, true},
		{model.RoleHR, ActionManageSubscription, false},
		{model.RoleCompanyAdmin, ActionManageSubscription, true},
	}

	for _, tc := range cases {
		p := Principal{UserID: 1, CompanyID: uintPtr(9), Role: tc.role}
		err := Authorize(p, tc.action, 9)
		if tc.allowed && err != nil {
			t.Fatalf("%s should perform %s: %v", tc.role, tc.action, err)
		}
		if !tc.allowed && err == nil {
			t.Fatalf("%s should be denied %s", tc.role, tc.action)
		}
	}
}

func TestAuthorizeSuperAdminCrossesTenants(t *testing.T) {
	p := Principal{UserID: 1, Role: model.RoleSuperAdmin}

	if err := Authorize(p, ActionViewCompanyReport, 42); err != nil {
		t.Fatalf("superadmin denied: %v", err)
	}
	if err := Authorize(p, Action("bogus"), 42); err == nil {
		t.Fatal("unknown action allowed for superadmin")
	}
}

func TestAuthorizeNilCompany(t *testing.T) {
	p := Principal{UserID: 1, Role: model.RoleEmployee}

	if err := Authorize(p, ActionCheckIn, 1); err == nil {
		t.Fatal("principal without company allowed")
	}
}
