// Package auth enforces tenant isolation and role-based permissions for
// every core operation. It has no dependencies beyond the model role slugs
// and is consulted by the attendance and employee services before they touch
// storage.
package auth

import (
	"github.com/BheemChand1/attendance-backend/internal/apperr"
	"github.com/BheemChand1/attendance-backend/internal/model"
)

// Action names a permission-checked operation.
type Action string

const (
	ActionCheckIn            Action = "attendance.check_in"
	ActionCheckOut           Action = "attendance.check_out"
	ActionViewOwnStatus      Action = "attendance.own_status"
	ActionViewOwnHistory     Action = "attendance.own_history"
	ActionViewCompanyReport  Action = "attendance.company_report"
	ActionOnboardEmployee    Action = "employee.onboard"
	ActionListEmployees      Action = "employee.list"
	ActionViewEmployee       Action = "employee.view"
	ActionUpdateEmployee     Action = "employee.update"
	ActionDeleteEmployee     Action = "employee.delete"
	ActionManageSubscription Action = "subscription.manage"
)

// allowedRoles maps each action to the role slugs permitted to perform it.
// Self-scoped attendance actions are open to every authenticated role; the
// tenant isolation check still applies.
var allowedRoles = map[Action][]string{
	ActionCheckIn:            {model.RoleCompanyAdmin, model.RoleHR, model.RoleEmployee},
	ActionCheckOut:           {model.RoleCompanyAdmin, model.RoleHR, model.RoleEmployee},
	ActionViewOwnStatus:      {model.RoleCompanyAdmin, model.RoleHR, model.RoleEmployee},
	ActionViewOwnHistory:     {model.RoleCompanyAdmin, model.RoleHR, model.RoleEmployee},
	ActionViewCompanyReport:  {model.RoleCompanyAdmin, model.RoleHR},
	ActionOnboardEmployee:    {model.RoleCompanyAdmin, model.RoleHR},
	ActionListEmployees:      {model.RoleCompanyAdmin, model.RoleHR},
	ActionViewEmployee:       {model.RoleCompanyAdmin, model.RoleHR, model.RoleEmployee},
	ActionUpdateEmployee:     {model.RoleCompanyAdmin, model.RoleHR},
	ActionDeleteEmployee:     {model.RoleCompanyAdmin},
	ActionManageSubscription: {model.RoleCompanyAdmin},
}

// ErrUnauthorized is the stable denial returned for every gate failure so
// callers cannot distinguish isolation denials from role denials.
func errUnauthorized() error {
	return apperr.New(apperr.KindForbidden, "Unauthorized")
}

// Authorize checks that the principal may perform action within the target
// company. The superadmin bypasses tenant isolation but not unknown actions.
func Authorize(p Principal, action Action, targetCompanyID uint) error {
	if p.Role == model.RoleSuperAdmin {
		if _, ok := allowedRoles[action]; !ok {
			return errUnauthorized()
		}
		return nil
	}

	if !p.SameCompany(targetCompanyID) {
		return errUnauthorized()
	}

	roles, ok := allowedRoles[action]
	if !ok {
		return errUnauthorized()
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return errUnauthorized()
}
