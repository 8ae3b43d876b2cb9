// Package permissions holds the single capability table both the route
// middleware and the handlers consult. The same table drives the admin UI,
// so client and server can never disagree about who may touch what.
package permissions

import (
	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/models"
)

type Action string

const (
	ActionManageMenu       Action = "manage_menu"
	ActionManageCategories Action = "manage_categories"
	ActionViewOrders       Action = "view_orders"
	ActionUpdateOrders     Action = "update_orders"
	ActionDeleteOrders     Action = "delete_orders"
	ActionManageUsers      Action = "manage_users"
	ActionViewReports      Action = "view_reports"
	ActionManageContact    Action = "manage_contact"
)

type capability struct {
	diets   []models.DietType
	actions map[Action]bool
}

func actionSet(actions ...Action) map[Action]bool {
	m := make(map[Action]bool, len(actions))
	for _, a := range actions {
		m[a] = true
	}
	return m
}

var dietAdminActions = actionSet(
	ActionManageMenu, ActionManageCategories,
	ActionViewOrders, ActionUpdateOrders,
	ActionViewReports,
)

// capabilities is the authoritative role table.
var capabilities = map[models.Role]capability{
	models.RoleSuperAdmin: {
		diets: []models.DietType{models.DietVeg, models.DietNonVeg},
		actions: actionSet(
			ActionManageMenu, ActionManageCategories,
			ActionViewOrders, ActionUpdateOrders, ActionDeleteOrders,
			ActionManageUsers, ActionViewReports, ActionManageContact,
		),
	},
	models.RoleVegAdmin: {
		diets:   []models.DietType{models.DietVeg},
		actions: dietAdminActions,
	},
	models.RoleNonVegAdmin: {
		diets:   []models.DietType{models.DietNonVeg},
		actions: dietAdminActions,
	},
	models.RoleCustomer: {},
	models.RoleGuest:    {},
}

// Can reports whether the role may perform the action at all.
func Can(role models.Role, action Action) bool {
	return capabilities[role].actions[action]
}

// AllowedDiets returns the diet partitions the role is scoped to.
func AllowedDiets(role models.Role) []models.DietType {
	return capabilities[role].diets
}

// CoversDiet reports whether the role's partition scope includes the diet.
func CoversDiet(role models.Role, diet models.DietType) bool {
	for _, d := range capabilities[role].diets {
		if d == diet {
			return true
		}
	}
	return false
}

// CheckOrderAccess verifies that the acting role may perform the action on an
// order in the given diet partition. Super-admin passes every diet check.
func CheckOrderAccess(role models.Role, action Action, diet models.DietType) error {
	if !Can(role, action) {
		return apperr.Forbidden("role %s may not %s", role, action)
	}
	if role == models.RoleSuperAdmin {
		return nil
	}
	if !CoversDiet(role, diet) {
		return apperr.Forbidden("role %s is not allowed to act on %s orders", role, diet)
	}
	return nil
}

// CheckCatalogAccess is the same gate for categories and menu items.
func CheckCatalogAccess(role models.Role, action Action, diet models.DietType) error {
	if !Can(role, action) {
		return apperr.Forbidden("role %s may not %s", role, action)
	}
	if role == models.RoleSuperAdmin {
		return nil
	}
	if !CoversDiet(role, diet) {
		return apperr.Forbidden("role %s is not allowed to manage the %s catalog", role, diet)
	}
	return nil
}
