// Package access derives a caller's permission tier from their profile.
package access

import (
	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/models"
)

// EffectiveLevel is admin for the admin role, else the stored access level,
// else driver. A nil user is a driver.
func EffectiveLevel(u *models.User) models.AccessLevel {
	if u == nil {
		return models.AccessDriver
	}
	if u.Role == models.RoleAdmin {
		return models.AccessAdmin
	}
	switch u.AccessLevel {
	case models.AccessUser, models.AccessAdmin:
		return u.AccessLevel
	}
	return models.AccessDriver
}

func CanMutate(level models.AccessLevel) bool {
	return level == models.AccessUser || level == models.AccessAdmin
}

// CanManageUsers depends on the role only; an admin access level is not enough.
func CanManageUsers(u *models.User) bool {
	return u != nil && u.Role == models.RoleAdmin
}

// RequireMutate returns a permission error unless u may change shutdowns.
func RequireMutate(op string, u *models.User) error {
	if u == nil {
		return errs.Permission(op, "authentication required")
	}
	if !CanMutate(EffectiveLevel(u)) {
		return errs.Permission(op, "view-only access cannot modify shutdowns")
	}
	return nil
}

func RequireManageUsers(op string, u *models.User) error {
	if !CanManageUsers(u) {
		return errs.Permission(op, "admin role required")
	}
	return nil
}

func ValidLevel(l models.AccessLevel) bool {
	switch l {
	case models.AccessDriver, models.AccessUser, models.AccessAdmin:
		return true
	}
	return false
}
