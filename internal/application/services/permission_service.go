package services

import (
	"context"
	"log"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/pkg/errors"
)

// PermissionService answers doctype level permission questions from the
// role permission table
type PermissionService struct {
	users ports.UserStore
}

// NewPermissionService creates a new PermissionService
func NewPermissionService(users ports.UserStore) *PermissionService {
	return &PermissionService{users: users}
}

// HasPermission reports whether user may perform perm on doctype.
// System managers bypass the table; a nil user never has permission.
func (ps *PermissionService) HasPermission(ctx context.Context, doctype, perm string, user *models.UserSession) bool {
	if user == nil {
		return false
	}
	if user.IsSystemManager {
		return true
	}
	if len(user.Roles) == 0 {
		return false
	}

	allowed, err := ps.users.RolesAllow(ctx, user.Roles, doctype, perm)
	if err != nil {
		log.Printf("⚠️ Permission lookup failed for %s %s (%s): %v", perm, doctype, user.Name, err)
		return false
	}
	return allowed
}

// Require returns a permission error with message when user lacks perm on doctype
func (ps *PermissionService) Require(ctx context.Context, doctype, perm string, user *models.UserSession, message string) error {
	if ps.HasPermission(ctx, doctype, perm, user) {
		return nil
	}
	if message == "" {
		return errors.NewPermissionError(perm, doctype)
	}
	return errors.Forbidden(message)
}
