package services

import (
	"context"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/errors"
)

const msgNotPermitted = "Not permitted"

// validateReference checks that a note, todo or deal update targets an
// existing Lead or Opportunity the user may write, and returns its table
func validateReference(ctx context.Context, records ports.RecordStore, perms *PermissionService, doctype, name string, user *models.UserSession) (string, error) {
	if !constants.IsCRMReference(doctype) {
		return "", errors.Invalid("Invalid reference_doctype")
	}
	if name == "" {
		return "", errors.Invalid("reference_name is required")
	}

	table, _ := constants.TableFor(doctype)
	exists, err := records.Exists(ctx, table, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errors.NotFoundf("Document not found")
	}

	if err := perms.Require(ctx, doctype, constants.PermWrite, user, msgNotPermitted); err != nil {
		return "", err
	}
	return table, nil
}
