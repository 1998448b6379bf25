package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/query"
)

// UserRepository reads users and the role permission table
type UserRepository struct {
	baseRepository
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{baseRepository{db: db}}
}

// FullName returns the display name of a user, falling back to the id
func (r *UserRepository) FullName(ctx context.Context, user string) (string, error) {
	q := query.From(constants.TableUser).Select("full_name").WhereEq(constants.FieldName, user).Limit(1).Build()

	var fullName string
	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(str{&fullName})
	if errors.Is(err, sql.ErrNoRows) || (err == nil && fullName == "") {
		return user, nil
	}
	if err != nil {
		return "", err
	}
	return fullName, nil
}

// MentionRecipients returns the e-mail of each user that can receive
// mention e-mails: enabled system users allowed in mentions
func (r *UserRepository) MentionRecipients(ctx context.Context, users []string) ([]string, error) {
	q := query.From(constants.TableUser).
		Select("email").
		WhereIn(constants.FieldName, users).
		WhereEq("enabled", 1).
		WhereEq("user_type", constants.UserTypeSystem).
		WhereEq("allowed_in_mentions", 1).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

var permissionColumns = map[string]string{
	constants.PermRead:   "can_read",
	constants.PermWrite:  "can_write",
	constants.PermCreate: "can_create",
	constants.PermDelete: "can_delete",
}

// RolesAllow reports whether any of roles grants perm on doctype
func (r *UserRepository) RolesAllow(ctx context.Context, roles []string, doctype, perm string) (bool, error) {
	column, ok := permissionColumns[perm]
	if !ok {
		return false, fmt.Errorf("unknown permission type %q", perm)
	}

	q := query.From(constants.TablePermission).
		Select("role").
		WhereIn("role", roles).
		WhereEq("doctype", doctype).
		WhereEq(column, 1).
		Limit(1).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}
