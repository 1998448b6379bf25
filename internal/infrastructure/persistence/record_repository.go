package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/query"
)

// RecordRepository handles the table-agnostic operations every doctype shares
type RecordRepository struct {
	baseRepository
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{baseRepository{db: db}}
}

// Exists checks if a record exists by name
func (r *RecordRepository) Exists(ctx context.Context, table, name string) (bool, error) {
	q := query.From(table).
		Select(constants.FieldName).
		WhereEq(constants.FieldName, name).
		Limit(1).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	return rows.Next(), rows.Err()
}

// GetValue reads a single column of a record. ok is false when the record is missing.
func (r *RecordRepository) GetValue(ctx context.Context, table, name, field string) (string, bool, error) {
	q := query.From(table).
		Select(field).
		WhereEq(constants.FieldName, name).
		Limit(1).
		Build()

	var value string
	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(str{&value})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// GetHeader loads the creation metadata of a Lead or Opportunity.
// Returns nil when the record does not exist.
func (r *RecordRepository) GetHeader(ctx context.Context, doctype, name string) (*models.RecordHeader, error) {
	table, ok := constants.TableFor(doctype)
	if !ok || !constants.IsCRMReference(doctype) {
		return nil, nil
	}

	fields := []string{constants.FieldName, constants.FieldOwner, constants.FieldCreation, constants.FieldTitle}
	if doctype == constants.DoctypeOpportunity {
		fields = append(fields, "opportunity_from", "party_name")
	}

	q := query.From(table).Select(fields...).WhereEq(constants.FieldName, name).Limit(1).Build()

	h := &models.RecordHeader{}
	dest := []interface{}{&h.Name, str{&h.Owner}, stamp{&h.Creation}, str{&h.Title}}
	if doctype == constants.DoctypeOpportunity {
		dest = append(dest, str{&h.OpportunityFrom}, str{&h.PartyName})
	}

	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// SetValues updates columns of a record and bumps modified
func (r *RecordRepository) SetValues(ctx context.Context, table, name string, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	updates := make(map[string]interface{}, len(values)+1)
	for k, v := range values {
		updates[k] = v
	}
	updates[constants.FieldModified] = time.Now()

	q := query.Update(table).Set(updates).WhereEq(constants.FieldName, name).Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// Delete removes a record by name
func (r *RecordRepository) Delete(ctx context.Context, table, name string) error {
	q := query.Delete(table).WhereEq(constants.FieldName, name).Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}
