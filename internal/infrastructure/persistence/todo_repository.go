package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/query"
	"github.com/rtCamp/next-crm/pkg/utils"
)

var todoColumns = []string{
	constants.FieldName, "custom_title", "description", "allocated_to", "assigned_by", "date", "priority",
	constants.FieldStatus, "reference_type", "reference_name", "custom_from_time", "custom_to_time",
	"custom_linked_event", constants.FieldModified,
}

// TodoRepository stores ToDo rows
type TodoRepository struct {
	baseRepository
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{baseRepository{db: db}}
}

func scanTodo(scan func(dest ...interface{}) error) (*models.ToDo, error) {
	t := &models.ToDo{}
	err := scan(&t.Name, str{&t.CustomTitle}, str{&t.Description}, str{&t.AllocatedTo}, str{&t.AssignedBy},
		optStamp{&t.Date}, str{&t.Priority}, str{&t.Status}, str{&t.ReferenceType}, str{&t.ReferenceName},
		str{&t.CustomFromTime}, str{&t.CustomToTime}, str{&t.CustomLinkedEvent}, stamp{&t.Modified})
	return t, err
}

// ListForRecord returns the todos referencing a record
func (r *TodoRepository) ListForRecord(ctx context.Context, docname string) ([]models.ToDo, error) {
	q := query.From(constants.TableToDo).
		Select(todoColumns...).
		WhereEq("reference_name", docname).
		OrderBy(constants.FieldModified, query.DESC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ToDo, 0)
	for rows.Next() {
		t, err := scanTodo(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Get loads a ToDo by name. Returns nil when missing.
func (r *TodoRepository) Get(ctx context.Context, name string) (*models.ToDo, error) {
	q := query.From(constants.TableToDo).Select(todoColumns...).WhereEq(constants.FieldName, name).Limit(1).Build()

	t, err := scanTodo(r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Insert stores a ToDo, filling name when empty
func (r *TodoRepository) Insert(ctx context.Context, t *models.ToDo, owner string) error {
	if t.Name == "" {
		t.Name = utils.GenerateName()
	}
	now := time.Now()
	t.Modified = now

	var date interface{}
	if t.Date != nil {
		date = *t.Date
	}

	q := query.Insert(constants.TableToDo, map[string]interface{}{
		constants.FieldName:     t.Name,
		"custom_title":          t.CustomTitle,
		"description":           t.Description,
		"allocated_to":          t.AllocatedTo,
		"assigned_by":           t.AssignedBy,
		"date":                  date,
		"priority":              t.Priority,
		constants.FieldStatus:   t.Status,
		"reference_type":        t.ReferenceType,
		"reference_name":        t.ReferenceName,
		constants.FieldOwner:    owner,
		constants.FieldCreation: now,
		constants.FieldModified: now,
	}).Build()

	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// UpdateStatus changes the status of a ToDo
func (r *TodoRepository) UpdateStatus(ctx context.Context, name, status string) error {
	q := query.Update(constants.TableToDo).
		Set(map[string]interface{}{constants.FieldStatus: status, constants.FieldModified: time.Now()}).
		WhereEq(constants.FieldName, name).
		Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// OpenWithTitleExists reports whether an open ToDo with title references the record
func (r *TodoRepository) OpenWithTitleExists(ctx context.Context, doctype, docname, title string) (bool, error) {
	q := query.From(constants.TableToDo).
		Select(constants.FieldName).
		WhereEq("reference_type", doctype).
		WhereEq("reference_name", docname).
		WhereEq("custom_title", title).
		WhereEq(constants.FieldStatus, constants.ToDoStatusOpen).
		Limit(1).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}
