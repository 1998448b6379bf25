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

var noteColumns = []string{
	constants.FieldName, "custom_title", "note", constants.FieldOwner, "added_by", "added_on",
	"custom_parent_note", "parenttype", constants.FieldParent, constants.FieldCreation,
}

// NoteRepository stores CRM Notes and their attachment rows
type NoteRepository struct {
	baseRepository
}

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{baseRepository{db: db}}
}

func scanNote(scan func(dest ...interface{}) error) (*models.Note, error) {
	n := &models.Note{}
	err := scan(&n.Name, str{&n.CustomTitle}, str{&n.Note}, str{&n.Owner}, str{&n.AddedBy}, stamp{&n.AddedOn},
		str{&n.CustomParentNote}, str{&n.ParentType}, str{&n.Parent}, stamp{&n.Creation})
	return n, err
}

func (r *NoteRepository) list(ctx context.Context, q query.QueryResult) ([]models.Note, error) {
	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// ListForRecord returns every note of a record, newest added_on first
func (r *NoteRepository) ListForRecord(ctx context.Context, parent string) ([]models.Note, error) {
	q := query.From(constants.TableNote).
		Select(noteColumns...).
		WhereEq(constants.FieldParent, parent).
		OrderBy("added_on", query.DESC).
		Build()
	return r.list(ctx, q)
}

// RootNotes returns the top-level notes of a record in creation order
func (r *NoteRepository) RootNotes(ctx context.Context, doctype, parent string) ([]models.Note, error) {
	q := query.From(constants.TableNote).
		Select(noteColumns...).
		WhereEq(constants.FieldParent, parent).
		WhereEq("parenttype", doctype).
		Where("(`crm_note`.`custom_parent_note` IS NULL OR `crm_note`.`custom_parent_note` = '')").
		OrderBy(constants.FieldCreation, query.ASC).
		Build()
	return r.list(ctx, q)
}

// Children returns the replies of a note in creation order
func (r *NoteRepository) Children(ctx context.Context, parentNote string) ([]models.Note, error) {
	q := query.From(constants.TableNote).
		Select(noteColumns...).
		WhereEq("custom_parent_note", parentNote).
		OrderBy(constants.FieldCreation, query.ASC).
		Build()
	return r.list(ctx, q)
}

// Get loads a note by name. Returns nil when missing.
func (r *NoteRepository) Get(ctx context.Context, name string) (*models.Note, error) {
	q := query.From(constants.TableNote).Select(noteColumns...).WhereEq(constants.FieldName, name).Limit(1).Build()

	n, err := scanNote(r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Insert stores a note, filling name and creation when empty
func (r *NoteRepository) Insert(ctx context.Context, n *models.Note) error {
	if n.Name == "" {
		n.Name = utils.GenerateName()
	}
	if n.Creation.IsZero() {
		n.Creation = time.Now()
	}

	q := query.Insert(constants.TableNote, map[string]interface{}{
		constants.FieldName:     n.Name,
		"custom_title":          n.CustomTitle,
		"note":                  n.Note,
		"parenttype":            n.ParentType,
		constants.FieldParent:   n.Parent,
		"parentfield":           constants.ParentFieldNotes,
		"added_by":              n.AddedBy,
		"added_on":              n.AddedOn,
		"custom_parent_note":    nullable(n.CustomParentNote),
		constants.FieldOwner:    n.Owner,
		constants.FieldCreation: n.Creation,
		constants.FieldModified: n.Creation,
	}).Build()

	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// Update sets columns of a note and bumps modified
func (r *NoteRepository) Update(ctx context.Context, name string, values map[string]interface{}) error {
	updates := map[string]interface{}{constants.FieldModified: time.Now()}
	for k, v := range values {
		updates[k] = v
	}
	q := query.Update(constants.TableNote).Set(updates).WhereEq(constants.FieldName, name).Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// Delete removes a note and its attachment rows
func (r *NoteRepository) Delete(ctx context.Context, name string) error {
	exec := r.GetExecutor(ctx)

	q := query.Delete(constants.TableNoteAttachment).WhereEq(constants.FieldParent, name).Build()
	if _, err := exec.ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return err
	}

	q = query.Delete(constants.TableNote).WhereEq(constants.FieldName, name).Build()
	_, err := exec.ExecContext(ctx, q.SQL, q.Params...)
	return err
}

func (r *NoteRepository) attachments(ctx context.Context, q query.QueryResult) ([]models.NoteAttachment, error) {
	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.NoteAttachment, 0)
	for rows.Next() {
		var a models.NoteAttachment
		if err := rows.Scan(&a.Name, str{&a.Parent}, str{&a.Filename}); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Attachments returns the attachment rows of the given notes
func (r *NoteRepository) Attachments(ctx context.Context, notes []string) ([]models.NoteAttachment, error) {
	q := query.From(constants.TableNoteAttachment).
		Select(constants.FieldName, constants.FieldParent, "filename").
		WhereIn(constants.FieldParent, notes).
		WhereEq("parenttype", constants.DoctypeCRMNote).
		Build()
	return r.attachments(ctx, q)
}

// RecordAttachments returns the attachment rows of every note of a record
func (r *NoteRepository) RecordAttachments(ctx context.Context, doctype, parent string) ([]models.NoteAttachment, error) {
	q := query.From(constants.TableNoteAttachment).
		Select("`note_attachment`.`name`", "`note_attachment`.`parent`", "`note_attachment`.`filename`").
		Join("INNER", constants.TableNote, "cn", "`cn`.`name` = `note_attachment`.`parent`").
		Where("`cn`.`parenttype` = ?", doctype).
		Where("`cn`.`parent` = ?", parent).
		Where("`note_attachment`.`filename` IS NOT NULL").
		Build()
	return r.attachments(ctx, q)
}

// InsertAttachment links a file to a note
func (r *NoteRepository) InsertAttachment(ctx context.Context, a *models.NoteAttachment) error {
	if a.Name == "" {
		a.Name = utils.GenerateName()
	}
	q := query.Insert(constants.TableNoteAttachment, map[string]interface{}{
		constants.FieldName:   a.Name,
		constants.FieldParent: a.Parent,
		"parenttype":          constants.DoctypeCRMNote,
		"filename":            a.Filename,
	}).Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// DeleteAttachment removes the rows linking filename to the given notes and
// returns how many were removed
func (r *NoteRepository) DeleteAttachment(ctx context.Context, notes []string, filename string) (int64, error) {
	q := query.Delete(constants.TableNoteAttachment).
		WhereIn(constants.FieldParent, notes).
		WhereEq("filename", filename).
		Build()
	res, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteAttachmentRows removes attachment rows by their own names
func (r *NoteRepository) DeleteAttachmentRows(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	q := query.Delete(constants.TableNoteAttachment).WhereIn(constants.FieldName, names).Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// NotesWithFile returns the notes of a record that have filename attached
func (r *NoteRepository) NotesWithFile(ctx context.Context, filename, doctype, parent string) ([]string, error) {
	q := query.From(constants.TableNote).
		Select("DISTINCT `crm_note`.`name`").
		Join("INNER", constants.TableNoteAttachment, "na", "`na`.`parent` = `crm_note`.`name`").
		Where("`na`.`filename` = ?", filename).
		WhereEq("parenttype", doctype).
		WhereEq(constants.FieldParent, parent).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

// CountFileReferences returns how many note attachment rows point at filename
func (r *NoteRepository) CountFileReferences(ctx context.Context, filename string) (int, error) {
	q := query.From(constants.TableNoteAttachment).
		Select("COUNT(*)").
		WhereEq("filename", filename).
		Build()

	var n int
	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&n)
	return n, err
}
