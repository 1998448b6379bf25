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

var fileColumns = []string{
	constants.FieldName, "file_name", "file_type", "file_url", "file_size", "is_private", "folder",
	"attached_to_doctype", "attached_to_name", "storage_key", constants.FieldCreation, constants.FieldOwner,
}

// FileRepository stores File rows; the content lives in blob storage
type FileRepository struct {
	baseRepository
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{baseRepository{db: db}}
}

func scanFile(scan func(dest ...interface{}) error) (*models.File, error) {
	f := &models.File{}
	var size float64
	err := scan(&f.Name, str{&f.FileName}, str{&f.FileType}, str{&f.FileURL}, num{&size}, flag{&f.IsPrivate},
		str{&f.Folder}, str{&f.AttachedToDoctype}, str{&f.AttachedToName}, str{&f.StorageKey},
		stamp{&f.Creation}, str{&f.Owner})
	if err != nil {
		return nil, err
	}
	f.FileSize = int64(size)
	return f, nil
}

// Get loads a File by name. Returns nil when missing.
func (r *FileRepository) Get(ctx context.Context, name string) (*models.File, error) {
	q := query.From(constants.TableFile).Select(fileColumns...).WhereEq(constants.FieldName, name).Limit(1).Build()

	f, err := scanFile(r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

// ListAttached returns the files attached to a record
func (r *FileRepository) ListAttached(ctx context.Context, doctype, name string) ([]models.File, error) {
	q := query.From(constants.TableFile).
		Select(fileColumns...).
		WhereEq("attached_to_doctype", doctype).
		WhereEq("attached_to_name", name).
		OrderBy(constants.FieldCreation, query.ASC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.File, 0)
	for rows.Next() {
		f, err := scanFile(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// Insert stores a File row, filling name and creation when empty
func (r *FileRepository) Insert(ctx context.Context, f *models.File) error {
	if f.Name == "" {
		f.Name = utils.GenerateName()
	}
	if f.Creation.IsZero() {
		f.Creation = time.Now()
	}
	if f.Folder == "" {
		f.Folder = constants.DefaultFolder
	}

	q := query.Insert(constants.TableFile, map[string]interface{}{
		constants.FieldName:     f.Name,
		"file_name":             f.FileName,
		"file_type":             f.FileType,
		"file_url":              f.FileURL,
		"file_size":             f.FileSize,
		"is_private":            utils.BoolToInt(f.IsPrivate),
		"folder":                f.Folder,
		"attached_to_doctype":   nullable(f.AttachedToDoctype),
		"attached_to_name":      nullable(f.AttachedToName),
		"storage_key":           f.StorageKey,
		constants.FieldOwner:    f.Owner,
		constants.FieldCreation: f.Creation,
		constants.FieldModified: f.Creation,
	}).Build()

	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// Delete removes a File row
func (r *FileRepository) Delete(ctx context.Context, name string) error {
	q := query.Delete(constants.TableFile).WhereEq(constants.FieldName, name).Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}
