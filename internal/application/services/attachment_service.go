package services

import (
	"context"
	stderrors "errors"
	"io"
	"log"
	"path"
	"strings"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/internal/infrastructure/storage"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/errors"
)

var errFileLinked = errors.Conflict("Cannot delete file because it's still linked with another document.")

// UploadRequest describes a file sent to POST /api/files/upload
type UploadRequest struct {
	Doctype     string
	Docname     string
	FileName    string
	ContentType string
	Size        int64
	IsPrivate   bool
	Content     io.Reader
}

// AttachmentService owns File rows and their stored content
type AttachmentService struct {
	files   ports.FileStore
	notes   ports.NoteStore
	records ports.RecordStore
	blobs   ports.BlobStore
	perms   *PermissionService
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(files ports.FileStore, notes ports.NoteStore, records ports.RecordStore, blobs ports.BlobStore, perms *PermissionService) *AttachmentService {
	return &AttachmentService{files: files, notes: notes, records: records, blobs: blobs, perms: perms}
}

// deleteFile removes a File row and its content. A file still attached to a
// note is refused with a ConflictError.
func (s *AttachmentService) deleteFile(ctx context.Context, name string) error {
	f, err := s.files.Get(ctx, name)
	if err != nil {
		return err
	}
	if f == nil {
		return errors.NotFoundf("File with ID '%s' not found.", name)
	}

	refs, err := s.notes.CountFileReferences(ctx, name)
	if err != nil {
		return err
	}
	if refs > 0 {
		return errFileLinked
	}

	if err := s.files.Delete(ctx, name); err != nil {
		return err
	}

	if f.StorageKey != "" && s.blobs.Enabled() {
		if err := s.blobs.Delete(ctx, f.StorageKey); err != nil {
			log.Printf("⚠️ Failed to remove stored content %s of file %s: %v", f.StorageKey, name, err)
		}
	}
	return nil
}

// DeleteAttachment deletes a File. With doctype and docname it first drops
// the file from every note of that document.
func (s *AttachmentService) DeleteAttachment(ctx context.Context, filename, doctype, docname string, user *models.UserSession) (string, error) {
	if err := s.perms.Require(ctx, constants.DoctypeFile, constants.PermDelete, user, msgNotPermitted); err != nil {
		return "", err
	}

	if doctype != "" && docname != "" {
		notes, err := s.notes.NotesWithFile(ctx, filename, doctype, docname)
		if err != nil {
			return "", err
		}
		if len(notes) > 0 {
			if _, err := s.notes.DeleteAttachment(ctx, notes, filename); err != nil {
				return "", err
			}
		}
	}

	err := s.deleteFile(ctx, filename)
	switch {
	case err == nil:
		return "File deleted successfully.", nil
	case errors.IsNotFound(err), errors.IsConflict(err):
		return "", err
	default:
		log.Printf("❌ Failed to delete file %s: %v", filename, err)
		return "", errors.NewInternalError("An unexpected error occurred while deleting the file.", nil)
	}
}

// PurgeNoteAttachments removes every file attached to the notes of a
// document. Failures are logged and do not stop the purge.
func (s *AttachmentService) PurgeNoteAttachments(ctx context.Context, doctype, docname string) error {
	rows, err := s.notes.RecordAttachments(ctx, doctype, docname)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	ids := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	files := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Name)
		if !seen[r.Filename] {
			seen[r.Filename] = true
			files = append(files, r.Filename)
		}
	}

	if err := s.notes.DeleteAttachmentRows(ctx, ids); err != nil {
		return err
	}

	for _, name := range files {
		err := s.deleteFile(ctx, name)
		switch {
		case err == nil:
		case errors.IsConflict(err):
			log.Printf("⚠️ File %s still linked to another document", name)
		default:
			log.Printf("❌ Failed to delete file %s: %v", name, err)
		}
	}
	return nil
}

// Upload stores content in blob storage and attaches a new File to a record
func (s *AttachmentService) Upload(ctx context.Context, req UploadRequest, user *models.UserSession) (*models.File, error) {
	table, ok := constants.TableFor(req.Doctype)
	if !ok {
		return nil, errors.NewValidationError("doctype", "unsupported doctype "+req.Doctype)
	}
	if req.Docname == "" {
		return nil, errors.NewValidationError("docname", "is required")
	}
	if req.FileName == "" {
		return nil, errors.NewValidationError("file", "is required")
	}

	exists, err := s.records.Exists(ctx, table, req.Docname)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFoundf("Document not found")
	}
	if err := s.perms.Require(ctx, req.Doctype, constants.PermWrite, user, msgNotPermitted); err != nil {
		return nil, err
	}
	if !s.blobs.Enabled() {
		return nil, errors.Invalid(storage.ErrDisabled.Error())
	}

	key := storage.ObjectKey(req.FileName, req.IsPrivate)
	if err := s.blobs.Put(ctx, key, req.Content, req.Size, req.ContentType); err != nil {
		return nil, errors.NewInternalError("failed to store file", err)
	}

	f := &models.File{
		FileName:          req.FileName,
		FileType:          fileType(req.FileName),
		FileURL:           fileURL(key),
		FileSize:          req.Size,
		IsPrivate:         req.IsPrivate,
		AttachedToDoctype: req.Doctype,
		AttachedToName:    req.Docname,
		StorageKey:        key,
		Owner:             user.Name,
	}
	if err := s.files.Insert(ctx, f); err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			log.Printf("⚠️ Failed to clean up %s after insert error: %v", key, derr)
		}
		return nil, err
	}
	return f, nil
}

// DuplicateFile copies a File and its content, attaching the copy to another
// record. It returns the new file's name.
func (s *AttachmentService) DuplicateFile(ctx context.Context, name, doctype, docname, owner string) (string, error) {
	original, err := s.files.Get(ctx, name)
	if err != nil {
		return "", err
	}
	if original == nil {
		return "", errors.NewNotFoundError(constants.DoctypeFile, name)
	}

	dup := &models.File{
		FileName:          original.FileName,
		FileType:          original.FileType,
		FileURL:           original.FileURL,
		FileSize:          original.FileSize,
		IsPrivate:         original.IsPrivate,
		Folder:            original.Folder,
		AttachedToDoctype: doctype,
		AttachedToName:    docname,
		Owner:             owner,
	}

	if original.StorageKey != "" {
		key := storage.ObjectKey(original.FileName, original.IsPrivate)
		err := s.blobs.Copy(ctx, original.StorageKey, key)
		switch {
		case err == nil:
			dup.StorageKey = key
			dup.FileURL = fileURL(key)
		case stderrors.Is(err, storage.ErrDisabled):
		default:
			log.Printf("⚠️ Could not copy content of file %s: %v", name, err)
		}
	}

	if err := s.files.Insert(ctx, dup); err != nil {
		return "", err
	}
	return dup.Name, nil
}

// fileURL maps a storage key to the URL the desk serves it from
func fileURL(key string) string {
	return "/" + key
}

// fileType is the upper-cased extension, e.g. PDF
func fileType(fileName string) string {
	return strings.ToUpper(strings.TrimPrefix(path.Ext(fileName), "."))
}
