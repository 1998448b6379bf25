package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/application/services"
	"github.com/rtCamp/next-crm/internal/domain/models"
)

// NoteManager is the note API of the notes service
type NoteManager interface {
	CreateNote(ctx context.Context, in services.NoteInput, user *models.UserSession) (*models.Note, error)
	LogNote(ctx context.Context, in services.NoteInput, user *models.UserSession) (*models.Note, error)
	UpdateNote(ctx context.Context, doctype, docname, noteName string, in services.NoteUpdate, attachments interface{}, user *models.UserSession) (*models.Note, error)
	DeleteNote(ctx context.Context, noteName string, user *models.UserSession) error
	DeleteNoteAttachment(ctx context.Context, fileName, noteName string, user *models.UserSession) (string, error)
}

// UpdateNoteRequest is the body of PUT /api/notes/:name
type UpdateNoteRequest struct {
	Doctype     string              `json:"doctype"`
	Docname     string              `json:"docname"`
	Note        services.NoteUpdate `json:"note"`
	Attachments interface{}         `json:"attachments"`
}

type NoteHandler struct {
	notes NoteManager
}

func NewNoteHandler(notes NoteManager) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// CreateNote handles POST /api/notes
func (h *NoteHandler) CreateNote(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.NoteInput
	HandleActionEnvelope(c, http.StatusCreated, &req, func() (interface{}, error) {
		return h.notes.CreateNote(c.Request.Context(), req, user)
	})
}

// LogNote handles POST /api/notes/log
func (h *NoteHandler) LogNote(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.NoteInput
	HandleActionEnvelope(c, http.StatusCreated, &req, func() (interface{}, error) {
		return h.notes.LogNote(c.Request.Context(), req, user)
	})
}

// UpdateNote handles PUT /api/notes/:name
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	HandleActionEnvelope(c, http.StatusOK, &req, func() (interface{}, error) {
		return h.notes.UpdateNote(c.Request.Context(), req.Doctype, req.Docname, c.Param("name"), req.Note, req.Attachments, user)
	})
}

// DeleteNote handles DELETE /api/notes/:name
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleDeleteEnvelope(c, "Note deleted successfully", func() error {
		return h.notes.DeleteNote(c.Request.Context(), c.Param("name"), user)
	})
}

// DeleteNoteAttachment handles DELETE /api/notes/attachments/:file?note=
func (h *NoteHandler) DeleteNoteAttachment(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleMessageEnvelope(c, func() (string, error) {
		return h.notes.DeleteNoteAttachment(c.Request.Context(), c.Param("file"), c.Query("note"), user)
	})
}
