package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/application/services"
	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/errors"
	"github.com/rtCamp/next-crm/pkg/utils"
)

// maxUploadSize bounds multipart uploads
const maxUploadSize = 25 << 20

// AttachmentManager stores and deletes record files
type AttachmentManager interface {
	Upload(ctx context.Context, req services.UploadRequest, user *models.UserSession) (*models.File, error)
	DeleteAttachment(ctx context.Context, filename, doctype, docname string, user *models.UserSession) (string, error)
}

type AttachmentHandler struct {
	attachments AttachmentManager
}

func NewAttachmentHandler(attachments AttachmentManager) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload handles POST /api/files/upload (multipart: file, doctype, docname, is_private)
func (h *AttachmentHandler) Upload(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	header, err := c.FormFile("file")
	if err != nil {
		RespondAppError(c, errors.NewValidationError("file", "No file uploaded"))
		return
	}
	content, err := header.Open()
	if err != nil {
		RespondAppError(c, errors.NewInternalError("Failed to read upload", err))
		return
	}
	defer content.Close()

	req := services.UploadRequest{
		Doctype:     c.PostForm("doctype"),
		Docname:     c.PostForm("docname"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		IsPrivate:   utils.ToBool(c.PostForm("is_private")),
		Content:     content,
	}

	HandleActionEnvelope(c, http.StatusCreated, nil, func() (interface{}, error) {
		return h.attachments.Upload(c.Request.Context(), req, user)
	})
}

// DeleteAttachment handles DELETE /api/attachments/:filename?doctype=&docname=
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleMessageEnvelope(c, func() (string, error) {
		return h.attachments.DeleteAttachment(c.Request.Context(), c.Param("filename"), c.Query("doctype"), c.Query("docname"), user)
	})
}
