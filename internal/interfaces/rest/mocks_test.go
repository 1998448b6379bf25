package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/application/services"
	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/auth"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/stretchr/testify/mock"
)

var (
	authUser  = auth.UserSession{Name: "jane@example.com", FullName: "Jane", Email: "jane@example.com", Roles: []string{"Sales User"}}
	modelUser = &models.UserSession{Name: "jane@example.com", FullName: "Jane", Email: "jane@example.com", Roles: []string{"Sales User"}}
)

// newContext returns a test context carrying the session user and, when body
// is not nil, a JSON request body
func newContext(method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(constants.ContextKeyUser, authUser)

	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

type MockActivityReader struct {
	mock.Mock
}

func (m *MockActivityReader) GetActivities(ctx context.Context, name string, user *models.UserSession) (*models.Timeline, error) {
	args := m.Called(ctx, name, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Timeline), args.Error(1)
}

type MockNoteManager struct {
	mock.Mock
}

func (m *MockNoteManager) CreateNote(ctx context.Context, in services.NoteInput, user *models.UserSession) (*models.Note, error) {
	args := m.Called(ctx, in, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteManager) LogNote(ctx context.Context, in services.NoteInput, user *models.UserSession) (*models.Note, error) {
	args := m.Called(ctx, in, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteManager) UpdateNote(ctx context.Context, doctype, docname, noteName string, in services.NoteUpdate, attachments interface{}, user *models.UserSession) (*models.Note, error) {
	args := m.Called(ctx, doctype, docname, noteName, in, attachments, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteManager) DeleteNote(ctx context.Context, noteName string, user *models.UserSession) error {
	return m.Called(ctx, noteName, user).Error(0)
}

func (m *MockNoteManager) DeleteNoteAttachment(ctx context.Context, fileName, noteName string, user *models.UserSession) (string, error) {
	args := m.Called(ctx, fileName, noteName, user)
	return args.String(0), args.Error(1)
}

type MockLeadConverter struct {
	mock.Mock
}

func (m *MockLeadConverter) Convert(ctx context.Context, lead, opportunity string, user *models.UserSession) (*services.ConversionResult, error) {
	args := m.Called(ctx, lead, opportunity, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ConversionResult), args.Error(1)
}

type MockAttachmentManager struct {
	mock.Mock
}

func (m *MockAttachmentManager) Upload(ctx context.Context, req services.UploadRequest, user *models.UserSession) (*models.File, error) {
	args := m.Called(ctx, req, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.File), args.Error(1)
}

func (m *MockAttachmentManager) DeleteAttachment(ctx context.Context, filename, doctype, docname string, user *models.UserSession) (string, error) {
	args := m.Called(ctx, filename, doctype, docname, user)
	return args.String(0), args.Error(1)
}

type MockOpportunityManager struct {
	mock.Mock
}

func (m *MockOpportunityManager) GetOpportunity(ctx context.Context, name string, user *models.UserSession) (*models.OpportunityView, error) {
	args := m.Called(ctx, name, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OpportunityView), args.Error(1)
}

func (m *MockOpportunityManager) DeclareLost(ctx context.Context, name string, req services.DeclareLostRequest, user *models.UserSession) (string, error) {
	args := m.Called(ctx, name, req, user)
	return args.String(0), args.Error(1)
}

func (m *MockOpportunityManager) UpdateDeal(ctx context.Context, req services.UpdateDealRequest, user *models.UserSession) (interface{}, error) {
	args := m.Called(ctx, req, user)
	return args.Get(0), args.Error(1)
}

func (m *MockOpportunityManager) CreateChecklist(ctx context.Context, docname, field, value string, user *models.UserSession) (string, error) {
	args := m.Called(ctx, docname, field, value, user)
	return args.String(0), args.Error(1)
}

type MockTodoManager struct {
	mock.Mock
}

func (m *MockTodoManager) CreateTask(ctx context.Context, req services.CreateTaskRequest, user *models.UserSession) (*models.ToDo, error) {
	args := m.Called(ctx, req, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ToDo), args.Error(1)
}

func (m *MockTodoManager) UpdateStatus(ctx context.Context, name, status string, user *models.UserSession) (*models.ToDo, error) {
	args := m.Called(ctx, name, status, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ToDo), args.Error(1)
}

type MockRecordDeleter struct {
	mock.Mock
}

func (m *MockRecordDeleter) Delete(ctx context.Context, doctype, name string, user *models.UserSession) error {
	return m.Called(ctx, doctype, name, user).Error(0)
}

type MockNotificationReader struct {
	mock.Mock
}

func (m *MockNotificationReader) GetMyNotifications(ctx context.Context, user *models.UserSession) ([]models.CRMNotification, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CRMNotification), args.Error(1)
}

func (m *MockNotificationReader) MarkAsRead(ctx context.Context, id string, user *models.UserSession) error {
	return m.Called(ctx, id, user).Error(0)
}
