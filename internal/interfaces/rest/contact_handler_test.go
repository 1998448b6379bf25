package rest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/interfaces/rest"
	"github.com/rtCamp/next-crm/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockContactManager struct {
	mock.Mock
}

func (m *MockContactManager) GetContact(ctx context.Context, name string) (*models.Contact, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactManager) GetContactByEmail(ctx context.Context, email string, user *models.UserSession) (*models.Contact, error) {
	args := m.Called(ctx, email, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactManager) GetLinkedDocs(ctx context.Context, contact, doctype string) ([]string, error) {
	args := m.Called(ctx, contact, doctype)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockContactManager) GetLinkedOpportunities(ctx context.Context, contact string) ([]models.Opportunity, error) {
	args := m.Called(ctx, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Opportunity), args.Error(1)
}

func (m *MockContactManager) GetLinkedCustomers(ctx context.Context, contact string, user *models.UserSession) ([]models.Customer, error) {
	args := m.Called(ctx, contact, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockContactManager) GetLinkedLeads(ctx context.Context, contact string, user *models.UserSession) ([]models.Lead, error) {
	args := m.Called(ctx, contact, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lead), args.Error(1)
}

func (m *MockContactManager) CreateNew(ctx context.Context, contact, field, value string, user *models.UserSession) error {
	return m.Called(ctx, contact, field, value, user).Error(0)
}

func (m *MockContactManager) SetAsPrimary(ctx context.Context, contact, field, value string, user *models.UserSession) error {
	return m.Called(ctx, contact, field, value, user).Error(0)
}

func (m *MockContactManager) SearchEmails(ctx context.Context, txt string, user *models.UserSession) ([][]string, error) {
	args := m.Called(ctx, txt, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]string), args.Error(1)
}

func (m *MockContactManager) GetLinkedContact(ctx context.Context, doctype, name string) ([]string, error) {
	args := m.Called(ctx, doctype, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockContactManager) LinkContactToDoc(ctx context.Context, contact, doctype, docname string, user *models.UserSession) (string, error) {
	args := m.Called(ctx, contact, doctype, docname, user)
	return args.String(0), args.Error(1)
}

func (m *MockContactManager) RemoveLinkFromContact(ctx context.Context, contact, doctype, docname string, user *models.UserSession) (string, error) {
	args := m.Called(ctx, contact, doctype, docname, user)
	return args.String(0), args.Error(1)
}

func (m *MockContactManager) GetLeadOpportunityContacts(ctx context.Context, doctype, docname string) ([]models.LinkedContact, error) {
	args := m.Called(ctx, doctype, docname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LinkedContact), args.Error(1)
}

func (m *MockContactManager) SetOpportunityPrimaryContact(ctx context.Context, docname, contact string, user *models.UserSession) (bool, error) {
	args := m.Called(ctx, docname, contact, user)
	return args.Bool(0), args.Error(1)
}

func TestContactHandler(t *testing.T) {
	mockService := new(MockContactManager)
	handler := rest.NewContactHandler(mockService)

	t.Run("Get By Email", func(t *testing.T) {
		c, w := newContext("GET", "/api/contacts/by-email?email=ann@example.com", nil)

		mockService.On("GetContactByEmail", mock.Anything, "ann@example.com", modelUser).
			Return(&models.Contact{Name: "C-1", EmailID: "ann@example.com"}, nil).Once()

		handler.GetContactByEmail(c)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "C-1", data["name"])
	})

	t.Run("Search Emails", func(t *testing.T) {
		c, w := newContext("GET", "/api/contacts/search-emails?txt=ann", nil)

		mockService.On("SearchEmails", mock.Anything, "ann", modelUser).
			Return([][]string{{"ann@example.com", "Ann Lee", "C-1"}}, nil).Once()

		handler.SearchEmails(c)

		assert.Equal(t, http.StatusOK, w.Code)
		rows := decode(t, w)["data"].([]interface{})
		require.Len(t, rows, 1)
		assert.Equal(t, []interface{}{"ann@example.com", "Ann Lee", "C-1"}, rows[0])
	})

	t.Run("Create Value", func(t *testing.T) {
		c, w := newContext("POST", "/api/contacts/C-1/values", rest.ContactValueRequest{Field: "email", Value: "ann@work.com"})
		c.Params = gin.Params{{Key: "name", Value: "C-1"}}

		mockService.On("CreateNew", mock.Anything, "C-1", "email", "ann@work.com", modelUser).Return(nil).Once()

		handler.CreateNew(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, true, decode(t, w)["data"])
	})

	t.Run("Create Value Requires Field", func(t *testing.T) {
		c, w := newContext("POST", "/api/contacts/C-1/values", map[string]string{"value": "x"})
		c.Params = gin.Params{{Key: "name", Value: "C-1"}}

		handler.CreateNew(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNumberOfCalls(t, "CreateNew", 1)
	})

	t.Run("Set Primary Unknown Field", func(t *testing.T) {
		c, w := newContext("PUT", "/api/contacts/C-1/primary", rest.ContactValueRequest{Field: "fax", Value: "1"})
		c.Params = gin.Params{{Key: "name", Value: "C-1"}}

		mockService.On("SetAsPrimary", mock.Anything, "C-1", "fax", "1", modelUser).
			Return(errors.NewValidationError("field", "must be email, phone or mobile_no")).Once()

		handler.SetAsPrimary(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Link And Unlink", func(t *testing.T) {
		c, w := newContext("POST", "/api/contacts/C-1/links", rest.ContactLinkRequest{Doctype: "Lead", Docname: "CRM-LEAD-1"})
		c.Params = gin.Params{{Key: "name", Value: "C-1"}}
		mockService.On("LinkContactToDoc", mock.Anything, "C-1", "Lead", "CRM-LEAD-1", modelUser).Return("C-1", nil).Once()

		handler.LinkContactToDoc(c)
		assert.Equal(t, http.StatusOK, w.Code)

		c, w = newContext("DELETE", "/api/contacts/C-1/links/Lead/CRM-LEAD-1", nil)
		c.Params = gin.Params{{Key: "name", Value: "C-1"}, {Key: "doctype", Value: "Lead"}, {Key: "docname", Value: "CRM-LEAD-1"}}
		mockService.On("RemoveLinkFromContact", mock.Anything, "C-1", "Lead", "CRM-LEAD-1", modelUser).
			Return("", errors.NewNotFoundError("Lead", "CRM-LEAD-1")).Once()

		handler.RemoveLinkFromContact(c)
		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Record Contacts", func(t *testing.T) {
		c, w := newContext("GET", "/api/records/Opportunity/CRM-OPP-1/contacts", nil)
		c.Params = gin.Params{{Key: "doctype", Value: "Opportunity"}, {Key: "name", Value: "CRM-OPP-1"}}

		mockService.On("GetLeadOpportunityContacts", mock.Anything, "Opportunity", "CRM-OPP-1").
			Return([]models.LinkedContact{{Name: "C-1", IsPrimaryContact: true}}, nil).Once()

		handler.GetLeadOpportunityContacts(c)

		assert.Equal(t, http.StatusOK, w.Code)
		rows := decode(t, w)["data"].([]interface{})
		require.Len(t, rows, 1)
		assert.Equal(t, "C-1", rows[0].(map[string]interface{})["name"])
	})

	t.Run("Primary Contact", func(t *testing.T) {
		c, w := newContext("POST", "/api/opportunities/CRM-OPP-1/primary-contact", rest.PrimaryContactRequest{Contact: "C-2"})
		c.Params = gin.Params{{Key: "name", Value: "CRM-OPP-1"}}

		mockService.On("SetOpportunityPrimaryContact", mock.Anything, "CRM-OPP-1", "C-2", modelUser).Return(true, nil).Once()

		handler.SetOpportunityPrimaryContact(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["data"])
	})
}
