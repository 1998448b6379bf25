package rest

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/auth"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/errors"
)

// GetUserFromContext extracts the authenticated user from gin.Context
func GetUserFromContext(c *gin.Context) *models.UserSession {
	userInterface, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil
	}

	// The middleware stores auth.UserSession
	authUser, ok := userInterface.(auth.UserSession)
	if !ok {
		return nil
	}
	return &models.UserSession{
		Name:            authUser.Name,
		FullName:        authUser.FullName,
		Email:           authUser.Email,
		Roles:           authUser.Roles,
		IsSystemManager: authUser.IsSystemManager(),
	}
}

// RespondAppError sends a standardised JSON error response using pkg/errors
func RespondAppError(c *gin.Context, err error) {
	code := errors.GetHTTPStatus(err)
	errorCode := errors.GetErrorCode(err)
	message := err.Error()

	if code >= 500 {
		log.Printf("❌ ERROR [%d] %s %s: %s", code, c.Request.Method, c.Request.URL.Path, message)
	}

	c.JSON(code, gin.H{
		constants.ResponseError: message,
		constants.FieldMessage:  message,
		"code":                  errorCode,
		"data":                  nil,
	})
}

// BindJSON binds JSON and returns true if successful. If failed, it sends bad request error.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// requireUser aborts with 401 when no session was attached by the auth middleware
func requireUser(c *gin.Context) (*models.UserSession, bool) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, errors.NewUnauthorizedError("User not authenticated"))
		return nil, false
	}
	return user, true
}

// HandleGetEnvelope executes a read action and returns the result wrapped in a JSON key
// Response: { [key]: result }
func HandleGetEnvelope(c *gin.Context, key string, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: result})
}

// HandleActionEnvelope binds the request body, runs action and returns its
// result under "data"
// Response: { "data": result }
func HandleActionEnvelope(c *gin.Context, status int, obj interface{}, action func() (interface{}, error)) {
	if obj != nil && !BindJSON(c, obj) {
		return
	}
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(status, gin.H{"data": result})
}

// HandleDeleteEnvelope executes a delete action and returns a success message
// Response: { constants.FieldMessage: successMsg }
func HandleDeleteEnvelope(c *gin.Context, successMsg string, action func() error) {
	if err := action(); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: successMsg})
}

// HandleMessageEnvelope executes an action whose result is a user facing message
// Response: { constants.FieldMessage: message }
func HandleMessageEnvelope(c *gin.Context, action func() (string, error)) {
	msg, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: msg})
}
