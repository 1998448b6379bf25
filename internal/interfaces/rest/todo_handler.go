package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/application/services"
	"github.com/rtCamp/next-crm/internal/domain/models"
)

// TodoManager creates ToDos and moves them through their statuses
type TodoManager interface {
	CreateTask(ctx context.Context, req services.CreateTaskRequest, user *models.UserSession) (*models.ToDo, error)
	UpdateStatus(ctx context.Context, name, status string, user *models.UserSession) (*models.ToDo, error)
}

// TodoStatusRequest is the body of PATCH /api/todos/:name/status
type TodoStatusRequest struct {
	Status string `json:"status"`
}

type TodoHandler struct {
	todos TodoManager
}

func NewTodoHandler(todos TodoManager) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// CreateTask handles POST /api/todos
func (h *TodoHandler) CreateTask(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.CreateTaskRequest
	HandleActionEnvelope(c, http.StatusCreated, &req, func() (interface{}, error) {
		return h.todos.CreateTask(c.Request.Context(), req, user)
	})
}

// UpdateStatus handles PATCH /api/todos/:name/status
func (h *TodoHandler) UpdateStatus(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req TodoStatusRequest
	HandleActionEnvelope(c, http.StatusOK, &req, func() (interface{}, error) {
		return h.todos.UpdateStatus(c.Request.Context(), c.Param("name"), req.Status, user)
	})
}
