package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/errors"
	"github.com/rtCamp/next-crm/pkg/utils"
)

const (
	emphasisSpan = `<span class="font-medium text-ink-gray-9">%s</span>`

	assignRecordTemplate = `<div class="mb-2 leading-5 text-ink-gray-5">` + emphasisSpan +
		`<span>assigned a %s ` + emphasisSpan + ` to you</span></div>`
	cancelRecordTemplate = `<div class="mb-2 leading-5 text-ink-gray-5"><span>Your assignment on %s ` +
		emphasisSpan + ` has been removed by ` + emphasisSpan + `</span></div>`

	assignTodoTemplate = `<div class="mb-2 leading-5 text-ink-gray-5">` + emphasisSpan +
		`<span>assigned a new ToDo in %s ` + emphasisSpan + ` to you</span></div>`
	cancelTodoTemplate = `<div class="mb-2 leading-5 text-ink-gray-5"><span>Your assignment on ToDo ` +
		emphasisSpan + ` has been removed by ` + emphasisSpan + `</span></div>`
)

// CreateTaskRequest is the payload of the create task endpoint
type CreateTaskRequest struct {
	ReferenceDoctype string `json:"reference_doctype"`
	ReferenceName    string `json:"reference_name"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	AllocatedTo      string `json:"allocated_to"`
	Date             string `json:"date"`
	Priority         string `json:"priority"`
	Status           string `json:"status"`
}

// TodoService creates follow-up ToDos and notifies their assignees
type TodoService struct {
	todos   ports.TodoStore
	records ports.RecordStore
	crm     ports.CRMStore
	users   ports.UserStore
	perms   *PermissionService
	notify  *NotificationService
}

// NewTodoService creates a new TodoService
func NewTodoService(todos ports.TodoStore, records ports.RecordStore, crm ports.CRMStore, users ports.UserStore,
	perms *PermissionService, notify *NotificationService) *TodoService {
	return &TodoService{
		todos:   todos,
		records: records,
		crm:     crm,
		users:   users,
		perms:   perms,
		notify:  notify,
	}
}

// CreateTask creates a ToDo on a Lead or Opportunity and notifies the assignee
func (s *TodoService) CreateTask(ctx context.Context, req CreateTaskRequest, user *models.UserSession) (*models.ToDo, error) {
	if _, err := validateReference(ctx, s.records, s.perms, req.ReferenceDoctype, req.ReferenceName, user); err != nil {
		return nil, err
	}
	if err := s.perms.Require(ctx, constants.DoctypeToDo, constants.PermCreate, user, msgNotPermitted); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" && description == "" {
		return nil, errors.Invalid("ToDo must have either a title or a description.")
	}

	todo := &models.ToDo{
		CustomTitle:   title,
		Description:   description,
		AllocatedTo:   req.AllocatedTo,
		AssignedBy:    user.Name,
		Priority:      req.Priority,
		Status:        req.Status,
		ReferenceType: req.ReferenceDoctype,
		ReferenceName: req.ReferenceName,
	}
	if todo.AllocatedTo == "" {
		todo.AllocatedTo = user.Name
	}
	if todo.Priority == "" {
		todo.Priority = constants.ToDoPriorityMedium
	}
	if todo.Status == "" {
		todo.Status = constants.ToDoStatusOpen
	}
	if req.Date != "" {
		date, err := utils.ParseDateTime(req.Date)
		if err != nil {
			return nil, errors.NewValidationError("date", err.Error())
		}
		todo.Date = &date
	}

	if err := s.todos.Insert(ctx, todo, user.Name); err != nil {
		return nil, err
	}
	if err := s.notifyAssignment(ctx, todo, user, false); err != nil {
		return nil, err
	}
	return todo, nil
}

// UpdateStatus changes the status of a ToDo. Cancelling notifies the assignee.
func (s *TodoService) UpdateStatus(ctx context.Context, name, status string, user *models.UserSession) (*models.ToDo, error) {
	if status == "" {
		return nil, errors.NewValidationError("status", "is required")
	}

	todo, err := s.todos.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, errors.NewNotFoundError(constants.DoctypeToDo, name)
	}
	if err := s.perms.Require(ctx, constants.DoctypeToDo, constants.PermWrite, user, msgNotPermitted); err != nil {
		return nil, err
	}
	if todo.Status == status {
		return todo, nil
	}

	if err := s.todos.UpdateStatus(ctx, name, status); err != nil {
		return nil, err
	}
	todo.Status = status

	if status == constants.ToDoStatusCancelled {
		if err := s.notifyAssignment(ctx, todo, user, true); err != nil {
			return nil, err
		}
	}
	return todo, nil
}

func (s *TodoService) notifyAssignment(ctx context.Context, todo *models.ToDo, user *models.UserSession, cancelled bool) error {
	owner, err := s.users.FullName(ctx, user.Name)
	if err != nil {
		return err
	}
	if owner == "" {
		owner = user.Name
	}

	message := fmt.Sprintf("%s assigned a %s %s to you", owner, todo.ReferenceType, todo.ReferenceName)
	if cancelled {
		message = fmt.Sprintf("Your assignment on %s %s has been removed by %s", todo.ReferenceType, todo.ReferenceName, owner)
	}

	text, err := s.notificationText(ctx, owner, todo, cancelled)
	if err != nil {
		return err
	}

	return s.notify.Notify(ctx, &models.CRMNotification{
		FromUser:                user.Name,
		ToUser:                  todo.AllocatedTo,
		Type:                    constants.NotificationAssignment,
		Message:                 message,
		NotificationText:        text,
		NotificationTypeDoctype: constants.DoctypeToDo,
		NotificationTypeDoc:     todo.Name,
		ReferenceDoctype:        todo.ReferenceType,
		ReferenceName:           todo.ReferenceName,
	})
}

// notificationText renders the notification for a record the assignee is
// not yet assigned to, falling back to the ToDo wording otherwise
func (s *TodoService) notificationText(ctx context.Context, owner string, todo *models.ToDo, cancelled bool) (string, error) {
	title, assigned, err := s.referenceTitle(ctx, todo)
	if err != nil {
		return "", err
	}

	if constants.IsCRMReference(todo.ReferenceType) && !assigned {
		if cancelled {
			return fmt.Sprintf(cancelRecordTemplate, todo.ReferenceType, title, owner), nil
		}
		return fmt.Sprintf(assignRecordTemplate, owner, todo.ReferenceType, title), nil
	}

	if title == "" {
		title = todo.ReferenceName
	}
	if cancelled {
		return fmt.Sprintf(cancelTodoTemplate, title, owner), nil
	}
	return fmt.Sprintf(assignTodoTemplate, owner, todo.ReferenceType, title), nil
}

// referenceTitle returns the display title of the referenced record and
// whether the assignee already appears in its assignments
func (s *TodoService) referenceTitle(ctx context.Context, todo *models.ToDo) (string, bool, error) {
	switch todo.ReferenceType {
	case constants.DoctypeLead:
		l, assign, err := s.crm.GetLead(ctx, todo.ReferenceName)
		if err != nil || l == nil {
			return todo.ReferenceName, false, err
		}
		assigned := isAssigned(assign, todo.AllocatedTo)
		if l.Title != "" {
			return l.Title, assigned, nil
		}
		return todo.ReferenceName, assigned, nil
	case constants.DoctypeOpportunity:
		o, assign, err := s.crm.GetOpportunity(ctx, todo.ReferenceName)
		if err != nil || o == nil {
			return todo.ReferenceName, false, err
		}
		assigned := isAssigned(assign, todo.AllocatedTo)
		switch {
		case o.Title != "":
			return o.Title, assigned, nil
		case o.Customer != "":
			return o.Customer, assigned, nil
		}
		return todo.ReferenceName, assigned, nil
	}
	return todo.ReferenceName, false, nil
}

func isAssigned(assign []string, user string) bool {
	for _, a := range assign {
		if a == user {
			return true
		}
	}
	return false
}
