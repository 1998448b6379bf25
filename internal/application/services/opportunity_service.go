package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/errors"
	"github.com/rtCamp/next-crm/pkg/utils"
)

const (
	checklistItemTemplate = `<li data-list="unchecked"><span class="ql-ui" contenteditable="false"></span>%s</li>`
	settingHideComments   = "hide_comments_tab"
)

// DeclareLostRequest is the payload of the declare lost endpoint
type DeclareLostRequest struct {
	LostReasons    []string `json:"lost_reasons_list"`
	Competitors    []string `json:"competitors"`
	DetailedReason string   `json:"detailed_reason"`
}

// UpdateDealRequest moves a Lead or Opportunity to a new status or stage.
// nil fields are left unchanged.
type UpdateDealRequest struct {
	ReferenceDoctype string  `json:"reference_doctype"`
	ReferenceName    string  `json:"reference_name"`
	DealStage        *string `json:"deal_stage"`
	Status           *string `json:"status"`
}

// OpportunityService serves the opportunity detail page and deal pipeline updates
type OpportunityService struct {
	records ports.RecordStore
	docinfo ports.DocInfoStore
	crm     ports.CRMStore
	todos   ports.TodoStore
	perms   *PermissionService
	tx      ports.Transactor
}

// NewOpportunityService creates a new OpportunityService
func NewOpportunityService(records ports.RecordStore, docinfo ports.DocInfoStore, crm ports.CRMStore, todos ports.TodoStore,
	perms *PermissionService, tx ports.Transactor) *OpportunityService {
	return &OpportunityService{
		records: records,
		docinfo: docinfo,
		crm:     crm,
		todos:   todos,
		perms:   perms,
		tx:      tx,
	}
}

// GetOpportunity returns an opportunity with the metadata the form needs
func (s *OpportunityService) GetOpportunity(ctx context.Context, name string, user *models.UserSession) (*models.OpportunityView, error) {
	if err := s.perms.Require(ctx, constants.DoctypeOpportunity, constants.PermRead, user, msgNotPermitted); err != nil {
		return nil, err
	}

	o, assign, err := s.crm.GetOpportunity(ctx, name)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.NewNotFoundError(constants.DoctypeOpportunity, name)
	}

	view := &models.OpportunityView{Opportunity: *o, Doctype: constants.DoctypeOpportunity, Assign: assign}
	if view.FieldsMeta, err = s.docinfo.Fields(ctx, constants.DoctypeOpportunity); err != nil {
		return nil, err
	}
	if view.FormScript, err = s.crm.FormScripts(ctx, constants.DoctypeOpportunity); err != nil {
		return nil, err
	}
	hide, err := s.crm.Setting(ctx, settingHideComments)
	if err != nil {
		return nil, err
	}
	view.HideCommentsTab = utils.ToBool(hide)
	return view, nil
}

// DeclareLost marks an opportunity Lost unless an active quotation exists
func (s *OpportunityService) DeclareLost(ctx context.Context, name string, req DeclareLostRequest, user *models.UserSession) (string, error) {
	if err := s.perms.Require(ctx, constants.DoctypeOpportunity, constants.PermWrite, user, msgNotPermitted); err != nil {
		return "", err
	}

	exists, err := s.records.Exists(ctx, constants.TableOpportunity, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errors.NewNotFoundError(constants.DoctypeOpportunity, name)
	}

	active, err := s.crm.HasActiveQuotation(ctx, name)
	if err != nil {
		return "", err
	}
	if active {
		return "", errors.Invalid("Cannot declare as lost, because Quotation has been made.")
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.crm.DeclareLost(ctx, name, req.LostReasons, req.Competitors, req.DetailedReason)
	})
	if err != nil {
		return "", err
	}
	return "Opportunity updated successfully", nil
}

// UpdateDeal validates and applies a status or sales stage change, then
// creates the checklist ToDos configured for the new values. Returns the
// updated Lead or Opportunity.
func (s *OpportunityService) UpdateDeal(ctx context.Context, req UpdateDealRequest, user *models.UserSession) (interface{}, error) {
	table, err := validateReference(ctx, s.records, s.perms, req.ReferenceDoctype, req.ReferenceName, user)
	if err != nil {
		return nil, err
	}
	isOpportunity := req.ReferenceDoctype == constants.DoctypeOpportunity

	if req.DealStage != nil && isOpportunity {
		ok, err := s.records.Exists(ctx, constants.TableSalesStage, *req.DealStage)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Invalid("Invalid deal_stage")
		}
	}
	if req.Status != nil {
		statusTable := constants.TableLeadStatus
		if isOpportunity {
			statusTable = constants.TableDealStatus
		}
		ok, err := s.records.Exists(ctx, statusTable, *req.Status)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Invalid("Invalid status")
		}
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		updates[constants.FieldStatus] = *req.Status
	}
	if req.DealStage != nil && isOpportunity {
		updates["sales_stage"] = *req.DealStage
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.records.SetValues(ctx, table, req.ReferenceName, updates); err != nil {
			return err
		}
		if !isOpportunity {
			return nil
		}
		if req.Status != nil {
			if _, err := s.CreateChecklist(ctx, req.ReferenceName, constants.FieldStatus, *req.Status, user); err != nil {
				return err
			}
		}
		if req.DealStage != nil {
			if _, err := s.CreateChecklist(ctx, req.ReferenceName, "sales_stage", *req.DealStage, user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if isOpportunity {
		o, _, err := s.crm.GetOpportunity(ctx, req.ReferenceName)
		return o, err
	}
	l, _, err := s.crm.GetLead(ctx, req.ReferenceName)
	return l, err
}

// CreateChecklist adds a ToDo listing the checklist items of a deal status
// (field "status") or sales stage (any other field). Returns the ToDo name,
// empty when nothing was created.
func (s *OpportunityService) CreateChecklist(ctx context.Context, docname, field, value string, user *models.UserSession) (string, error) {
	if field == "" && value == "" {
		return "", nil
	}

	title := fmt.Sprintf("Checklist for %s", value)
	exists, err := s.todos.OpenWithTitleExists(ctx, constants.DoctypeOpportunity, docname, title)
	if err != nil {
		return "", err
	}
	if exists {
		return "", nil
	}

	parentType := constants.DoctypeSalesStage
	if field == constants.FieldStatus {
		parentType = constants.DoctypeCRMDealStatus
	}
	items, err := s.crm.ChecklistItems(ctx, value, parentType)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(`<div class="ql-editor read-mode"><ol>`)
	for _, item := range items {
		fmt.Fprintf(&b, checklistItemTemplate, item)
	}
	b.WriteString(`</ol></div>`)

	var sessionUser string
	if user != nil {
		sessionUser = user.Name
	}
	allocatedTo, _, err := s.records.GetValue(ctx, constants.TableOpportunity, docname, "opportunity_owner")
	if err != nil {
		return "", err
	}
	if allocatedTo == "" {
		allocatedTo = sessionUser
	}

	todo := &models.ToDo{
		CustomTitle:   title,
		Description:   b.String(),
		AllocatedTo:   allocatedTo,
		Priority:      constants.ToDoPriorityMedium,
		Status:        constants.ToDoStatusOpen,
		ReferenceType: constants.DoctypeOpportunity,
		ReferenceName: docname,
	}
	if err := s.todos.Insert(ctx, todo, sessionUser); err != nil {
		return "", err
	}
	log.Printf("✅ Created checklist %s for %s %s", todo.Name, docname, value)
	return todo.Name, nil
}
