package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/query"
	"github.com/rtCamp/next-crm/pkg/utils"
)

// Quotation statuses that no longer block declaring an opportunity lost
var inactiveQuotationStatuses = []string{"Lost", "Closed"}

// CRMRepository reads and updates leads, opportunities, customers and the
// settings that drive them
type CRMRepository struct {
	baseRepository
}

// NewCRMRepository creates a new CRMRepository
func NewCRMRepository(db *sql.DB) *CRMRepository {
	return &CRMRepository{baseRepository{db: db}}
}

// GetLead loads a lead with its assignees. Returns nil when missing.
func (r *CRMRepository) GetLead(ctx context.Context, name string) (*models.Lead, []string, error) {
	q := query.From(constants.TableLead).
		Select(constants.FieldName, constants.FieldTitle, "lead_name", "company_name", constants.FieldStatus,
			"source", "territory", "email_id", "mobile_no", constants.FieldOwner, constants.FieldCreation, "_assign").
		WhereEq(constants.FieldName, name).
		Limit(1).
		Build()

	l := &models.Lead{}
	var assign string
	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&l.Name, str{&l.Title},
		str{&l.LeadName}, str{&l.CompanyName}, str{&l.Status}, str{&l.Source}, str{&l.Territory},
		str{&l.EmailID}, str{&l.MobileNo}, str{&l.Owner}, stamp{&l.Creation}, str{&assign})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	assignees, err := parseAssign(assign)
	if err != nil {
		return nil, nil, err
	}
	return l, assignees, nil
}

// GetOpportunity loads an opportunity with its assignees. Returns nil when missing.
func (r *CRMRepository) GetOpportunity(ctx context.Context, name string) (*models.Opportunity, []string, error) {
	q := query.From(constants.TableOpportunity).
		Select(constants.FieldName, constants.FieldTitle, "opportunity_from", "party_name", "customer", "currency",
			"opportunity_amount", constants.FieldStatus, "sales_stage", "contact_person", "contact_email",
			"contact_mobile", "opportunity_owner", "order_lost_reason", constants.FieldOwner,
			constants.FieldCreation, constants.FieldModified, "_assign").
		WhereEq(constants.FieldName, name).
		Limit(1).
		Build()

	o := &models.Opportunity{}
	var assign string
	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&o.Name, str{&o.Title},
		str{&o.OpportunityFrom}, str{&o.PartyName}, str{&o.Customer}, str{&o.Currency},
		num{&o.OpportunityAmount}, str{&o.Status}, str{&o.SalesStage}, str{&o.ContactPerson},
		str{&o.ContactEmail}, str{&o.ContactMobile}, str{&o.OpportunityOwner}, str{&o.OrderLostReason},
		str{&o.Owner}, stamp{&o.Creation}, stamp{&o.Modified}, str{&assign})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	assignees, err := parseAssign(assign)
	if err != nil {
		return nil, nil, err
	}
	return o, assignees, nil
}

// parseAssign decodes the JSON user list kept in an `_assign` column
func parseAssign(raw string) ([]string, error) {
	assignees := make([]string, 0)
	if raw == "" {
		return assignees, nil
	}
	if err := json.Unmarshal([]byte(raw), &assignees); err != nil {
		return nil, err
	}
	return assignees, nil
}

// GetCustomer loads a customer. Returns nil when missing.
func (r *CRMRepository) GetCustomer(ctx context.Context, name string) (*models.Customer, error) {
	q := query.From(constants.TableCustomer).
		Select(constants.FieldName, "customer_name", "customer_group", "customer_type", "territory", "disabled").
		WhereEq(constants.FieldName, name).
		Limit(1).
		Build()

	c := &models.Customer{}
	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&c.Name, str{&c.CustomerName},
		str{&c.CustomerGroup}, str{&c.CustomerType}, str{&c.Territory}, flag{&c.Disabled})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LinkedOpportunities returns the opportunities created from a record
func (r *CRMRepository) LinkedOpportunities(ctx context.Context, doctype, name string) ([]models.LinkedOpportunity, error) {
	q := query.From(constants.TableOpportunity).
		Select(constants.FieldName, constants.FieldTitle, constants.FieldStatus, "opportunity_owner",
			constants.FieldModified, constants.FieldCreation).
		WhereEq("opportunity_from", doctype).
		WhereEq("party_name", name).
		OrderBy(constants.FieldModified, query.DESC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.LinkedOpportunity, 0)
	for rows.Next() {
		var o models.LinkedOpportunity
		if err := rows.Scan(&o.Name, str{&o.Title}, str{&o.Status}, str{&o.OpportunityOwner},
			stamp{&o.Modified}, stamp{&o.Creation}); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// HasActiveQuotation reports whether a submitted, still open quotation exists
func (r *CRMRepository) HasActiveQuotation(ctx context.Context, opportunity string) (bool, error) {
	q := query.From(constants.TableQuotation).
		Select(constants.FieldName).
		WhereEq("opportunity", opportunity).
		WhereEq("docstatus", 1).
		Where("`quotation`.`status` NOT IN (?, ?)", inactiveQuotationStatuses[0], inactiveQuotationStatuses[1]).
		Limit(1).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

// DeclareLost marks an opportunity Lost and replaces its lost reasons and competitors
func (r *CRMRepository) DeclareLost(ctx context.Context, name string, reasons, competitors []string, detail string) error {
	exec := r.GetExecutor(ctx)

	q := query.Update(constants.TableOpportunity).
		Set(map[string]interface{}{
			constants.FieldStatus:   constants.OpportunityStatusLost,
			"order_lost_reason":     detail,
			constants.FieldModified: time.Now(),
		}).
		WhereEq(constants.FieldName, name).
		Build()
	if _, err := exec.ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return err
	}

	children := []struct {
		table  string
		column string
		values []string
	}{
		{constants.TableLostReasonDetail, "lost_reason", reasons},
		{constants.TableCompetitorDetail, "competitor", competitors},
	}
	for _, child := range children {
		q = query.Delete(child.table).WhereEq(constants.FieldParent, name).Build()
		if _, err := exec.ExecContext(ctx, q.SQL, q.Params...); err != nil {
			return err
		}
		for i, v := range child.values {
			q = query.Insert(child.table, map[string]interface{}{
				constants.FieldName:   utils.GenerateName(),
				constants.FieldParent: name,
				child.column:          v,
				"idx":                 i + 1,
			}).Build()
			if _, err := exec.ExecContext(ctx, q.SQL, q.Params...); err != nil {
				return err
			}
		}
	}
	return nil
}

// ChecklistItems returns the checklist configured for a status or sales stage
func (r *CRMRepository) ChecklistItems(ctx context.Context, parent, parentType string) ([]string, error) {
	q := query.From(constants.TableStatusChecklist).
		Select("checklist_item").
		WhereEq(constants.FieldParent, parent).
		WhereEq("parenttype", parentType).
		OrderBy("idx", query.ASC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

// FormScripts returns the enabled form scripts of a doctype
func (r *CRMRepository) FormScripts(ctx context.Context, doctype string) ([]string, error) {
	q := query.From(constants.TableFormScript).
		Select("script").
		WhereEq("dt", doctype).
		WhereEq("view", "Form").
		WhereEq("enabled", 1).
		OrderBy(constants.FieldCreation, query.ASC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

// Setting reads a value of crm_settings; empty when unset
func (r *CRMRepository) Setting(ctx context.Context, key string) (string, error) {
	q := query.From(constants.TableSettings).Select("value").WhereEq("key", key).Limit(1).Build()

	var value string
	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(str{&value})
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetContactPerson stores the primary contact of an opportunity
func (r *CRMRepository) SetContactPerson(ctx context.Context, opportunity, contact string) error {
	q := query.Update(constants.TableOpportunity).
		Set(map[string]interface{}{"contact_person": contact, constants.FieldModified: time.Now()}).
		WhereEq(constants.FieldName, opportunity).
		Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}
