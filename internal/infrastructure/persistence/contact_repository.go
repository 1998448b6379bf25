package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/query"
	"github.com/rtCamp/next-crm/pkg/utils"
)

// SearchLimit caps the rows returned by SearchEmails
const SearchLimit = 20

// ContactRepository stores contacts with their e-mails, phones and links
type ContactRepository struct {
	baseRepository
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{baseRepository{db: db}}
}

// Get loads a contact without its child rows. Returns nil when missing.
func (r *ContactRepository) Get(ctx context.Context, name string) (*models.Contact, error) {
	q := query.From(constants.TableContact).
		Select(constants.FieldName, "first_name", "last_name", "full_name", "image", "email_id", "mobile_no",
			"phone", "company_name", constants.FieldStatus, "is_primary_contact", constants.FieldOwner,
			constants.FieldCreation, constants.FieldModified).
		WhereEq(constants.FieldName, name).
		Limit(1).
		Build()

	c := &models.Contact{Doctype: constants.DoctypeContact}
	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&c.Name, str{&c.FirstName},
		str{&c.LastName}, str{&c.FullName}, str{&c.Image}, str{&c.EmailID}, str{&c.MobileNo}, str{&c.Phone},
		str{&c.CompanyName}, str{&c.Status}, flag{&c.IsPrimaryContact}, str{&c.Owner}, stamp{&c.Creation},
		stamp{&c.Modified})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Emails returns the e-mail rows of a contact
func (r *ContactRepository) Emails(ctx context.Context, contact string) ([]models.ContactEmail, error) {
	q := query.From(constants.TableContactEmail).
		Select(constants.FieldName, "email_id", "is_primary").
		WhereEq(constants.FieldParent, contact).
		OrderBy("idx", query.ASC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ContactEmail, 0)
	for rows.Next() {
		var e models.ContactEmail
		if err := rows.Scan(&e.Name, str{&e.EmailID}, flag{&e.IsPrimary}); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Phones returns the phone rows of a contact
func (r *ContactRepository) Phones(ctx context.Context, contact string) ([]models.ContactPhone, error) {
	q := query.From(constants.TableContactPhone).
		Select(constants.FieldName, "phone", "is_primary_phone", "is_primary_mobile_no").
		WhereEq(constants.FieldParent, contact).
		OrderBy("idx", query.ASC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ContactPhone, 0)
	for rows.Next() {
		var p models.ContactPhone
		if err := rows.Scan(&p.Name, str{&p.Phone}, flag{&p.IsPrimaryPhone}, flag{&p.IsPrimaryMobileNo}); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Links returns the dynamic links of a contact
func (r *ContactRepository) Links(ctx context.Context, contact string) ([]models.DynamicLink, error) {
	q := query.From(constants.TableDynamicLink).
		Select(constants.FieldName, "link_doctype", "link_name").
		WhereEq(constants.FieldParent, contact).
		OrderBy("idx", query.ASC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.DynamicLink, 0)
	for rows.Next() {
		var l models.DynamicLink
		if err := rows.Scan(&l.Name, str{&l.LinkDoctype}, str{&l.LinkName}); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// EmailOwners returns the contacts holding email, primary holders first
func (r *ContactRepository) EmailOwners(ctx context.Context, email string) ([]models.EmailOwner, error) {
	q := query.From(constants.TableContactEmail).
		Select(constants.FieldParent, "is_primary").
		WhereEq("email_id", email).
		OrderBy("is_primary", query.DESC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.EmailOwner, 0)
	for rows.Next() {
		var o models.EmailOwner
		if err := rows.Scan(&o.Contact, flag{&o.IsPrimary}); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *ContactRepository) nextIdx(ctx context.Context, table, contact string) (int, error) {
	q := query.From(table).Select("COALESCE(MAX(`idx`), 0) + 1").WhereEq(constants.FieldParent, contact).Build()
	var idx int
	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&idx)
	return idx, err
}

// AddEmail appends an e-mail row to a contact
func (r *ContactRepository) AddEmail(ctx context.Context, contact string, e *models.ContactEmail) error {
	idx, err := r.nextIdx(ctx, constants.TableContactEmail, contact)
	if err != nil {
		return err
	}
	if e.Name == "" {
		e.Name = utils.GenerateName()
	}
	q := query.Insert(constants.TableContactEmail, map[string]interface{}{
		constants.FieldName:   e.Name,
		constants.FieldParent: contact,
		"email_id":            e.EmailID,
		"is_primary":          utils.BoolToInt(e.IsPrimary),
		"idx":                 idx,
	}).Build()
	_, err = r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// AddPhone appends a phone row to a contact
func (r *ContactRepository) AddPhone(ctx context.Context, contact string, p *models.ContactPhone) error {
	idx, err := r.nextIdx(ctx, constants.TableContactPhone, contact)
	if err != nil {
		return err
	}
	if p.Name == "" {
		p.Name = utils.GenerateName()
	}
	q := query.Insert(constants.TableContactPhone, map[string]interface{}{
		constants.FieldName:    p.Name,
		constants.FieldParent:  contact,
		"phone":                p.Phone,
		"is_primary_phone":     utils.BoolToInt(p.IsPrimaryPhone),
		"is_primary_mobile_no": utils.BoolToInt(p.IsPrimaryMobileNo),
		"idx":                  idx,
	}).Build()
	_, err = r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// SetEmailFlags stores is_primary for every e-mail row of a contact
func (r *ContactRepository) SetEmailFlags(ctx context.Context, emails []models.ContactEmail) error {
	for _, e := range emails {
		q := query.Update(constants.TableContactEmail).
			Set(map[string]interface{}{"is_primary": utils.BoolToInt(e.IsPrimary)}).
			WhereEq(constants.FieldName, e.Name).
			Build()
		if _, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
			return err
		}
	}
	return nil
}

// SetPhoneFlags stores both primary flags for every phone row of a contact
func (r *ContactRepository) SetPhoneFlags(ctx context.Context, phones []models.ContactPhone) error {
	for _, p := range phones {
		q := query.Update(constants.TableContactPhone).
			Set(map[string]interface{}{
				"is_primary_phone":     utils.BoolToInt(p.IsPrimaryPhone),
				"is_primary_mobile_no": utils.BoolToInt(p.IsPrimaryMobileNo),
			}).
			WhereEq(constants.FieldName, p.Name).
			Build()
		if _, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
			return err
		}
	}
	return nil
}

// SetPrimaryFields copies the primary e-mail and phone numbers onto the contact row
func (r *ContactRepository) SetPrimaryFields(ctx context.Context, contact, email, mobile, phone string) error {
	q := query.Update(constants.TableContact).
		Set(map[string]interface{}{"email_id": email, "mobile_no": mobile, "phone": phone}).
		WhereEq(constants.FieldName, contact).
		Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// LinkedContacts returns the distinct contacts linked to a record
func (r *ContactRepository) LinkedContacts(ctx context.Context, doctype, name string) ([]string, error) {
	q := query.From(constants.TableContact).
		Select("DISTINCT `contact`.`name`").
		Join("INNER", constants.TableDynamicLink, "dl", "`dl`.`parent` = `contact`.`name`").
		Where("`dl`.`link_doctype` = ?", doctype).
		Where("`dl`.`link_name` = ?", name).
		OrderBy("`contact`.`name`", query.ASC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

// AddLink links a contact to a record
func (r *ContactRepository) AddLink(ctx context.Context, contact, doctype, name string) error {
	idx, err := r.nextIdx(ctx, constants.TableDynamicLink, contact)
	if err != nil {
		return err
	}
	q := query.Insert(constants.TableDynamicLink, map[string]interface{}{
		constants.FieldName:   utils.GenerateName(),
		constants.FieldParent: contact,
		"link_doctype":        doctype,
		"link_name":           name,
		"idx":                 idx,
	}).Build()
	_, err = r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// RemoveLinks drops every link of a contact pointing at linkName
func (r *ContactRepository) RemoveLinks(ctx context.Context, contact, linkName string) error {
	q := query.Delete(constants.TableDynamicLink).
		WhereEq(constants.FieldParent, contact).
		WhereEq("link_name", linkName).
		Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// SearchEmails matches enabled contacts having an e-mail on full name,
// e-mail or name. Rows are [full_name, email_id, name].
func (r *ContactRepository) SearchEmails(ctx context.Context, txt string) ([][]string, error) {
	b := query.From(constants.TableContact).
		Select("full_name", "email_id", constants.FieldName).
		Where("`contact`.`email_id` IS NOT NULL AND `contact`.`email_id` != ''").
		WhereEq("enabled", 1)

	if txt != "" {
		like := fmt.Sprintf("%%%s%%", txt)
		b = b.Where("(`contact`.`full_name` LIKE ? OR `contact`.`email_id` LIKE ? OR `contact`.`name` LIKE ?)",
			like, like, like)
	}

	q := b.OrderBy("email_id", query.ASC).
		OrderBy("full_name", query.ASC).
		OrderBy(constants.FieldName, query.ASC).
		Limit(SearchLimit).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([][]string, 0)
	for rows.Next() {
		var fullName, email, name string
		if err := rows.Scan(str{&fullName}, str{&email}, &name); err != nil {
			return nil, err
		}
		out = append(out, []string{fullName, email, name})
	}
	return out, rows.Err()
}
