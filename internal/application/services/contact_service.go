package services

import (
	"context"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/errors"
)

// ContactService manages contacts, their e-mails and phones, and their
// links to leads, opportunities and customers
type ContactService struct {
	contacts ports.ContactStore
	crm      ports.CRMStore
	perms    *PermissionService
	tx       ports.Transactor
}

// NewContactService creates a new ContactService
func NewContactService(contacts ports.ContactStore, crm ports.CRMStore, perms *PermissionService, tx ports.Transactor) *ContactService {
	return &ContactService{
		contacts: contacts,
		crm:      crm,
		perms:    perms,
		tx:       tx,
	}
}

// GetContact returns a contact with its e-mails and phones
func (s *ContactService) GetContact(ctx context.Context, name string) (*models.Contact, error) {
	c, err := s.contacts.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NotFoundf("Contact not found")
	}

	if c.EmailIDs, err = s.contacts.Emails(ctx, name); err != nil {
		return nil, err
	}
	if c.PhoneNos, err = s.contacts.Phones(ctx, name); err != nil {
		return nil, err
	}
	return c, nil
}

// GetContactByEmail returns the first readable contact owning email,
// preferring contacts where it is the primary address
func (s *ContactService) GetContactByEmail(ctx context.Context, email string, user *models.UserSession) (*models.Contact, error) {
	if email == "" {
		return nil, errors.Invalid("Email is required")
	}

	owners, err := s.contacts.EmailOwners(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return nil, errors.NotFoundf("Contact not found")
	}

	if !s.perms.HasPermission(ctx, constants.DoctypeContact, constants.PermRead, user) {
		return nil, errors.Forbidden("Not permitted to access this contact")
	}
	return s.GetContact(ctx, owners[0].Contact)
}

// GetLinkedDocs returns the names of the records of doctype linked to contact
func (s *ContactService) GetLinkedDocs(ctx context.Context, contact, doctype string) ([]string, error) {
	c, err := s.contacts.Get(ctx, contact)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NotFoundf("Contact not found")
	}

	links, err := s.contacts.Links(ctx, contact)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(links))
	for _, l := range links {
		if l.LinkDoctype == doctype {
			names = append(names, l.LinkName)
		}
	}
	return names, nil
}

// GetLinkedOpportunities returns the opportunities linked to contact
func (s *ContactService) GetLinkedOpportunities(ctx context.Context, contact string) ([]models.Opportunity, error) {
	names, err := s.GetLinkedDocs(ctx, contact, constants.DoctypeOpportunity)
	if err != nil {
		return nil, err
	}

	out := make([]models.Opportunity, 0, len(names))
	for _, name := range names {
		o, _, err := s.crm.GetOpportunity(ctx, name)
		if err != nil {
			return nil, err
		}
		if o != nil {
			out = append(out, *o)
		}
	}
	return out, nil
}

// GetLinkedCustomers returns the readable customers linked to contact
func (s *ContactService) GetLinkedCustomers(ctx context.Context, contact string, user *models.UserSession) ([]models.Customer, error) {
	names, err := s.GetLinkedDocs(ctx, contact, constants.DoctypeCustomer)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []models.Customer{}, nil
	}

	out := make([]models.Customer, 0, len(names))
	if s.perms.HasPermission(ctx, constants.DoctypeCustomer, constants.PermRead, user) {
		for _, name := range names {
			c, err := s.crm.GetCustomer(ctx, name)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out = append(out, *c)
			}
		}
	}
	if len(out) == 0 {
		return nil, errors.Forbidden("Not permitted to access linked customers")
	}
	return out, nil
}

// GetLinkedLeads returns the readable leads linked to contact
func (s *ContactService) GetLinkedLeads(ctx context.Context, contact string, user *models.UserSession) ([]models.Lead, error) {
	names, err := s.GetLinkedDocs(ctx, contact, constants.DoctypeLead)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []models.Lead{}, nil
	}

	out := make([]models.Lead, 0, len(names))
	if s.perms.HasPermission(ctx, constants.DoctypeLead, constants.PermRead, user) {
		for _, name := range names {
			l, _, err := s.crm.GetLead(ctx, name)
			if err != nil {
				return nil, err
			}
			if l != nil {
				out = append(out, *l)
			}
		}
	}
	if len(out) == 0 {
		return nil, errors.Forbidden("Not permitted to access linked leads")
	}
	return out, nil
}

// CreateNew adds an e-mail (field "email") or phone ("mobile_no", "phone") to a contact
func (s *ContactService) CreateNew(ctx context.Context, contact, field, value string, user *models.UserSession) error {
	if err := s.perms.Require(ctx, constants.DoctypeContact, constants.PermWrite, user, msgNotPermitted); err != nil {
		return err
	}
	if err := s.mustExist(ctx, contact); err != nil {
		return err
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		switch field {
		case "email":
			if err := s.contacts.AddEmail(ctx, contact, &models.ContactEmail{EmailID: value}); err != nil {
				return err
			}
		case "mobile_no", "phone":
			if err := s.contacts.AddPhone(ctx, contact, &models.ContactPhone{Phone: value}); err != nil {
				return err
			}
		default:
			return errors.Invalid("Invalid field")
		}
		return s.save(ctx, contact)
	})
}

// SetAsPrimary makes value the primary e-mail ("email_id"), primary mobile
// ("mobile_no") or primary phone ("phone") of a contact
func (s *ContactService) SetAsPrimary(ctx context.Context, contact, field, value string, user *models.UserSession) error {
	if err := s.perms.Require(ctx, constants.DoctypeContact, constants.PermWrite, user, msgNotPermitted); err != nil {
		return err
	}
	if err := s.mustExist(ctx, contact); err != nil {
		return err
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		switch field {
		case "email_id":
			emails, err := s.contacts.Emails(ctx, contact)
			if err != nil {
				return err
			}
			for i := range emails {
				emails[i].IsPrimary = emails[i].EmailID == value
			}
			if err := s.contacts.SetEmailFlags(ctx, emails); err != nil {
				return err
			}
		case "mobile_no", "phone":
			phones, err := s.contacts.Phones(ctx, contact)
			if err != nil {
				return err
			}
			for i := range phones {
				match := phones[i].Phone == value
				if field == "mobile_no" {
					phones[i].IsPrimaryMobileNo = match
				} else {
					phones[i].IsPrimaryPhone = match
				}
			}
			if err := s.contacts.SetPhoneFlags(ctx, phones); err != nil {
				return err
			}
		default:
			return errors.Invalid("Invalid field")
		}
		return s.save(ctx, contact)
	})
}

// save applies the contact save hook: a lone e-mail becomes primary, a lone
// phone becomes the primary mobile, then the primary values are copied onto
// the contact row
func (s *ContactService) save(ctx context.Context, contact string) error {
	emails, err := s.contacts.Emails(ctx, contact)
	if err != nil {
		return err
	}
	if len(emails) == 1 && !emails[0].IsPrimary {
		emails[0].IsPrimary = true
		if err := s.contacts.SetEmailFlags(ctx, emails); err != nil {
			return err
		}
	}

	phones, err := s.contacts.Phones(ctx, contact)
	if err != nil {
		return err
	}
	if len(phones) == 1 && !phones[0].IsPrimaryMobileNo {
		phones[0].IsPrimaryMobileNo = true
		if err := s.contacts.SetPhoneFlags(ctx, phones); err != nil {
			return err
		}
	}

	var email, mobile, phone string
	for _, e := range emails {
		if e.IsPrimary {
			email = e.EmailID
			break
		}
	}
	for _, p := range phones {
		if p.IsPrimaryMobileNo && mobile == "" {
			mobile = p.Phone
		}
		if p.IsPrimaryPhone && phone == "" {
			phone = p.Phone
		}
	}
	return s.contacts.SetPrimaryFields(ctx, contact, email, mobile, phone)
}

func (s *ContactService) mustExist(ctx context.Context, contact string) error {
	c, err := s.contacts.Get(ctx, contact)
	if err != nil {
		return err
	}
	if c == nil {
		return errors.NotFoundf("Contact not found")
	}
	return nil
}

// SearchEmails returns [full_name, email_id, name] rows of contacts matching txt
func (s *ContactService) SearchEmails(ctx context.Context, txt string, user *models.UserSession) ([][]string, error) {
	if err := s.perms.Require(ctx, constants.DoctypeContact, constants.PermRead, user, msgNotPermitted); err != nil {
		return nil, err
	}
	return s.contacts.SearchEmails(ctx, txt)
}

// GetLinkedContact returns the names of the contacts linked to a record
func (s *ContactService) GetLinkedContact(ctx context.Context, doctype, name string) ([]string, error) {
	return s.contacts.LinkedContacts(ctx, doctype, name)
}

// LinkContactToDoc links contact to a record the user may write
func (s *ContactService) LinkContactToDoc(ctx context.Context, contact, doctype, docname string, user *models.UserSession) (string, error) {
	if err := s.perms.Require(ctx, doctype, constants.PermWrite, user, "Not allowed to link contact to doc"); err != nil {
		return "", err
	}
	if err := s.mustExist(ctx, contact); err != nil {
		return "", err
	}
	if err := s.contacts.AddLink(ctx, contact, doctype, docname); err != nil {
		return "", err
	}
	return contact, nil
}

// RemoveLinkFromContact drops the links of contact to docname
func (s *ContactService) RemoveLinkFromContact(ctx context.Context, contact, doctype, docname string, user *models.UserSession) (string, error) {
	if err := s.perms.Require(ctx, doctype, constants.PermWrite, user, "Not allowed to remove contact"); err != nil {
		return "", err
	}
	if err := s.mustExist(ctx, contact); err != nil {
		return "", err
	}
	if err := s.contacts.RemoveLinks(ctx, contact, docname); err != nil {
		return "", err
	}
	return contact, nil
}

// GetLeadOpportunityContacts returns the contact cards of a lead or opportunity
func (s *ContactService) GetLeadOpportunityContacts(ctx context.Context, doctype, docname string) ([]models.LinkedContact, error) {
	names, err := s.contacts.LinkedContacts(ctx, doctype, docname)
	if err != nil {
		return nil, err
	}

	out := make([]models.LinkedContact, 0, len(names))
	for _, name := range names {
		c, err := s.GetContact(ctx, name)
		if errors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.LinkedContact{
			Name:             c.Name,
			Image:            c.Image,
			FullName:         c.FullName,
			Email:            primaryEmail(c.EmailIDs),
			MobileNo:         primaryMobile(c.PhoneNos),
			IsPrimaryContact: c.IsPrimaryContact,
		})
	}
	return out, nil
}

// SetOpportunityPrimaryContact sets the contact person of an opportunity.
// Without contact, the single linked contact is used. Returns false when the
// opportunity has no linked contacts.
func (s *ContactService) SetOpportunityPrimaryContact(ctx context.Context, docname, contact string, user *models.UserSession) (bool, error) {
	if err := s.perms.Require(ctx, constants.DoctypeOpportunity, constants.PermWrite, user, msgNotPermitted); err != nil {
		return false, err
	}

	linked, err := s.contacts.LinkedContacts(ctx, constants.DoctypeOpportunity, docname)
	if err != nil {
		return false, err
	}
	if len(linked) == 0 {
		return false, nil
	}

	switch {
	case contact != "":
	case len(linked) == 1:
		contact = linked[0]
	default:
		return true, nil
	}
	if err := s.crm.SetContactPerson(ctx, docname, contact); err != nil {
		return false, err
	}
	return true, nil
}

func primaryEmail(emails []models.ContactEmail) string {
	for _, e := range emails {
		if e.IsPrimary {
			return e.EmailID
		}
	}
	if len(emails) > 0 {
		return emails[0].EmailID
	}
	return ""
}

func primaryMobile(phones []models.ContactPhone) string {
	for _, p := range phones {
		if p.IsPrimaryMobileNo {
			return p.Phone
		}
	}
	if len(phones) > 0 {
		return phones[0].Phone
	}
	return ""
}
