package models

import "time"

// Lead is a prospective customer
type Lead struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	LeadName    string    `json:"lead_name"`
	CompanyName string    `json:"company_name"`
	Status      string    `json:"status"`
	Source      string    `json:"source"`
	Territory   string    `json:"territory"`
	EmailID     string    `json:"email_id"`
	MobileNo    string    `json:"mobile_no"`
	Owner       string    `json:"owner"`
	Creation    time.Time `json:"creation"`
}

// Opportunity is a deal, optionally converted from a Lead
type Opportunity struct {
	Name              string    `json:"name"`
	Title             string    `json:"title"`
	OpportunityFrom   string    `json:"opportunity_from"`
	PartyName         string    `json:"party_name"`
	Customer          string    `json:"customer"`
	Currency          string    `json:"currency"`
	OpportunityAmount float64   `json:"opportunity_amount"`
	Status            string    `json:"status"`
	SalesStage        string    `json:"sales_stage"`
	ContactPerson     string    `json:"contact_person"`
	ContactEmail      string    `json:"contact_email"`
	ContactMobile     string    `json:"contact_mobile"`
	OpportunityOwner  string    `json:"opportunity_owner"`
	OrderLostReason   string    `json:"order_lost_reason"`
	Owner             string    `json:"owner"`
	Creation          time.Time `json:"creation"`
	Modified          time.Time `json:"modified"`
}

// OpportunityView is an Opportunity enriched for the detail page
type OpportunityView struct {
	Opportunity
	Doctype         string              `json:"doctype"`
	FieldsMeta      map[string]DocField `json:"fields_meta"`
	FormScript      []string            `json:"_form_script"`
	Assign          []string            `json:"_assign"`
	HideCommentsTab bool                `json:"hide_comments_tab"`
}

// LinkedOpportunity is the summary of an opportunity converted from a lead
type LinkedOpportunity struct {
	Name             string    `json:"name"`
	Title            string    `json:"title"`
	Status           string    `json:"status"`
	OpportunityOwner string    `json:"opportunity_owner"`
	Modified         time.Time `json:"modified"`
	Creation         time.Time `json:"creation"`
}

// Customer is the account a contact can belong to
type Customer struct {
	Name          string `json:"name"`
	CustomerName  string `json:"customer_name"`
	CustomerGroup string `json:"customer_group"`
	CustomerType  string `json:"customer_type"`
	Territory     string `json:"territory"`
	Disabled      bool   `json:"disabled"`
}

// Contact is a person with e-mail addresses, phones and record links
type Contact struct {
	Name             string         `json:"name"`
	Doctype          string         `json:"doctype"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	FullName         string         `json:"full_name"`
	Image            string         `json:"image"`
	EmailID          string         `json:"email_id"`
	MobileNo         string         `json:"mobile_no"`
	Phone            string         `json:"phone"`
	CompanyName      string         `json:"company_name"`
	Status           string         `json:"status"`
	IsPrimaryContact bool           `json:"is_primary_contact"`
	Owner            string         `json:"owner"`
	Creation         time.Time      `json:"creation"`
	Modified         time.Time      `json:"modified"`
	EmailIDs         []ContactEmail `json:"email_ids"`
	PhoneNos         []ContactPhone `json:"phone_nos"`
	Links            []DynamicLink  `json:"links,omitempty"`
}

// ContactEmail is one e-mail address of a contact
type ContactEmail struct {
	Name      string `json:"name"`
	EmailID   string `json:"email_id"`
	IsPrimary bool   `json:"is_primary"`
}

// ContactPhone is one phone number of a contact
type ContactPhone struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	IsPrimaryPhone    bool   `json:"is_primary_phone"`
	IsPrimaryMobileNo bool   `json:"is_primary_mobile_no"`
}

// EmailOwner is a contact holding a given e-mail address
type EmailOwner struct {
	Contact   string
	IsPrimary bool
}

// DynamicLink links a contact to any record
type DynamicLink struct {
	Name        string `json:"name,omitempty"`
	LinkDoctype string `json:"link_doctype"`
	LinkName    string `json:"link_name"`
}

// LinkedContact is the compact contact card shown on a lead or opportunity
type LinkedContact struct {
	Name             string `json:"name"`
	Image            string `json:"image"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	MobileNo         string `json:"mobile_no"`
	IsPrimaryContact bool   `json:"is_primary_contact"`
}

// CRMNotification is an in-app notification for a user
type CRMNotification struct {
	Name                    string    `json:"name"`
	FromUser                string    `json:"from_user"`
	ToUser                  string    `json:"to_user"`
	Type                    string    `json:"type"`
	Message                 string    `json:"message"`
	NotificationText        string    `json:"notification_text"`
	NotificationTypeDoctype string    `json:"notification_type_doctype"`
	NotificationTypeDoc     string    `json:"notification_type_doc"`
	ReferenceDoctype        string    `json:"reference_doctype"`
	ReferenceName           string    `json:"reference_name"`
	Read                    bool      `json:"read"`
	Creation                time.Time `json:"creation"`
}

// NotificationLog is an e-mail notification queued for delivery
type NotificationLog struct {
	Name         string
	Type         string
	DocumentType string
	DocumentName string
	Subject      string
	FromUser     string
	ForUser      string
	EmailContent string
}

// UserSession is the authenticated caller
type UserSession struct {
	Name            string
	FullName        string
	Email           string
	Roles           []string
	IsSystemManager bool
}
