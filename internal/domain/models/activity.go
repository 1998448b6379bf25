package models

import "time"

// Activity is one entry of a record timeline. Data holds one of
// FieldChangeData, CommunicationData, AttachmentLogData or a plain string.
type Activity struct {
	Name              string      `json:"name,omitempty"`
	ActivityType      string      `json:"activity_type"`
	CommunicationType string      `json:"communication_type,omitempty"`
	Creation          time.Time   `json:"creation"`
	Owner             string      `json:"owner,omitempty"`
	Data              interface{} `json:"data,omitempty"`
	Content           string      `json:"content,omitempty"`
	Attachments       []File      `json:"attachments,omitempty"`
	IsLead            bool        `json:"is_lead"`
	Options           string      `json:"options,omitempty"`
	OtherVersions     []Activity  `json:"other_versions,omitempty"`
}

// FieldChangeData describes a single tracked field change
type FieldChangeData struct {
	Field      string      `json:"field"`
	FieldLabel string      `json:"field_label"`
	OldValue   interface{} `json:"old_value,omitempty"`
	Value      interface{} `json:"value"`
}

// CommunicationData is the payload of an e-mail style activity
type CommunicationData struct {
	Subject         string `json:"subject"`
	Content         string `json:"content"`
	SenderFullName  string `json:"sender_full_name"`
	Sender          string `json:"sender"`
	Recipients      string `json:"recipients"`
	CC              string `json:"cc"`
	BCC             string `json:"bcc"`
	Attachments     []File `json:"attachments"`
	ReadByRecipient bool   `json:"read_by_recipient"`
	DeliveryStatus  string `json:"delivery_status"`
}

// AttachmentLogData is the payload of an attachment added/removed activity
type AttachmentLogData struct {
	Type      string `json:"type"`
	FileName  string `json:"file_name"`
	FileURL   string `json:"file_url"`
	IsPrivate bool   `json:"is_private"`
}

// Timeline is the response of the activities endpoint
type Timeline struct {
	Activities    []Activity          `json:"activities"`
	Calls         []CallLog           `json:"calls"`
	Notes         []*Note             `json:"notes"`
	Todos         []ToDo              `json:"todos"`
	Events        []Event             `json:"events"`
	Attachments   []File              `json:"attachments"`
	Opportunities []LinkedOpportunity `json:"opportunities"`
}

// Version is a stored snapshot diff of a record
type Version struct {
	Name     string
	Owner    string
	Creation time.Time
	Data     string // JSON: {"changed": [[field, old, new], ...]}
}

// Comment is a stored comment, info log or attachment log
type Comment struct {
	Name        string
	CommentType string
	Content     string
	Owner       string
	Creation    time.Time
}

// Communication is a stored e-mail or automated message
type Communication struct {
	Name                string
	CommunicationType   string
	CommunicationMedium string
	Subject             string
	Content             string
	SenderFullName      string
	Sender              string
	Recipients          string
	CC                  string
	BCC                 string
	ReadByRecipient     bool
	DeliveryStatus      string
	Creation            time.Time
}

// DocInfo bundles the history rows of a record
type DocInfo struct {
	Versions          []Version
	Comments          []Comment
	InfoLogs          []Comment
	AttachmentLogs    []Comment
	Communications    []Communication
	AutomatedMessages []Communication
}

// DocField is the metadata of one field of a doctype
type DocField struct {
	Fieldname string `json:"fieldname"`
	Label     string `json:"label"`
	Fieldtype string `json:"fieldtype"`
	Options   string `json:"options"`
}
