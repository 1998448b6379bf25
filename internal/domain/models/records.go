package models

import "time"

// Note is a CRM Note attached to a Lead or Opportunity, possibly a reply
type Note struct {
	Name             string           `json:"name"`
	CustomTitle      string           `json:"custom_title"`
	Note             string           `json:"note"`
	Owner            string           `json:"owner"`
	AddedBy          string           `json:"added_by,omitempty"`
	AddedOn          time.Time        `json:"added_on"`
	CustomParentNote string           `json:"custom_parent_note"`
	ParentType       string           `json:"parenttype,omitempty"`
	Parent           string           `json:"parent,omitempty"`
	Creation         time.Time        `json:"creation"`
	NoteReplies      []*Note          `json:"noteReplies"`
	Attachments      []NoteAttachment `json:"attachments"`
}

// NoteAttachment links a note to a File by the file's name
type NoteAttachment struct {
	Name     string `json:"name,omitempty"`
	Parent   string `json:"parent"`
	Filename string `json:"filename"`
}

// File is a stored file attached to a record
type File struct {
	Name              string    `json:"name"`
	FileName          string    `json:"file_name"`
	FileType          string    `json:"file_type"`
	FileURL           string    `json:"file_url"`
	FileSize          int64     `json:"file_size"`
	IsPrivate         bool      `json:"is_private"`
	Folder            string    `json:"-"`
	AttachedToDoctype string    `json:"-"`
	AttachedToName    string    `json:"-"`
	StorageKey        string    `json:"-"`
	Creation          time.Time `json:"creation"`
	Owner             string    `json:"owner"`
}

// CallLog is a CRM Call Log linked to a record
type CallLog struct {
	Name         string     `json:"name"`
	Caller       string     `json:"caller"`
	Receiver     string     `json:"receiver"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	Duration     float64    `json:"duration"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Status       string     `json:"status"`
	Type         string     `json:"type"`
	RecordingURL string     `json:"recording_url"`
	Creation     time.Time  `json:"creation"`
	Note         string     `json:"note"`
}

// ToDo is a follow-up task referencing a record
type ToDo struct {
	Name              string     `json:"name"`
	CustomTitle       string     `json:"custom_title"`
	Description       string     `json:"description"`
	AllocatedTo       string     `json:"allocated_to"`
	AssignedBy        string     `json:"assigned_by,omitempty"`
	Date              *time.Time `json:"date"`
	Priority          string     `json:"priority"`
	Status            string     `json:"status"`
	ReferenceType     string     `json:"reference_type,omitempty"`
	ReferenceName     string     `json:"reference_name,omitempty"`
	CustomFromTime    string     `json:"custom_from_time"`
	CustomToTime      string     `json:"custom_to_time"`
	CustomLinkedEvent string     `json:"custom_linked_event"`
	Modified          time.Time  `json:"modified"`
	Event             *ToDoEvent `json:"_event"`
}

// ToDoEvent summarizes the calendar event linked to a ToDo
type ToDoEvent struct {
	Name                   string             `json:"name"`
	SyncWithGoogleCalendar bool               `json:"sync_with_google_calendar"`
	GoogleCalendar         string             `json:"google_calendar"`
	EventParticipants      []EventParticipant `json:"event_participants"`
}

// Event is a calendar event with participants
type Event struct {
	Name                   string             `json:"name"`
	Subject                string             `json:"subject"`
	Description            string             `json:"description"`
	Assign                 string             `json:"_assign"`
	StartsOn               *time.Time         `json:"starts_on"`
	EndsOn                 *time.Time         `json:"ends_on"`
	EventCategory          string             `json:"event_category"`
	SyncWithGoogleCalendar bool               `json:"sync_with_google_calendar"`
	GoogleCalendar         string             `json:"google_calendar"`
	Status                 string             `json:"status"`
	EventType              string             `json:"event_type"`
	Modified               time.Time          `json:"modified"`
	EventParticipants      []EventParticipant `json:"event_participants"`
}

// EventParticipant references a record or address taking part in an event
type EventParticipant struct {
	ReferenceDoctype string `json:"reference_doctype"`
	ReferenceDocname string `json:"reference_docname"`
	Email            string `json:"email"`
}

// RecordHeader carries the fields every timeline needs from its record
type RecordHeader struct {
	Name            string
	Owner           string
	Creation        time.Time
	OpportunityFrom string
	PartyName       string
	Title           string
}
