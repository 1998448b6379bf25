package services

import (
	"context"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/internal/domain/timeline"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/errors"
)

var leadAvoidFields = map[string]bool{
	"converted":           true,
	"response_by":         true,
	"sla_creation":        true,
	"sla":                 true,
	"first_response_time": true,
	"first_responded_on":  true,
}

var opportunityAvoidFields = map[string]bool{
	"party_name":          true,
	"lead":                true,
	"response_by":         true,
	"sla_creation":        true,
	"sla":                 true,
	"first_response_time": true,
	"first_responded_on":  true,
}

// ActivityService assembles the activity timeline of leads and opportunities
type ActivityService struct {
	records  ports.RecordStore
	docinfo  ports.DocInfoStore
	files    ports.FileStore
	notes    ports.NoteStore
	activity ports.ActivityStore
	todos    ports.TodoStore
	crm      ports.CRMStore
	perms    *PermissionService
	threads  ports.EmailThreadSource
}

// NewActivityService creates a new ActivityService
func NewActivityService(records ports.RecordStore, docinfo ports.DocInfoStore, files ports.FileStore, notes ports.NoteStore,
	activity ports.ActivityStore, todos ports.TodoStore, crm ports.CRMStore, perms *PermissionService) *ActivityService {
	return &ActivityService{
		records:  records,
		docinfo:  docinfo,
		files:    files,
		notes:    notes,
		activity: activity,
		todos:    todos,
		crm:      crm,
		perms:    perms,
	}
}

// SetEmailThreadSource installs a mailbox integration whose threads are
// shown as e-mail activities. nil removes it.
func (s *ActivityService) SetEmailThreadSource(src ports.EmailThreadSource) {
	s.threads = src
}

// GetActivities returns the timeline of an Opportunity or, failing that, a Lead
func (s *ActivityService) GetActivities(ctx context.Context, name string, user *models.UserSession) (*models.Timeline, error) {
	isOpportunity, err := s.records.Exists(ctx, constants.TableOpportunity, name)
	if err != nil {
		return nil, err
	}
	if isOpportunity {
		if err := s.perms.Require(ctx, constants.DoctypeOpportunity, constants.PermRead, user, msgNotPermitted); err != nil {
			return nil, err
		}
		return s.opportunityTimeline(ctx, name)
	}

	isLead, err := s.records.Exists(ctx, constants.TableLead, name)
	if err != nil {
		return nil, err
	}
	if !isLead {
		return nil, errors.NotFoundf("Document not found")
	}
	if err := s.perms.Require(ctx, constants.DoctypeLead, constants.PermRead, user, msgNotPermitted); err != nil {
		return nil, err
	}

	t, err := s.leadTimeline(ctx, name, true, false)
	if err != nil {
		return nil, err
	}
	t.Activities = timeline.Merge(t.Activities)
	return t, nil
}

// leadTimeline collects the lead's activities unsorted and ungrouped so an
// opportunity can merge them with its own in a single pass
func (s *ActivityService) leadTimeline(ctx context.Context, name string, withEvents, excludeNoteAttachments bool) (*models.Timeline, error) {
	header, err := s.records.GetHeader(ctx, constants.DoctypeLead, name)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, errors.NotFoundf("Document not found")
	}

	activities := []models.Activity{{
		ActivityType: constants.ActivityCreation,
		Creation:     header.Creation,
		Owner:        header.Owner,
		Data:         "created this lead",
		IsLead:       true,
	}}

	history, err := s.history(ctx, constants.DoctypeLead, name, leadAvoidFields, true, withEvents)
	if err != nil {
		return nil, err
	}
	activities = append(activities, history...)

	t, fileNames, err := s.linked(ctx, constants.DoctypeLead, name)
	if err != nil {
		return nil, err
	}
	t.Activities = activities

	if t.Opportunities, err = s.crm.LinkedOpportunities(ctx, constants.DoctypeLead, name); err != nil {
		return nil, err
	}

	if excludeNoteAttachments {
		exclude := make(map[string]bool, len(fileNames))
		for _, f := range fileNames {
			exclude[f] = true
		}
		kept := make([]models.File, 0, len(t.Attachments))
		for _, a := range t.Attachments {
			if !exclude[a.Name] {
				kept = append(kept, a)
			}
		}
		t.Attachments = kept
	}

	return t, nil
}

func (s *ActivityService) opportunityTimeline(ctx context.Context, name string) (*models.Timeline, error) {
	header, err := s.records.GetHeader(ctx, constants.DoctypeOpportunity, name)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, errors.NotFoundf("Document not found")
	}

	seed := &models.Timeline{
		Activities:  []models.Activity{},
		Calls:       []models.CallLog{},
		Todos:       []models.ToDo{},
		Events:      []models.Event{},
		Attachments: []models.File{},
	}
	creationText := "created this opportunity"

	if header.OpportunityFrom == constants.OpportunityFromLead && header.PartyName != "" {
		lead, err := s.leadTimeline(ctx, header.PartyName, false, true)
		switch {
		case err == nil:
			// Lead notes were copied onto the opportunity on conversion.
			seed = lead
		case !errors.IsNotFound(err):
			return nil, err
		}
		creationText = "converted the lead to this opportunity"
	}

	activities := append(seed.Activities, models.Activity{
		ActivityType: constants.ActivityCreation,
		Creation:     header.Creation,
		Owner:        header.Owner,
		Data:         creationText,
	})

	history, err := s.history(ctx, constants.DoctypeOpportunity, name, opportunityAvoidFields, false, true)
	if err != nil {
		return nil, err
	}
	activities = append(activities, history...)

	own, _, err := s.linked(ctx, constants.DoctypeOpportunity, name)
	if err != nil {
		return nil, err
	}

	return &models.Timeline{
		Activities:    timeline.Merge(activities),
		Calls:         append(seed.Calls, own.Calls...),
		Notes:         own.Notes,
		Todos:         append(seed.Todos, own.Todos...),
		Events:        append(seed.Events, own.Events...),
		Attachments:   append(seed.Attachments, own.Attachments...),
		Opportunities: []models.LinkedOpportunity{},
	}, nil
}

// history turns versions, comments, communications and attachment logs of
// a record into activities. Opportunities also show their info logs.
func (s *ActivityService) history(ctx context.Context, doctype, name string, avoid map[string]bool, isLead, withEvents bool) ([]models.Activity, error) {
	info, err := s.docinfo.GetDocInfo(ctx, doctype, name)
	if err != nil {
		return nil, err
	}
	fields, err := s.docinfo.Fields(ctx, doctype)
	if err != nil {
		return nil, err
	}

	activities := make([]models.Activity, 0, len(info.Versions)+len(info.Comments))

	for _, v := range info.Versions {
		if a, ok := timeline.FieldChange(v, fields, avoid, isLead); ok {
			activities = append(activities, a)
		}
	}

	comments := info.Comments
	if !isLead {
		comments = append(append([]models.Comment{}, info.Comments...), info.InfoLogs...)
	}
	for _, c := range comments {
		attachments, err := s.files.ListAttached(ctx, constants.DoctypeComment, c.Name)
		if err != nil {
			return nil, err
		}
		activities = append(activities, models.Activity{
			Name:         c.Name,
			ActivityType: constants.ActivityComment,
			Creation:     c.Creation,
			Owner:        c.Owner,
			Content:      c.Content,
			Attachments:  attachments,
			IsLead:       isLead,
		})
	}

	communications := append(append([]models.Communication{}, info.Communications...), info.AutomatedMessages...)
	for _, c := range communications {
		if !withEvents && c.CommunicationMedium == constants.CommunicationMediumEvent {
			continue
		}
		attachments, err := s.files.ListAttached(ctx, constants.DoctypeCommunication, c.Name)
		if err != nil {
			return nil, err
		}
		activities = append(activities, models.Activity{
			ActivityType:      constants.ActivityCommunication,
			CommunicationType: c.CommunicationType,
			Creation:          c.Creation,
			Data: models.CommunicationData{
				Subject:         c.Subject,
				Content:         c.Content,
				SenderFullName:  c.SenderFullName,
				Sender:          c.Sender,
				Recipients:      c.Recipients,
				CC:              c.CC,
				BCC:             c.BCC,
				Attachments:     attachments,
				ReadByRecipient: c.ReadByRecipient,
				DeliveryStatus:  c.DeliveryStatus,
			},
			IsLead: isLead,
		})
	}

	if s.threads != nil {
		threads, err := s.threads.LinkedThreads(ctx, doctype, name)
		if err != nil {
			return nil, err
		}
		for _, t := range threads {
			t.ActivityType = constants.ActivityCommunication
			t.CommunicationType = constants.CommunicationTypeEmail
			t.IsLead = isLead
			activities = append(activities, t)
		}
	}

	for _, c := range info.AttachmentLogs {
		activities = append(activities, models.Activity{
			Name:         c.Name,
			ActivityType: constants.ActivityAttachmentLog,
			Creation:     c.Creation,
			Owner:        c.Owner,
			Data:         timeline.ParseAttachmentLog(c.Content, c.CommentType),
			IsLead:       isLead,
		})
	}

	return activities, nil
}

// linked loads the calls, notes, todos, events and files of a record. It
// also returns the filenames attached to the record's notes.
func (s *ActivityService) linked(ctx context.Context, doctype, name string) (*models.Timeline, []string, error) {
	calls, err := s.activity.Calls(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	notes, err := s.notes.ListForRecord(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	noteNames := make([]string, 0, len(notes))
	for _, n := range notes {
		noteNames = append(noteNames, n.Name)
	}
	var noteAttachments []models.NoteAttachment
	if len(noteNames) > 0 {
		if noteAttachments, err = s.notes.Attachments(ctx, noteNames); err != nil {
			return nil, nil, err
		}
	}
	roots, fileNames := timeline.BuildNoteTree(notes, noteAttachments)

	todos, err := s.todos.ListForRecord(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	for i := range todos {
		if todos[i].CustomLinkedEvent == "" {
			continue
		}
		if todos[i].Event, err = s.activity.LinkedEvent(ctx, todos[i].CustomLinkedEvent); err != nil {
			return nil, nil, err
		}
	}

	events, err := s.activity.Events(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	attachments, err := s.files.ListAttached(ctx, doctype, name)
	if err != nil {
		return nil, nil, err
	}

	return &models.Timeline{
		Calls:         calls,
		Notes:         roots,
		Todos:         todos,
		Events:        events,
		Attachments:   attachments,
		Opportunities: []models.LinkedOpportunity{},
	}, fileNames, nil
}
