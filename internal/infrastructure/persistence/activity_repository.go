package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/query"
)

// ActivityRepository reads the call logs and calendar events of a record
type ActivityRepository struct {
	baseRepository
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{baseRepository{db: db}}
}

// Calls returns the call logs referencing a record
func (r *ActivityRepository) Calls(ctx context.Context, docname string) ([]models.CallLog, error) {
	q := query.From(constants.TableCallLog).
		Select(constants.FieldName, "caller", "receiver", "from", "to", "duration", "start_time", "end_time",
			constants.FieldStatus, "type", "recording_url", constants.FieldCreation, "note").
		WhereEq("reference_docname", docname).
		OrderBy(constants.FieldCreation, query.DESC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CallLog, 0)
	for rows.Next() {
		var c models.CallLog
		if err := rows.Scan(&c.Name, str{&c.Caller}, str{&c.Receiver}, str{&c.From}, str{&c.To}, num{&c.Duration},
			optStamp{&c.StartTime}, optStamp{&c.EndTime}, str{&c.Status}, str{&c.Type}, str{&c.RecordingURL},
			stamp{&c.Creation}, str{&c.Note}); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Events returns the events with a participant referencing a record
func (r *ActivityRepository) Events(ctx context.Context, docname string) ([]models.Event, error) {
	q := query.From(constants.TableEvent).
		Select("DISTINCT `event`.`name`", "subject", "description", "_assign", "starts_on", "ends_on",
			"event_category", "sync_with_google_calendar", "google_calendar", constants.FieldStatus,
			"event_type", constants.FieldModified).
		Join("INNER", constants.TableEventParticipant, "ep", "`ep`.`parent` = `event`.`name`").
		Where("`ep`.`reference_docname` = ?", docname).
		OrderBy(constants.FieldModified, query.DESC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Event, 0)
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.Name, str{&e.Subject}, str{&e.Description}, str{&e.Assign}, optStamp{&e.StartsOn},
			optStamp{&e.EndsOn}, str{&e.EventCategory}, flag{&e.SyncWithGoogleCalendar}, str{&e.GoogleCalendar},
			str{&e.Status}, str{&e.EventType}, stamp{&e.Modified}); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		participants, err := r.Participants(ctx, out[i].Name)
		if err != nil {
			return nil, err
		}
		out[i].EventParticipants = participants
	}
	return out, nil
}

// Participants returns the participants of an event
func (r *ActivityRepository) Participants(ctx context.Context, event string) ([]models.EventParticipant, error) {
	q := query.From(constants.TableEventParticipant).
		Select("reference_doctype", "reference_docname", "email").
		WhereEq(constants.FieldParent, event).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.EventParticipant, 0)
	for rows.Next() {
		var p models.EventParticipant
		if err := rows.Scan(str{&p.ReferenceDoctype}, str{&p.ReferenceDocname}, str{&p.Email}); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LinkedEvent loads the event summary attached to a ToDo. Returns nil when missing.
func (r *ActivityRepository) LinkedEvent(ctx context.Context, name string) (*models.ToDoEvent, error) {
	q := query.From(constants.TableEvent).
		Select(constants.FieldName, "sync_with_google_calendar", "google_calendar").
		WhereEq(constants.FieldName, name).
		Limit(1).
		Build()

	e := &models.ToDoEvent{}
	err := r.GetExecutor(ctx).QueryRowContext(ctx, q.SQL, q.Params...).
		Scan(&e.Name, flag{&e.SyncWithGoogleCalendar}, str{&e.GoogleCalendar})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	participants, err := r.Participants(ctx, e.Name)
	if err != nil {
		return nil, err
	}
	e.EventParticipants = participants
	return e, nil
}
