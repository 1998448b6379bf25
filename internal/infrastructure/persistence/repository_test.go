package persistence

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestRecordRepository_Exists(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)

	q := "SELECT `lead`.`name` FROM `lead` WHERE `lead`.`name` = ? LIMIT 1"
	mock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs("L-1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("L-1"))
	mock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs("L-2").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	exists, err := repo.Exists(context.Background(), constants.TableLead, "L-1")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(context.Background(), constants.TableLead, "L-2")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestRecordRepository_GetValue(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)

	q := "SELECT `opportunity`.`title` FROM `opportunity` WHERE `opportunity`.`name` = ? LIMIT 1"
	mock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs("OPP-1").
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs("OPP-9").
		WillReturnRows(sqlmock.NewRows([]string{"title"}))

	value, ok, err := repo.GetValue(context.Background(), constants.TableOpportunity, "OPP-1", "title")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, value)

	_, ok, err = repo.GetValue(context.Background(), constants.TableOpportunity, "OPP-9", "title")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordRepository_GetHeader(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	q := "SELECT `opportunity`.`name`, `opportunity`.`owner`, `opportunity`.`creation`, `opportunity`.`title`, " +
		"`opportunity`.`opportunity_from`, `opportunity`.`party_name` FROM `opportunity` WHERE `opportunity`.`name` = ? LIMIT 1"
	mock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs("OPP-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "owner", "creation", "title", "opportunity_from", "party_name"}).
			AddRow("OPP-1", "jane@example.com", created, nil, "Lead", "L-1"))

	h, err := repo.GetHeader(context.Background(), constants.DoctypeOpportunity, "OPP-1")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "jane@example.com", h.Owner)
	assert.Equal(t, created, h.Creation)
	assert.Equal(t, "Lead", h.OpportunityFrom)
	assert.Equal(t, "L-1", h.PartyName)

	h, err = repo.GetHeader(context.Background(), constants.DoctypeContact, "C-1")
	assert.NoError(t, err)
	assert.Nil(t, h)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_SetValues(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)

	q := "UPDATE `lead` SET `modified` = ?, `status` = ? WHERE `lead`.`name` = ?"
	mock.ExpectExec(regexp.QuoteMeta(q)).WithArgs(sqlmock.AnyArg(), "Replied", "L-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetValues(context.Background(), constants.TableLead, "L-1", map[string]interface{}{"status": "Replied"})
	assert.NoError(t, err)
	assert.NoError(t, repo.SetValues(context.Background(), constants.TableLead, "L-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocInfoRepository_GetDocInfo(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocInfoRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM `version` WHERE `version`.`ref_doctype` = ? AND `version`.`docname` = ? ORDER BY `version`.`creation` ASC")).
		WithArgs("Lead", "L-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "owner", "creation", "data"}).
			AddRow("V-1", "jane", now, `{"changed": [["status", "Open", "Replied"]]}`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM `comment` WHERE `comment`.`reference_doctype` = ?")).
		WithArgs("Lead", "L-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "comment_type", "content", "owner", "creation"}).
			AddRow("C-1", "Comment", "hello", "jane", now).
			AddRow("C-2", "Info", "info", "jane", now).
			AddRow("C-3", "Attachment", "<a href='/files/a'>a</a>", "jane", now).
			AddRow("C-4", "Like", "", "jane", now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM `communication` WHERE `communication`.`reference_doctype` = ?")).
		WithArgs("Lead", "L-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "communication_type", "communication_medium", "subject",
			"content", "sender_full_name", "sender", "recipients", "cc", "bcc", "read_by_recipient",
			"delivery_status", "creation"}).
			AddRow("M-1", "Communication", "Email", "Hi", "body", "Jane", "jane", "bob", nil, nil, 1, "Sent", now).
			AddRow("M-2", "Automated Message", "Email", "SLA", "", "", "", "", nil, nil, 0, nil, now))

	info, err := repo.GetDocInfo(context.Background(), "Lead", "L-1")
	require.NoError(t, err)
	assert.Len(t, info.Versions, 1)
	assert.Len(t, info.Comments, 1)
	assert.Len(t, info.InfoLogs, 1)
	assert.Len(t, info.AttachmentLogs, 1)
	require.Len(t, info.Communications, 1)
	assert.True(t, info.Communications[0].ReadByRecipient)
	assert.Len(t, info.AutomatedMessages, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_ListForRecord(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNoteRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM `crm_note` WHERE `crm_note`.`parent` = ? ORDER BY `crm_note`.`added_on` DESC")).
		WithArgs("L-1").
		WillReturnRows(sqlmock.NewRows(noteColumns).
			AddRow("N-1", "Call", "<p>hi</p>", "jane", "jane", now, nil, "Lead", "L-1", now))

	notes, err := repo.ListForRecord(context.Background(), "L-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Call", notes[0].CustomTitle)
	assert.Empty(t, notes[0].CustomParentNote)
}

func TestNoteRepository_DeleteAttachment(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNoteRepository(db)

	q := "DELETE FROM `note_attachment` WHERE `note_attachment`.`parent` IN (?, ?) AND `note_attachment`.`filename` = ?"
	mock.ExpectExec(regexp.QuoteMeta(q)).WithArgs("N-1", "N-2", "F-1").WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteAttachment(context.Background(), []string{"N-1", "N-2"}, "F-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNoteRepository_AttachmentsEmptyList(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNoteRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM `note_attachment` WHERE 1 = 0 AND `note_attachment`.`parenttype` = ?")).
		WithArgs("CRM Note").
		WillReturnRows(sqlmock.NewRows([]string{"name", "parent", "filename"}))

	rows, err := repo.Attachments(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestContactRepository_SearchEmails(t *testing.T) {
	db, mock := newMock(t)
	repo := NewContactRepository(db)

	q := "SELECT `contact`.`full_name`, `contact`.`email_id`, `contact`.`name` FROM `contact` " +
		"WHERE `contact`.`email_id` IS NOT NULL AND `contact`.`email_id` != '' AND `contact`.`enabled` = ? " +
		"AND (`contact`.`full_name` LIKE ? OR `contact`.`email_id` LIKE ? OR `contact`.`name` LIKE ?) " +
		"ORDER BY `contact`.`email_id` ASC, `contact`.`full_name` ASC, `contact`.`name` ASC LIMIT 20"
	mock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs(1, "%jan%", "%jan%", "%jan%").
		WillReturnRows(sqlmock.NewRows([]string{"full_name", "email_id", "name"}).
			AddRow("Jane Doe", "jane@example.com", "C-1").
			AddRow(nil, "janet@example.com", "C-2"))

	rows, err := repo.SearchEmails(context.Background(), "jan")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Jane Doe", "jane@example.com", "C-1"},
		{"", "janet@example.com", "C-2"},
	}, rows)
}

func TestCRMRepository_GetOpportunityAssignees(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCRMRepository(db)
	now := time.Now()

	cols := []string{"name", "title", "opportunity_from", "party_name", "customer", "currency", "opportunity_amount",
		"status", "sales_stage", "contact_person", "contact_email", "contact_mobile", "opportunity_owner",
		"order_lost_reason", "owner", "creation", "modified", "_assign"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM `opportunity` WHERE `opportunity`.`name` = ? LIMIT 1")).
		WithArgs("OPP-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("OPP-1", "Big deal", "Lead", "L-1", nil, "USD", 1200.5, "Open",
			"Prospecting", nil, nil, nil, "jane", nil, "jane", now, now, `["jane","bob"]`))

	opp, assign, err := repo.GetOpportunity(context.Background(), "OPP-1")
	require.NoError(t, err)
	require.NotNil(t, opp)
	assert.Equal(t, 1200.5, opp.OpportunityAmount)
	assert.Equal(t, []string{"jane", "bob"}, assign)
}

func TestUserRepository_RolesAllow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	q := "SELECT `crm_permission`.`role` FROM `crm_permission` WHERE `crm_permission`.`role` IN (?, ?) " +
		"AND `crm_permission`.`doctype` = ? AND `crm_permission`.`can_write` = ? LIMIT 1"
	mock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs("Sales User", "Sales Manager", "Lead", 1).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("Sales User"))

	ok, err := repo.RolesAllow(context.Background(), []string{"Sales User", "Sales Manager"}, "Lead", constants.PermWrite)
	assert.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.RolesAllow(context.Background(), []string{"Sales User"}, "Lead", "export")
	assert.Error(t, err)
}

func TestUserRepository_FullNameFallback(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `user`.`full_name` FROM `user`")).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"full_name"}))

	name, err := repo.FullName(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Equal(t, "ghost", name)
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	q := "UPDATE `crm_notification` SET `modified` = ?, `read` = ? WHERE `crm_notification`.`name` = ? AND `crm_notification`.`to_user` = ?"
	mock.ExpectExec(regexp.QuoteMeta(q)).WithArgs(sqlmock.AnyArg(), 1, "N-1", "jane").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkRead(context.Background(), "N-1", "jane")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCRMRepository_GetLeadAssignees(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCRMRepository(db)

	cols := []string{"name", "title", "lead_name", "company_name", "status", "source", "territory",
		"email_id", "mobile_no", "owner", "creation", "_assign"}
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM `lead` WHERE `lead`.`name` = ?")).WithArgs("L-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("L-1", "Acme", "Jane", "Acme Inc", "Open", nil, nil,
			nil, nil, "admin@example.com", created, `["sales@example.com"]`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM `lead` WHERE `lead`.`name` = ?")).WithArgs("L-2").
		WillReturnRows(sqlmock.NewRows(cols))

	lead, assign, err := repo.GetLead(context.Background(), "L-1")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "Acme", lead.Title)
	assert.Equal(t, []string{"sales@example.com"}, assign)

	lead, assign, err = repo.GetLead(context.Background(), "L-2")
	require.NoError(t, err)
	assert.Nil(t, lead)
	assert.Nil(t, assign)
	assert.NoError(t, mock.ExpectationsWereMet())
}
