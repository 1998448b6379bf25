package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/internal/infrastructure/storage"
)

// In-memory implementations of the ports used by the service tests.

var (
	_ ports.RecordStore       = (*fakeRecords)(nil)
	_ ports.DocInfoStore      = (*fakeDocInfo)(nil)
	_ ports.FileStore         = (*fakeFiles)(nil)
	_ ports.NoteStore         = (*fakeNotes)(nil)
	_ ports.ActivityStore     = (*fakeActivity)(nil)
	_ ports.TodoStore         = (*fakeTodos)(nil)
	_ ports.ContactStore      = (*fakeContacts)(nil)
	_ ports.CRMStore          = (*fakeCRM)(nil)
	_ ports.NotificationStore = (*fakeNotifications)(nil)
	_ ports.UserStore         = (*fakeUsers)(nil)
	_ ports.BlobStore         = (*fakeBlobs)(nil)
	_ ports.Transactor        = (*fakeTx)(nil)
)

var (
	adminUser = &models.UserSession{Name: "admin@example.com", FullName: "Admin", IsSystemManager: true}
	salesUser = &models.UserSession{Name: "sales@example.com", FullName: "Sales Rep", Roles: []string{"Sales User"}}
)

func at(minutes int) time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}

type fakeRecords struct {
	rows    map[string]map[string]map[string]string
	headers map[string]*models.RecordHeader
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		rows:    map[string]map[string]map[string]string{},
		headers: map[string]*models.RecordHeader{},
	}
}

func (f *fakeRecords) put(table, name string, values map[string]string) {
	if f.rows[table] == nil {
		f.rows[table] = map[string]map[string]string{}
	}
	row := map[string]string{}
	for k, v := range values {
		row[k] = v
	}
	f.rows[table][name] = row
}

func (f *fakeRecords) putHeader(doctype string, h models.RecordHeader) {
	f.headers[doctype+"/"+h.Name] = &h
}

func (f *fakeRecords) Exists(_ context.Context, table, name string) (bool, error) {
	_, ok := f.rows[table][name]
	return ok, nil
}

func (f *fakeRecords) GetValue(_ context.Context, table, name, field string) (string, bool, error) {
	row, ok := f.rows[table][name]
	if !ok {
		return "", false, nil
	}
	return row[field], true, nil
}

func (f *fakeRecords) GetHeader(_ context.Context, doctype, name string) (*models.RecordHeader, error) {
	h, ok := f.headers[doctype+"/"+name]
	if !ok {
		return nil, nil
	}
	c := *h
	return &c, nil
}

func (f *fakeRecords) SetValues(_ context.Context, table, name string, values map[string]interface{}) error {
	row, ok := f.rows[table][name]
	if !ok {
		return nil
	}
	for k, v := range values {
		row[k] = fmt.Sprint(v)
	}
	return nil
}

func (f *fakeRecords) Delete(_ context.Context, table, name string) error {
	delete(f.rows[table], name)
	return nil
}

type fakeDocInfo struct {
	infos  map[string]*models.DocInfo
	fields map[string]map[string]models.DocField
}

func (f *fakeDocInfo) GetDocInfo(_ context.Context, doctype, name string) (*models.DocInfo, error) {
	if info, ok := f.infos[doctype+"/"+name]; ok {
		return info, nil
	}
	return &models.DocInfo{}, nil
}

func (f *fakeDocInfo) Fields(_ context.Context, doctype string) (map[string]models.DocField, error) {
	if fields, ok := f.fields[doctype]; ok {
		return fields, nil
	}
	return map[string]models.DocField{}, nil
}

type fakeFiles struct {
	files []*models.File
	seq   int
}

func (f *fakeFiles) Get(_ context.Context, name string) (*models.File, error) {
	for _, file := range f.files {
		if file.Name == name {
			c := *file
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeFiles) ListAttached(_ context.Context, doctype, name string) ([]models.File, error) {
	out := make([]models.File, 0)
	for _, file := range f.files {
		if file.AttachedToDoctype == doctype && file.AttachedToName == name {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (f *fakeFiles) Insert(_ context.Context, file *models.File) error {
	if file.Name == "" {
		f.seq++
		file.Name = fmt.Sprintf("file-%d", f.seq)
	}
	c := *file
	f.files = append(f.files, &c)
	return nil
}

func (f *fakeFiles) Delete(_ context.Context, name string) error {
	for i, file := range f.files {
		if file.Name == name {
			f.files = append(f.files[:i], f.files[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeNotes struct {
	notes []*models.Note
	atts  []models.NoteAttachment
	seq   int
}

func (f *fakeNotes) find(name string) *models.Note {
	for _, n := range f.notes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

func (f *fakeNotes) ListForRecord(_ context.Context, parent string) ([]models.Note, error) {
	out := make([]models.Note, 0)
	for _, n := range f.notes {
		if n.Parent == parent {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotes) RootNotes(_ context.Context, doctype, parent string) ([]models.Note, error) {
	out := make([]models.Note, 0)
	for _, n := range f.notes {
		if n.ParentType == doctype && n.Parent == parent && n.CustomParentNote == "" {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotes) Children(_ context.Context, parentNote string) ([]models.Note, error) {
	out := make([]models.Note, 0)
	for _, n := range f.notes {
		if n.CustomParentNote == parentNote {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotes) Get(_ context.Context, name string) (*models.Note, error) {
	if n := f.find(name); n != nil {
		c := *n
		return &c, nil
	}
	return nil, nil
}

func (f *fakeNotes) Insert(_ context.Context, n *models.Note) error {
	if n.Name == "" {
		f.seq++
		n.Name = fmt.Sprintf("copied-note-%d", f.seq)
	}
	c := *n
	f.notes = append(f.notes, &c)
	return nil
}

func (f *fakeNotes) Update(_ context.Context, name string, values map[string]interface{}) error {
	n := f.find(name)
	if n == nil {
		return nil
	}
	if v, ok := values["custom_title"].(string); ok {
		n.CustomTitle = v
	}
	if v, ok := values["note"].(string); ok {
		n.Note = v
	}
	if v, ok := values["added_on"].(time.Time); ok {
		n.AddedOn = v
	}
	return nil
}

func (f *fakeNotes) Delete(_ context.Context, name string) error {
	for i, n := range f.notes {
		if n.Name == name {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			break
		}
	}
	kept := f.atts[:0]
	for _, a := range f.atts {
		if a.Parent != name {
			kept = append(kept, a)
		}
	}
	f.atts = kept
	return nil
}

func (f *fakeNotes) Attachments(_ context.Context, notes []string) ([]models.NoteAttachment, error) {
	want := map[string]bool{}
	for _, n := range notes {
		want[n] = true
	}
	out := make([]models.NoteAttachment, 0)
	for _, a := range f.atts {
		if want[a.Parent] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeNotes) RecordAttachments(_ context.Context, doctype, parent string) ([]models.NoteAttachment, error) {
	out := make([]models.NoteAttachment, 0)
	for _, a := range f.atts {
		if n := f.find(a.Parent); n != nil && n.ParentType == doctype && n.Parent == parent {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeNotes) InsertAttachment(_ context.Context, a *models.NoteAttachment) error {
	if a.Name == "" {
		f.seq++
		a.Name = fmt.Sprintf("copied-na-%d", f.seq)
	}
	f.atts = append(f.atts, *a)
	return nil
}

func (f *fakeNotes) DeleteAttachment(_ context.Context, notes []string, filename string) (int64, error) {
	want := map[string]bool{}
	for _, n := range notes {
		want[n] = true
	}
	var removed int64
	kept := f.atts[:0]
	for _, a := range f.atts {
		if want[a.Parent] && a.Filename == filename {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	f.atts = kept
	return removed, nil
}

func (f *fakeNotes) DeleteAttachmentRows(_ context.Context, names []string) error {
	drop := map[string]bool{}
	for _, n := range names {
		drop[n] = true
	}
	kept := f.atts[:0]
	for _, a := range f.atts {
		if !drop[a.Name] {
			kept = append(kept, a)
		}
	}
	f.atts = kept
	return nil
}

func (f *fakeNotes) NotesWithFile(_ context.Context, filename, doctype, parent string) ([]string, error) {
	out := make([]string, 0)
	for _, a := range f.atts {
		if n := f.find(a.Parent); a.Filename == filename && n != nil && n.ParentType == doctype && n.Parent == parent {
			out = append(out, n.Name)
		}
	}
	return out, nil
}

func (f *fakeNotes) CountFileReferences(_ context.Context, filename string) (int, error) {
	count := 0
	for _, a := range f.atts {
		if a.Filename == filename {
			count++
		}
	}
	return count, nil
}

type fakeActivity struct {
	calls  map[string][]models.CallLog
	events map[string][]models.Event
	linked map[string]*models.ToDoEvent
}

func (f *fakeActivity) Calls(_ context.Context, docname string) ([]models.CallLog, error) {
	return append(make([]models.CallLog, 0), f.calls[docname]...), nil
}

func (f *fakeActivity) Events(_ context.Context, docname string) ([]models.Event, error) {
	return append(make([]models.Event, 0), f.events[docname]...), nil
}

func (f *fakeActivity) LinkedEvent(_ context.Context, name string) (*models.ToDoEvent, error) {
	return f.linked[name], nil
}

type fakeTodos struct {
	todos  []*models.ToDo
	owners map[string]string
	seq    int
}

func (f *fakeTodos) ListForRecord(_ context.Context, docname string) ([]models.ToDo, error) {
	out := make([]models.ToDo, 0)
	for _, t := range f.todos {
		if t.ReferenceName == docname {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTodos) Get(_ context.Context, name string) (*models.ToDo, error) {
	for _, t := range f.todos {
		if t.Name == name {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeTodos) Insert(_ context.Context, t *models.ToDo, owner string) error {
	if t.Name == "" {
		f.seq++
		t.Name = fmt.Sprintf("todo-%d", f.seq)
	}
	if f.owners == nil {
		f.owners = map[string]string{}
	}
	f.owners[t.Name] = owner
	c := *t
	f.todos = append(f.todos, &c)
	return nil
}

func (f *fakeTodos) UpdateStatus(_ context.Context, name, status string) error {
	for _, t := range f.todos {
		if t.Name == name {
			t.Status = status
		}
	}
	return nil
}

func (f *fakeTodos) OpenWithTitleExists(_ context.Context, doctype, docname, title string) (bool, error) {
	for _, t := range f.todos {
		if t.ReferenceType == doctype && t.ReferenceName == docname && t.CustomTitle == title && t.Status == "Open" {
			return true, nil
		}
	}
	return false, nil
}

type fakeContacts struct {
	contacts map[string]*models.Contact
	emails   map[string][]models.ContactEmail
	phones   map[string][]models.ContactPhone
	links    map[string][]models.DynamicLink
	primary  map[string][3]string
	seq      int
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{
		contacts: map[string]*models.Contact{},
		emails:   map[string][]models.ContactEmail{},
		phones:   map[string][]models.ContactPhone{},
		links:    map[string][]models.DynamicLink{},
		primary:  map[string][3]string{},
	}
}

func (f *fakeContacts) names() []string {
	out := make([]string, 0, len(f.contacts))
	for n := range f.contacts {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (f *fakeContacts) Get(_ context.Context, name string) (*models.Contact, error) {
	c, ok := f.contacts[name]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContacts) Emails(_ context.Context, contact string) ([]models.ContactEmail, error) {
	return append(make([]models.ContactEmail, 0), f.emails[contact]...), nil
}

func (f *fakeContacts) Phones(_ context.Context, contact string) ([]models.ContactPhone, error) {
	return append(make([]models.ContactPhone, 0), f.phones[contact]...), nil
}

func (f *fakeContacts) Links(_ context.Context, contact string) ([]models.DynamicLink, error) {
	return append(make([]models.DynamicLink, 0), f.links[contact]...), nil
}

func (f *fakeContacts) EmailOwners(_ context.Context, email string) ([]models.EmailOwner, error) {
	var primary, other []models.EmailOwner
	for _, name := range f.names() {
		for _, e := range f.emails[name] {
			if e.EmailID != email {
				continue
			}
			owner := models.EmailOwner{Contact: name, IsPrimary: e.IsPrimary}
			if e.IsPrimary {
				primary = append(primary, owner)
			} else {
				other = append(other, owner)
			}
		}
	}
	return append(primary, other...), nil
}

func (f *fakeContacts) AddEmail(_ context.Context, contact string, e *models.ContactEmail) error {
	f.seq++
	e.Name = fmt.Sprintf("ce-%d", f.seq)
	f.emails[contact] = append(f.emails[contact], *e)
	return nil
}

func (f *fakeContacts) AddPhone(_ context.Context, contact string, p *models.ContactPhone) error {
	f.seq++
	p.Name = fmt.Sprintf("cp-%d", f.seq)
	f.phones[contact] = append(f.phones[contact], *p)
	return nil
}

func (f *fakeContacts) SetEmailFlags(_ context.Context, emails []models.ContactEmail) error {
	for _, e := range emails {
		for contact, rows := range f.emails {
			for i := range rows {
				if rows[i].Name == e.Name {
					f.emails[contact][i].IsPrimary = e.IsPrimary
				}
			}
		}
	}
	return nil
}

func (f *fakeContacts) SetPhoneFlags(_ context.Context, phones []models.ContactPhone) error {
	for _, p := range phones {
		for contact, rows := range f.phones {
			for i := range rows {
				if rows[i].Name == p.Name {
					f.phones[contact][i].IsPrimaryPhone = p.IsPrimaryPhone
					f.phones[contact][i].IsPrimaryMobileNo = p.IsPrimaryMobileNo
				}
			}
		}
	}
	return nil
}

func (f *fakeContacts) SetPrimaryFields(_ context.Context, contact, email, mobile, phone string) error {
	f.primary[contact] = [3]string{email, mobile, phone}
	return nil
}

func (f *fakeContacts) LinkedContacts(_ context.Context, doctype, name string) ([]string, error) {
	out := make([]string, 0)
	for _, contact := range f.names() {
		for _, l := range f.links[contact] {
			if l.LinkDoctype == doctype && l.LinkName == name {
				out = append(out, contact)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeContacts) AddLink(_ context.Context, contact, doctype, name string) error {
	f.links[contact] = append(f.links[contact], models.DynamicLink{LinkDoctype: doctype, LinkName: name})
	return nil
}

func (f *fakeContacts) RemoveLinks(_ context.Context, contact, linkName string) error {
	kept := make([]models.DynamicLink, 0)
	for _, l := range f.links[contact] {
		if l.LinkName != linkName {
			kept = append(kept, l)
		}
	}
	f.links[contact] = kept
	return nil
}

func (f *fakeContacts) SearchEmails(_ context.Context, txt string) ([][]string, error) {
	out := make([][]string, 0)
	for _, name := range f.names() {
		c := f.contacts[name]
		if c.EmailID != "" {
			out = append(out, []string{c.FullName, c.EmailID, c.Name})
		}
	}
	return out, nil
}

type lostCall struct {
	reasons, competitors []string
	detail               string
}

type fakeCRM struct {
	leads         map[string]*models.Lead
	opps          map[string]*models.Opportunity
	assign        map[string][]string
	customers     map[string]*models.Customer
	quotations    map[string]bool
	lost          map[string]lostCall
	checklists    map[string][]string
	scripts       map[string][]string
	settings      map[string]string
	contactPerson map[string]string
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{
		leads:         map[string]*models.Lead{},
		opps:          map[string]*models.Opportunity{},
		assign:        map[string][]string{},
		customers:     map[string]*models.Customer{},
		quotations:    map[string]bool{},
		lost:          map[string]lostCall{},
		checklists:    map[string][]string{},
		scripts:       map[string][]string{},
		settings:      map[string]string{},
		contactPerson: map[string]string{},
	}
}

func (f *fakeCRM) GetLead(_ context.Context, name string) (*models.Lead, []string, error) {
	if l, ok := f.leads[name]; ok {
		c := *l
		return &c, append(make([]string, 0), f.assign[name]...), nil
	}
	return nil, nil, nil
}

func (f *fakeCRM) GetOpportunity(_ context.Context, name string) (*models.Opportunity, []string, error) {
	if o, ok := f.opps[name]; ok {
		c := *o
		return &c, append(make([]string, 0), f.assign[name]...), nil
	}
	return nil, nil, nil
}

func (f *fakeCRM) GetCustomer(_ context.Context, name string) (*models.Customer, error) {
	if c, ok := f.customers[name]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCRM) LinkedOpportunities(_ context.Context, doctype, name string) ([]models.LinkedOpportunity, error) {
	out := make([]models.LinkedOpportunity, 0)
	for _, o := range f.opps {
		if o.OpportunityFrom == doctype && o.PartyName == name {
			out = append(out, models.LinkedOpportunity{Name: o.Name, Title: o.Title, Status: o.Status})
		}
	}
	return out, nil
}

func (f *fakeCRM) HasActiveQuotation(_ context.Context, opportunity string) (bool, error) {
	return f.quotations[opportunity], nil
}

func (f *fakeCRM) DeclareLost(_ context.Context, name string, reasons, competitors []string, detail string) error {
	f.lost[name] = lostCall{reasons: reasons, competitors: competitors, detail: detail}
	if o, ok := f.opps[name]; ok {
		o.Status = "Lost"
		o.OrderLostReason = detail
	}
	return nil
}

func (f *fakeCRM) ChecklistItems(_ context.Context, parent, parentType string) ([]string, error) {
	return f.checklists[parentType+"/"+parent], nil
}

func (f *fakeCRM) FormScripts(_ context.Context, doctype string) ([]string, error) {
	return append(make([]string, 0), f.scripts[doctype]...), nil
}

func (f *fakeCRM) Setting(_ context.Context, key string) (string, error) {
	return f.settings[key], nil
}

func (f *fakeCRM) SetContactPerson(_ context.Context, opportunity, contact string) error {
	f.contactPerson[opportunity] = contact
	return nil
}

type fakeNotifications struct {
	items []models.CRMNotification
	logs  []models.NotificationLog
	seq   int
}

func (f *fakeNotifications) Exists(_ context.Context, n *models.CRMNotification) (bool, error) {
	for _, item := range f.items {
		if item.FromUser == n.FromUser && item.ToUser == n.ToUser && item.Type == n.Type &&
			item.Message == n.Message && item.NotificationText == n.NotificationText &&
			item.NotificationTypeDoctype == n.NotificationTypeDoctype &&
			item.NotificationTypeDoc == n.NotificationTypeDoc &&
			item.ReferenceDoctype == n.ReferenceDoctype && item.ReferenceName == n.ReferenceName {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifications) Insert(_ context.Context, n *models.CRMNotification) error {
	f.seq++
	n.Name = fmt.Sprintf("ntf-%d", f.seq)
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotifications) ForUser(_ context.Context, user string, limit int) ([]models.CRMNotification, error) {
	out := make([]models.CRMNotification, 0)
	for _, n := range f.items {
		if n.ToUser == user && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, name, user string) (bool, error) {
	for i := range f.items {
		if f.items[i].Name == name && f.items[i].ToUser == user {
			f.items[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifications) DeleteForDoc(_ context.Context, doc string) error {
	kept := f.items[:0]
	for _, n := range f.items {
		if n.NotificationTypeDoc != doc {
			kept = append(kept, n)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeNotifications) InsertLog(_ context.Context, l *models.NotificationLog) error {
	f.logs = append(f.logs, *l)
	return nil
}

type fakeUsers struct {
	fullNames  map[string]string
	mentioners map[string]bool
	allow      map[string]bool
	err        error
}

func (f *fakeUsers) FullName(_ context.Context, user string) (string, error) {
	return f.fullNames[user], nil
}

func (f *fakeUsers) MentionRecipients(_ context.Context, users []string) ([]string, error) {
	out := make([]string, 0)
	for _, u := range users {
		if f.mentioners[u] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) RolesAllow(_ context.Context, roles []string, doctype, perm string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, r := range roles {
		if f.allow[r+"/"+doctype+"/"+perm] {
			return true, nil
		}
	}
	return false, nil
}

// grant lets role perform each perm on doctype
func (f *fakeUsers) grant(role, doctype string, perms ...string) {
	if f.allow == nil {
		f.allow = map[string]bool{}
	}
	for _, p := range perms {
		f.allow[role+"/"+doctype+"/"+p] = true
	}
}

type fakeBlobs struct {
	enabled bool
	objects map[string]string
	copyErr error
}

func (f *fakeBlobs) Enabled() bool { return f.enabled }

func (f *fakeBlobs) Put(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	if !f.enabled {
		return storage.ErrDisabled
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = string(b)
	return nil
}

func (f *fakeBlobs) Copy(_ context.Context, srcKey, dstKey string) error {
	if !f.enabled {
		return storage.ErrDisabled
	}
	if f.copyErr != nil {
		return f.copyErr
	}
	f.objects[dstKey] = f.objects[srcKey]
	return nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	if !f.enabled {
		return storage.ErrDisabled
	}
	delete(f.objects, key)
	return nil
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func (f *fakeTx) WithRetry(ctx context.Context, fn func(ctx context.Context) error, _ int) error {
	return f.WithTransaction(ctx, fn)
}

type fakeThreads struct {
	threads []models.Activity
}

func (f *fakeThreads) LinkedThreads(_ context.Context, _, _ string) ([]models.Activity, error) {
	return f.threads, nil
}

// harness wires every service on top of the fakes
type harness struct {
	records       *fakeRecords
	docinfo       *fakeDocInfo
	files         *fakeFiles
	notes         *fakeNotes
	activity      *fakeActivity
	todos         *fakeTodos
	contacts      *fakeContacts
	crm           *fakeCRM
	notifications *fakeNotifications
	users         *fakeUsers
	blobs         *fakeBlobs
	tx            *fakeTx
	bus           *EventBus

	perms       *PermissionService
	notify      *NotificationService
	attachments *AttachmentService
	noteSvc     *NoteService
	conversion  *ConversionService
	activities  *ActivityService
	contactSvc  *ContactService
	opportunity *OpportunityService
	todoSvc     *TodoService
	recordSvc   *RecordService
}

func newHarness() *harness {
	h := &harness{
		records:       newFakeRecords(),
		docinfo:       &fakeDocInfo{infos: map[string]*models.DocInfo{}, fields: map[string]map[string]models.DocField{}},
		files:         &fakeFiles{},
		notes:         &fakeNotes{},
		activity:      &fakeActivity{calls: map[string][]models.CallLog{}, events: map[string][]models.Event{}, linked: map[string]*models.ToDoEvent{}},
		todos:         &fakeTodos{},
		contacts:      newFakeContacts(),
		crm:           newFakeCRM(),
		notifications: &fakeNotifications{},
		users:         &fakeUsers{fullNames: map[string]string{}, mentioners: map[string]bool{}},
		blobs:         &fakeBlobs{enabled: true, objects: map[string]string{}},
		tx:            &fakeTx{},
		bus:           NewEventBus(),
	}

	h.perms = NewPermissionService(h.users)
	h.notify = NewNotificationService(h.notifications)
	h.attachments = NewAttachmentService(h.files, h.notes, h.records, h.blobs, h.perms)
	h.noteSvc = NewNoteService(h.notes, h.records, h.users, h.perms, h.notify, h.attachments, h.tx)
	h.conversion = NewConversionService(h.notes, h.contacts, h.records, h.attachments, h.perms, h.tx, h.bus)
	h.activities = NewActivityService(h.records, h.docinfo, h.files, h.notes, h.activity, h.todos, h.crm, h.perms)
	h.contactSvc = NewContactService(h.contacts, h.crm, h.perms, h.tx)
	h.opportunity = NewOpportunityService(h.records, h.docinfo, h.crm, h.todos, h.perms, h.tx)
	h.todoSvc = NewTodoService(h.todos, h.records, h.crm, h.users, h.perms, h.notify)
	h.recordSvc = NewRecordService(h.records, h.perms, h.tx, h.bus)
	return h
}

func (h *harness) addLead(name, title string, created time.Time) {
	h.records.put("lead", name, map[string]string{"title": title})
	h.records.putHeader("Lead", models.RecordHeader{Name: name, Owner: adminUser.Name, Creation: created, Title: title})
	h.crm.leads[name] = &models.Lead{Name: name, Title: title, Creation: created}
}

func (h *harness) addOpportunity(name, title, lead string, created time.Time) {
	from := ""
	if lead != "" {
		from = "Lead"
	}
	h.records.put("opportunity", name, map[string]string{"title": title})
	h.records.putHeader("Opportunity", models.RecordHeader{
		Name: name, Owner: adminUser.Name, Creation: created, Title: title, OpportunityFrom: from, PartyName: lead,
	})
	h.crm.opps[name] = &models.Opportunity{Name: name, Title: title, OpportunityFrom: from, PartyName: lead, Creation: created}
}

func (h *harness) addFile(name, doctype, docname, key string) {
	h.files.files = append(h.files.files, &models.File{
		Name: name, FileName: name + ".pdf", FileURL: "/" + key, AttachedToDoctype: doctype, AttachedToName: docname, StorageKey: key,
	})
	if key != "" {
		h.blobs.objects[key] = "content of " + name
	}
}
