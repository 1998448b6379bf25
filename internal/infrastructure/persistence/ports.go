package persistence

import "github.com/rtCamp/next-crm/internal/domain/ports"

// Ensure repositories implement the domain ports at compile time
var (
	_ ports.Transactor        = (*TransactionManager)(nil)
	_ ports.RecordStore       = (*RecordRepository)(nil)
	_ ports.DocInfoStore      = (*DocInfoRepository)(nil)
	_ ports.FileStore         = (*FileRepository)(nil)
	_ ports.NoteStore         = (*NoteRepository)(nil)
	_ ports.ActivityStore     = (*ActivityRepository)(nil)
	_ ports.TodoStore         = (*TodoRepository)(nil)
	_ ports.ContactStore      = (*ContactRepository)(nil)
	_ ports.CRMStore          = (*CRMRepository)(nil)
	_ ports.NotificationStore = (*NotificationRepository)(nil)
	_ ports.UserStore         = (*UserRepository)(nil)
)
