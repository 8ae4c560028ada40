package domain

import "time"

// Provider identifies which mailbox adapter fetches a user's email.
const (
	ProviderGmail = "gmail"
	ProviderIMAP  = "imap"
)

// User owns the per-mailbox sync cursor. Created lazily the first time an
// email address is observed; the zero SyncWatermark means the full history
// has not been scanned yet.
type User struct {
	Email     string `json:"email" gorm:"primaryKey;column:email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Provider  string `json:"provider" gorm:"default:gmail"`

	// Gmail OAuth
	GoogleRefreshToken string `json:"-"`

	// IMAP credentials (password AES-encrypted at rest)
	ImapServer   string `json:"-"`
	ImapPort     int    `json:"-"`
	ImapPassword string `json:"-"`

	SyncWatermark time.Time `json:"sync_watermark"`
	FirstSyncDone bool      `json:"first_sync_done" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
