package domain

import "time"

// Application is the root entity of one job pursuit. At most one row should
// represent a real-world (user, company, role) pursuit; the matcher makes a
// best effort before a new row is created, but similarity matching is
// probabilistic so duplicates are tolerated rather than impossible.
// Applications are never deleted.
type Application struct {
	ID              uint      `json:"application_id" gorm:"primaryKey;autoIncrement"`
	UserEmail       string    `json:"user_email" gorm:"index;not null"`
	CompanyName     string    `json:"company_name" gorm:"not null"`
	RoleTitle       string    `json:"role_title" gorm:"not null"`
	ApplicationDate time.Time `json:"application_date" gorm:"type:date"`
	Location        string    `json:"location,omitempty"`
	ExternalJobID   string    `json:"external_job_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InterviewRound belongs to exactly one Application, keyed by the natural
// key (application_id, round_label). A second email about the same round
// overwrites the invitation date instead of duplicating the row.
type InterviewRound struct {
	ID             uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	ApplicationID  uint       `json:"application_id" gorm:"uniqueIndex:idx_application_round;not null"`
	RoundLabel     string     `json:"round_label" gorm:"uniqueIndex:idx_application_round;not null"`
	InvitationDate time.Time  `json:"invitation_date" gorm:"type:date"`
	InterviewLink  string     `json:"interview_link,omitempty"`
	DeadlineDate   *time.Time `json:"deadline_date,omitempty" gorm:"type:date"`
	Completed      bool       `json:"completed" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rejection is at most one per Application; a second rejected event for the
// same application overwrites the date (last write wins).
type Rejection struct {
	ApplicationID uint      `json:"application_id" gorm:"primaryKey"`
	CompanyName   string    `json:"company_name" gorm:"not null"`
	RoleTitle     string    `json:"role_title" gorm:"not null"`
	RejectionDate time.Time `json:"rejection_date" gorm:"type:date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Offer is at most one per Application with overwrite semantics. Accepted is
// a tri-state: nil until the user acts; an overwriting event that carries no
// signal preserves the stored value.
type Offer struct {
	ApplicationID    uint       `json:"application_id" gorm:"primaryKey"`
	CompanyName      string     `json:"company_name" gorm:"not null"`
	RoleTitle        string     `json:"role_title" gorm:"not null"`
	OfferDate        time.Time  `json:"offer_date" gorm:"type:date"`
	SalaryComp       string     `json:"salary_comp,omitempty"`
	Location         string     `json:"location,omitempty"`
	DeadlineToAccept *time.Time `json:"deadline_to_accept,omitempty" gorm:"type:date"`
	Accepted         *bool      `json:"accepted,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
