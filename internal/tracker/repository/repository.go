package repository

import (
	"time"

	"jobify-backend/internal/tracker/domain"
)

// UserRepository manages users and their sync watermarks.
type UserRepository interface {
	// FindOrCreate returns the user for an email address, creating the row
	// lazily with an epoch watermark on first observation.
	FindOrCreate(email string) (*domain.User, error)
	// FindByEmail returns (nil, nil) when the user does not exist.
	FindByEmail(email string) (*domain.User, error)
	ListAll() ([]*domain.User, error)
	Update(user *domain.User) error
	// AdvanceWatermark persists a new watermark and marks the first full
	// scan as done. Never moves the watermark backwards.
	AdvanceWatermark(email string, watermark time.Time) error
}

// ApplicationRepository manages applications and their child rows. Child
// writes are upserts on the natural key; see the domain types for the
// overwrite semantics.
type ApplicationRepository interface {
	Create(app *domain.Application) error
	FindByID(id uint) (*domain.Application, error)
	FindByUser(userEmail string) ([]*domain.Application, error)

	// UpsertInterviewRound creates or overwrites the round keyed by
	// (application_id, round_label); created reports which happened.
	UpsertInterviewRound(round *domain.InterviewRound) (created bool, err error)
	FindInterviewsByUser(userEmail string) ([]*domain.InterviewRound, error)

	UpsertRejection(rejection *domain.Rejection) error
	FindRejectionsByUser(userEmail string) ([]*domain.Rejection, error)

	// UpsertOffer overwrites the single offer row, preserving a previously
	// recorded accepted/declined value when the incoming one is nil.
	UpsertOffer(offer *domain.Offer) error
	FindOffersByUser(userEmail string) ([]*domain.Offer, error)
}
