package usecase

import (
	"context"
	"time"

	"jobify-backend/internal/tracker/domain"
)

// EmailSource fetches a user's inbox window [since, until), sorted ascending
// by receipt time.
type EmailSource interface {
	Fetch(ctx context.Context, user *domain.User, since, until time.Time) ([]domain.InboundEmail, error)
}

// Classifier turns raw email text into a structured event. A (nil, nil)
// return means the email is not job related.
type Classifier interface {
	Classify(ctx context.Context, text string) (*domain.EmailEvent, error)
}

// Embedder computes an embedding vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores and queries semantic records per namespace. It is
// advisory: failures must never corrupt relational state.
type VectorIndex interface {
	Upsert(ctx context.Context, namespace, id string, vector []float32, record domain.SemanticRecord) error
	Query(ctx context.Context, namespace string, vector []float32, userEmail string, topK int) ([]domain.SemanticMatch, error)
}

// TrackerUsecase is the application service behind the API and scheduler.
type TrackerUsecase interface {
	// SyncUser runs one fetch-classify-match-reconcile pass for a user.
	SyncUser(ctx context.Context, userEmail string) (*RunSummary, error)

	GetApplications(userEmail string) ([]*domain.Application, error)
	GetInterviews(userEmail string) ([]*domain.InterviewRound, error)
	GetRejections(userEmail string) ([]*domain.Rejection, error)
	GetOffers(userEmail string) ([]*domain.Offer, error)
}

// RunSummary counts what one sync run did, for logging and the sync endpoint.
type RunSummary struct {
	RunID               string    `json:"run_id"`
	UserEmail           string    `json:"user_email"`
	EmailsFetched       int       `json:"emails_fetched"`
	EmailsSkipped       int       `json:"emails_skipped"`
	NotJobRelated       int       `json:"not_job_related"`
	ApplicationsCreated int       `json:"applications_created"`
	ApplicationsMatched int       `json:"applications_matched"`
	InterviewsUpserted  int       `json:"interviews_upserted"`
	RejectionsUpserted  int       `json:"rejections_upserted"`
	OffersUpserted      int       `json:"offers_upserted"`
	Watermark           time.Time `json:"watermark"`
}
