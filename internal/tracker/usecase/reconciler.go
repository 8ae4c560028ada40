package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobify-backend/internal/tracker/domain"
	"jobify-backend/internal/tracker/repository"

	"github.com/rs/zerolog/log"
)

// reconciler applies one classified event to relational state and mirrors the
// write into the vector index. Relational failures are returned and abort the
// run; index failures are logged and swallowed, since the index is advisory
// and a deterministic id makes the next upsert self-healing.
type reconciler struct {
	appRepo repository.ApplicationRepository
	index   VectorIndex
}

func newReconciler(appRepo repository.ApplicationRepository, index VectorIndex) *reconciler {
	return &reconciler{appRepo: appRepo, index: index}
}

// Apply upserts the event against the application matched by the caller
// (matchedID == 0 means no match). The vector is the one embedding computed
// for this email, reused for every index write it triggers.
func (r *reconciler) Apply(ctx context.Context, user *domain.User, event *domain.EmailEvent, eventDate time.Time, matchedID uint, vector []float32, summary *RunSummary) error {
	switch event.EventType {
	case domain.EventApplied:
		return r.applyApplied(ctx, user, event, eventDate, matchedID, vector, summary)
	case domain.EventInterview:
		return r.applyInterview(ctx, user, event, eventDate, matchedID, vector, summary)
	case domain.EventRejected:
		return r.applyRejected(ctx, user, event, eventDate, matchedID, vector, summary)
	case domain.EventOffer:
		return r.applyOffer(ctx, user, event, eventDate, matchedID, vector, summary)
	default:
		return fmt.Errorf("unknown event type %q", event.EventType)
	}
}

func (r *reconciler) applyApplied(ctx context.Context, user *domain.User, event *domain.EmailEvent, eventDate time.Time, matchedID uint, vector []float32, summary *RunSummary) error {
	if matchedID != 0 {
		// Duplicate application email for a pursuit we already track.
		summary.ApplicationsMatched++
		return nil
	}
	_, err := r.createApplication(ctx, user, event, eventDate, vector, summary)
	return err
}

func (r *reconciler) applyInterview(ctx context.Context, user *domain.User, event *domain.EmailEvent, eventDate time.Time, matchedID uint, vector []float32, summary *RunSummary) error {
	app, err := r.resolveApplication(ctx, user, event, eventDate, matchedID, vector, summary)
	if err != nil {
		return err
	}

	label := event.RoundLabel
	if strings.TrimSpace(label) == "" {
		label = "Interview"
	}
	round := &domain.InterviewRound{
		ApplicationID:  app.ID,
		RoundLabel:     label,
		InvitationDate: eventDate,
	}
	created, err := r.appRepo.UpsertInterviewRound(round)
	if err != nil {
		return fmt.Errorf("failed to upsert interview round: %w", err)
	}
	summary.InterviewsUpserted++

	// Only a brand-new round adds to the interview namespace; an overwrite
	// already has its record there.
	if created {
		r.indexRecord(ctx, "interview", fmt.Sprintf("interview-%d-%s", app.ID, slug(label)), vector, domain.SemanticRecord{
			UserEmail:      user.Email,
			ApplicationID:  app.ID,
			Status:         string(domain.EventInterview),
			CompanyName:    app.CompanyName,
			RoleTitle:      app.RoleTitle,
			InterviewRound: label,
			Location:       event.Location,
			JobID:          app.ExternalJobID,
		})
	}
	return nil
}

func (r *reconciler) applyRejected(ctx context.Context, user *domain.User, event *domain.EmailEvent, eventDate time.Time, matchedID uint, vector []float32, summary *RunSummary) error {
	app, err := r.resolveApplication(ctx, user, event, eventDate, matchedID, vector, summary)
	if err != nil {
		return err
	}

	rejection := &domain.Rejection{
		ApplicationID: app.ID,
		CompanyName:   app.CompanyName,
		RoleTitle:     app.RoleTitle,
		RejectionDate: eventDate,
	}
	if err := r.appRepo.UpsertRejection(rejection); err != nil {
		return fmt.Errorf("failed to upsert rejection: %w", err)
	}
	summary.RejectionsUpserted++

	r.indexRecord(ctx, "rejected", fmt.Sprintf("rejected-%d", app.ID), vector, domain.SemanticRecord{
		UserEmail:     user.Email,
		ApplicationID: app.ID,
		Status:        string(domain.EventRejected),
		CompanyName:   app.CompanyName,
		RoleTitle:     app.RoleTitle,
		JobID:         app.ExternalJobID,
	})
	return nil
}

func (r *reconciler) applyOffer(ctx context.Context, user *domain.User, event *domain.EmailEvent, eventDate time.Time, matchedID uint, vector []float32, summary *RunSummary) error {
	app, err := r.resolveApplication(ctx, user, event, eventDate, matchedID, vector, summary)
	if err != nil {
		return err
	}

	offer := &domain.Offer{
		ApplicationID: app.ID,
		CompanyName:   app.CompanyName,
		RoleTitle:     app.RoleTitle,
		OfferDate:     eventDate,
		SalaryComp:    event.SalaryComp,
		Location:      event.Location,
	}
	if event.DeadlineToAccept != "" {
		if deadline, err := domain.ParseEventDate(event.DeadlineToAccept); err == nil {
			offer.DeadlineToAccept = &deadline
		} else {
			log.Debug().Str("raw", event.DeadlineToAccept).Msg("unparseable offer deadline, dropping")
		}
	}
	if err := r.appRepo.UpsertOffer(offer); err != nil {
		return fmt.Errorf("failed to upsert offer: %w", err)
	}
	summary.OffersUpserted++

	r.indexRecord(ctx, "offer", fmt.Sprintf("offer-%d", app.ID), vector, domain.SemanticRecord{
		UserEmail:     user.Email,
		ApplicationID: app.ID,
		Status:        string(domain.EventOffer),
		CompanyName:   app.CompanyName,
		RoleTitle:     app.RoleTitle,
		Location:      offer.Location,
		JobID:         app.ExternalJobID,
	})
	return nil
}

// resolveApplication loads the matched application, or creates one from the
// event when there is no match (emails can arrive out of order, so an
// interview or rejection may precede the application email it belongs to).
// A matched id that no longer resolves means the index was stale; fall back
// to creating.
func (r *reconciler) resolveApplication(ctx context.Context, user *domain.User, event *domain.EmailEvent, eventDate time.Time, matchedID uint, vector []float32, summary *RunSummary) (*domain.Application, error) {
	if matchedID != 0 {
		app, err := r.appRepo.FindByID(matchedID)
		if err != nil {
			return nil, fmt.Errorf("failed to load application %d: %w", matchedID, err)
		}
		if app != nil {
			summary.ApplicationsMatched++
			return app, nil
		}
		log.Warn().Uint("application_id", matchedID).Str("user", user.Email).
			Msg("matched application missing from database, creating new")
	}
	return r.createApplication(ctx, user, event, eventDate, vector, summary)
}

func (r *reconciler) createApplication(ctx context.Context, user *domain.User, event *domain.EmailEvent, eventDate time.Time, vector []float32, summary *RunSummary) (*domain.Application, error) {
	app := &domain.Application{
		UserEmail:       user.Email,
		CompanyName:     event.CompanyName,
		RoleTitle:       event.RoleTitle,
		ApplicationDate: eventDate,
		Location:        event.Location,
		ExternalJobID:   event.ExternalJobID,
	}
	if err := r.appRepo.Create(app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	summary.ApplicationsCreated++

	r.indexRecord(ctx, "application", fmt.Sprintf("application-%d", app.ID), vector, domain.SemanticRecord{
		UserEmail:     user.Email,
		ApplicationID: app.ID,
		Status:        string(domain.EventApplied),
		CompanyName:   app.CompanyName,
		RoleTitle:     app.RoleTitle,
		Location:      app.Location,
		JobID:         app.ExternalJobID,
	})
	return app, nil
}

func (r *reconciler) indexRecord(ctx context.Context, namespace, id string, vector []float32, record domain.SemanticRecord) {
	if len(vector) == 0 {
		return
	}
	if err := r.index.Upsert(ctx, namespace, id, vector, record); err != nil {
		log.Warn().Err(err).
			Str("namespace", namespace).
			Str("id", id).
			Msg("vector upsert failed, index will self-heal on next write")
	}
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
