package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobify-backend/internal/tracker/domain"
	"jobify-backend/internal/tracker/repository"
	"jobify-backend/pkg/mailtext"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// trackerUsecase wires the sync pipeline: fetch, classify, match, reconcile,
// then advance the watermark.
type trackerUsecase struct {
	userRepo   repository.UserRepository
	appRepo    repository.ApplicationRepository
	classifier Classifier
	embedder   Embedder
	matcher    *matcher
	reconciler *reconciler
	sources    map[string]EmailSource
}

func NewTrackerUsecase(
	userRepo repository.UserRepository,
	appRepo repository.ApplicationRepository,
	classifier Classifier,
	embedder Embedder,
	index VectorIndex,
	sources map[string]EmailSource,
) TrackerUsecase {
	return &trackerUsecase{
		userRepo:   userRepo,
		appRepo:    appRepo,
		classifier: classifier,
		embedder:   embedder,
		matcher:    newMatcher(index),
		reconciler: newReconciler(appRepo, index),
		sources:    sources,
	}
}

// SyncUser processes one inbox window for one user. The watermark candidate
// is captured before fetching, and only persisted after every email in the
// window has been attempted; a fatal error mid-run leaves the watermark
// untouched so the next run replays the window.
func (u *trackerUsecase) SyncUser(ctx context.Context, userEmail string) (*RunSummary, error) {
	// First observation of an address creates the row lazily with an epoch
	// watermark, so the first run scans full history.
	user, err := u.userRepo.FindOrCreate(userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userEmail, err)
	}

	source, ok := u.sources[user.Provider]
	if !ok {
		return nil, fmt.Errorf("no email source for provider %q", user.Provider)
	}

	summary := &RunSummary{
		RunID:     uuid.NewString(),
		UserEmail: user.Email,
		Watermark: time.Now().UTC(),
	}
	runLog := log.With().Str("run_id", summary.RunID).Str("user", user.Email).Logger()

	since := user.SyncWatermark
	emails, err := source.Fetch(ctx, user, since, summary.Watermark)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch emails: %w", err)
	}
	summary.EmailsFetched = len(emails)
	runLog.Info().Int("emails", len(emails)).Time("since", since).Msg("sync run started")

	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := u.processEmail(ctx, user, email, summary, runLog); err != nil {
			return nil, err
		}
	}

	if err := u.userRepo.AdvanceWatermark(user.Email, summary.Watermark); err != nil {
		return nil, fmt.Errorf("failed to advance watermark: %w", err)
	}

	runLog.Info().
		Int("fetched", summary.EmailsFetched).
		Int("skipped", summary.EmailsSkipped).
		Int("not_job_related", summary.NotJobRelated).
		Int("applications_created", summary.ApplicationsCreated).
		Int("applications_matched", summary.ApplicationsMatched).
		Int("interviews", summary.InterviewsUpserted).
		Int("rejections", summary.RejectionsUpserted).
		Int("offers", summary.OffersUpserted).
		Time("watermark", summary.Watermark).
		Msg("sync run finished")
	return summary, nil
}

// processEmail handles one email. Extraction problems (classifier errors,
// invalid events, unparseable dates, embedding failures) skip the email;
// database write failures are returned and abort the run.
func (u *trackerUsecase) processEmail(ctx context.Context, user *domain.User, email domain.InboundEmail, summary *RunSummary, runLog zerolog.Logger) error {
	text := mailtext.Combine(email.Subject, email.Body)

	event, err := u.classifier.Classify(ctx, text)
	if err != nil {
		runLog.Warn().Err(err).Str("email_id", email.ID).Msg("classification failed, skipping email")
		summary.EmailsSkipped++
		return nil
	}
	if event == nil {
		summary.NotJobRelated++
		return nil
	}

	if err := event.Validate(); err != nil {
		runLog.Warn().Err(err).Str("email_id", email.ID).Msg("invalid event, skipping email")
		summary.EmailsSkipped++
		return nil
	}
	eventDate, err := domain.ParseEventDate(event.EventDate)
	if err != nil {
		runLog.Warn().Err(err).Str("email_id", email.ID).Msg("unparseable event date, skipping email")
		summary.EmailsSkipped++
		return nil
	}

	// One embedding per email, shared by the match query and every index
	// write the event triggers.
	vector, err := u.embedder.Embed(ctx, queryText(event))
	if err != nil {
		runLog.Warn().Err(err).Str("email_id", email.ID).Msg("embedding failed, skipping email")
		summary.EmailsSkipped++
		return nil
	}

	matchedID, matched := u.matcher.Match(ctx, user.Email, event, vector)
	if matched {
		runLog.Debug().Str("email_id", email.ID).Uint("application_id", matchedID).
			Str("status", string(event.EventType)).Msg("event matched existing application")
	}

	if err := u.reconciler.Apply(ctx, user, event, eventDate, matchedID, vector, summary); err != nil {
		return fmt.Errorf("failed to reconcile email %s: %w", email.ID, err)
	}
	return nil
}

// queryText builds the string whose embedding represents an event for
// matching and indexing.
func queryText(event *domain.EmailEvent) string {
	parts := []string{event.CompanyName, event.RoleTitle}
	if event.RoundLabel != "" {
		parts = append(parts, event.RoundLabel)
	}
	return strings.Join(parts, " ")
}
