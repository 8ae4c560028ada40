package usecase

import (
	"context"
	"testing"
	"time"

	"jobify-backend/internal/tracker/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVector = []float32{0.1, 0.2, 0.3}

func testDate(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

func TestAppliedCreatesApplication(t *testing.T) {
	appRepo := newFakeAppRepo()
	index := newFakeIndex()
	r := newReconciler(appRepo, index)
	summary := &RunSummary{}

	event := appliedEvent("Acme", "Software Engineer")
	event.Location = "Remote"
	event.ExternalJobID = "REQ-42"
	err := r.Apply(context.Background(), testUser("u@example.com"), event, testDate(1), 0, testVector, summary)
	require.NoError(t, err)

	require.Len(t, appRepo.apps, 1)
	app := appRepo.apps[0]
	assert.Equal(t, "u@example.com", app.UserEmail)
	assert.Equal(t, "Acme", app.CompanyName)
	assert.Equal(t, "Software Engineer", app.RoleTitle)
	assert.Equal(t, testDate(1), app.ApplicationDate)
	assert.Equal(t, "Remote", app.Location)
	assert.Equal(t, "REQ-42", app.ExternalJobID)
	assert.Equal(t, 1, summary.ApplicationsCreated)

	// Mirrored into the application namespace under a deterministic id
	require.Equal(t, 1, index.count("application"))
	assert.Equal(t, "application-1", index.namespaces["application"][0].id)
	assert.Equal(t, app.ID, index.namespaces["application"][0].record.ApplicationID)
}

func TestAppliedMatchedIsNoop(t *testing.T) {
	appRepo := newFakeAppRepo()
	index := newFakeIndex()
	r := newReconciler(appRepo, index)
	summary := &RunSummary{}

	err := r.Apply(context.Background(), testUser("u@example.com"), appliedEvent("Acme", "SWE"), testDate(1), 7, testVector, summary)
	require.NoError(t, err)

	assert.Empty(t, appRepo.apps)
	assert.Equal(t, 0, index.count("application"))
	assert.Equal(t, 1, summary.ApplicationsMatched)
}

func TestInterviewCreatesFallbackApplication(t *testing.T) {
	appRepo := newFakeAppRepo()
	index := newFakeIndex()
	r := newReconciler(appRepo, index)
	summary := &RunSummary{}

	event := &domain.EmailEvent{
		CompanyName: "Acme", RoleTitle: "SWE",
		EventDate: "2026-03-05", EventType: domain.EventInterview,
		RoundLabel: "OA",
	}
	err := r.Apply(context.Background(), testUser("u@example.com"), event, testDate(5), 0, testVector, summary)
	require.NoError(t, err)

	// The interview arrived before its application email: both rows exist
	require.Len(t, appRepo.apps, 1)
	require.Len(t, appRepo.rounds, 1)
	round := appRepo.rounds[0]
	assert.Equal(t, appRepo.apps[0].ID, round.ApplicationID)
	assert.Equal(t, "OA", round.RoundLabel)
	assert.Equal(t, testDate(5), round.InvitationDate)

	assert.Equal(t, 1, index.count("application"))
	require.Equal(t, 1, index.count("interview"))
	assert.Equal(t, "interview-1-oa", index.namespaces["interview"][0].id)
	assert.Equal(t, 1, summary.ApplicationsCreated)
	assert.Equal(t, 1, summary.InterviewsUpserted)
}

func TestInterviewRoundUpsertIsIdempotent(t *testing.T) {
	appRepo := newFakeAppRepo()
	index := newFakeIndex()
	r := newReconciler(appRepo, index)
	summary := &RunSummary{}

	app := &domain.Application{UserEmail: "u@example.com", CompanyName: "Acme", RoleTitle: "SWE"}
	require.NoError(t, appRepo.Create(app))

	makeEvent := func(label string) *domain.EmailEvent {
		return &domain.EmailEvent{
			CompanyName: "Acme", RoleTitle: "SWE",
			EventDate: "2026-03-05", EventType: domain.EventInterview,
			RoundLabel: label,
		}
	}

	require.NoError(t, r.Apply(context.Background(), testUser("u@example.com"), makeEvent("Round 1"), testDate(5), app.ID, testVector, summary))
	// Rescheduled: same round, different casing, new date
	require.NoError(t, r.Apply(context.Background(), testUser("u@example.com"), makeEvent("round 1"), testDate(9), app.ID, testVector, summary))

	require.Len(t, appRepo.rounds, 1)
	assert.Equal(t, testDate(9), appRepo.rounds[0].InvitationDate)
	// Overwrite does not add a second interview record
	assert.Equal(t, 1, index.count("interview"))
}

func TestInterviewWithoutRoundLabelDefaults(t *testing.T) {
	appRepo := newFakeAppRepo()
	r := newReconciler(appRepo, newFakeIndex())
	summary := &RunSummary{}

	app := &domain.Application{UserEmail: "u@example.com", CompanyName: "Acme", RoleTitle: "SWE"}
	require.NoError(t, appRepo.Create(app))

	event := &domain.EmailEvent{
		CompanyName: "Acme", RoleTitle: "SWE",
		EventDate: "2026-03-05", EventType: domain.EventInterview,
	}
	require.NoError(t, r.Apply(context.Background(), testUser("u@example.com"), event, testDate(5), app.ID, testVector, summary))

	require.Len(t, appRepo.rounds, 1)
	assert.Equal(t, "Interview", appRepo.rounds[0].RoundLabel)
}

func TestRejectionLastWriteWins(t *testing.T) {
	appRepo := newFakeAppRepo()
	index := newFakeIndex()
	r := newReconciler(appRepo, index)
	summary := &RunSummary{}

	app := &domain.Application{UserEmail: "u@example.com", CompanyName: "Acme", RoleTitle: "SWE"}
	require.NoError(t, appRepo.Create(app))

	event := &domain.EmailEvent{
		CompanyName: "Acme", RoleTitle: "SWE",
		EventDate: "2026-03-10", EventType: domain.EventRejected,
	}
	require.NoError(t, r.Apply(context.Background(), testUser("u@example.com"), event, testDate(10), app.ID, testVector, summary))
	require.NoError(t, r.Apply(context.Background(), testUser("u@example.com"), event, testDate(12), app.ID, testVector, summary))

	require.Len(t, appRepo.rejections, 1)
	assert.Equal(t, testDate(12), appRepo.rejections[0].RejectionDate)
	// Snapshot comes from the application, not the raw event
	assert.Equal(t, "Acme", appRepo.rejections[0].CompanyName)
	assert.Equal(t, 1, index.count("rejected"))
	assert.Equal(t, 2, summary.RejectionsUpserted)
}

func TestOfferUpsertPreservesAccepted(t *testing.T) {
	appRepo := newFakeAppRepo()
	r := newReconciler(appRepo, newFakeIndex())
	summary := &RunSummary{}

	app := &domain.Application{UserEmail: "u@example.com", CompanyName: "Acme", RoleTitle: "SWE"}
	require.NoError(t, appRepo.Create(app))

	accepted := true
	require.NoError(t, appRepo.UpsertOffer(&domain.Offer{
		ApplicationID: app.ID, CompanyName: "Acme", RoleTitle: "SWE",
		OfferDate: testDate(10), SalaryComp: "$150k", Accepted: &accepted,
	}))

	// A follow-up offer email carries no accept/decline signal
	event := &domain.EmailEvent{
		CompanyName: "Acme", RoleTitle: "SWE",
		EventDate: "2026-03-15", EventType: domain.EventOffer,
		DeadlineToAccept: "2026-03-30",
	}
	require.NoError(t, r.Apply(context.Background(), testUser("u@example.com"), event, testDate(15), app.ID, testVector, summary))

	require.Len(t, appRepo.offers, 1)
	offer := appRepo.offers[0]
	require.NotNil(t, offer.Accepted)
	assert.True(t, *offer.Accepted)
	assert.Equal(t, testDate(15), offer.OfferDate)
	assert.Equal(t, "$150k", offer.SalaryComp)
	require.NotNil(t, offer.DeadlineToAccept)
	assert.Equal(t, testDate(30), *offer.DeadlineToAccept)
}

func TestStaleMatchFallsBackToCreate(t *testing.T) {
	appRepo := newFakeAppRepo()
	index := newFakeIndex()
	r := newReconciler(appRepo, index)
	summary := &RunSummary{}

	event := &domain.EmailEvent{
		CompanyName: "Acme", RoleTitle: "SWE",
		EventDate: "2026-03-10", EventType: domain.EventRejected,
	}
	// Index said 99, but that row never existed
	err := r.Apply(context.Background(), testUser("u@example.com"), event, testDate(10), 99, testVector, summary)
	require.NoError(t, err)

	require.Len(t, appRepo.apps, 1)
	require.Len(t, appRepo.rejections, 1)
	assert.Equal(t, appRepo.apps[0].ID, appRepo.rejections[0].ApplicationID)
	assert.Equal(t, 1, summary.ApplicationsCreated)
	assert.Equal(t, 0, summary.ApplicationsMatched)
}

func TestRelationalFailureIsFatal(t *testing.T) {
	appRepo := newFakeAppRepo()
	appRepo.createErr = errBoom
	r := newReconciler(appRepo, newFakeIndex())

	err := r.Apply(context.Background(), testUser("u@example.com"), appliedEvent("Acme", "SWE"), testDate(1), 0, testVector, &RunSummary{})
	assert.Error(t, err)
}
