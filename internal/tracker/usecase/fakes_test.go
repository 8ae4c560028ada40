package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobify-backend/internal/tracker/domain"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (r *fakeUserRepo) FindOrCreate(email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	u := &domain.User{Email: email, Provider: domain.ProviderGmail, SyncWatermark: time.Unix(0, 0).UTC()}
	r.users[email] = u
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*domain.User, error) {
	return r.users[email], nil
}

func (r *fakeUserRepo) ListAll() ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(user *domain.User) error {
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) AdvanceWatermark(email string, watermark time.Time) error {
	u, ok := r.users[email]
	if !ok {
		return nil
	}
	if u.SyncWatermark.After(watermark) {
		return nil
	}
	u.SyncWatermark = watermark
	u.FirstSyncDone = true
	return nil
}

// fakeAppRepo is an in-memory ApplicationRepository honoring the interface's
// upsert contracts.
type fakeAppRepo struct {
	nextID     uint
	apps       []*domain.Application
	rounds     []*domain.InterviewRound
	rejections []*domain.Rejection
	offers     []*domain.Offer

	createErr error
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{nextID: 1}
}

func (r *fakeAppRepo) Create(app *domain.Application) error {
	if r.createErr != nil {
		return r.createErr
	}
	app.ID = r.nextID
	r.nextID++
	r.apps = append(r.apps, app)
	return nil
}

func (r *fakeAppRepo) FindByID(id uint) (*domain.Application, error) {
	for _, app := range r.apps {
		if app.ID == id {
			return app, nil
		}
	}
	return nil, nil
}

func (r *fakeAppRepo) FindByUser(userEmail string) ([]*domain.Application, error) {
	var out []*domain.Application
	for _, app := range r.apps {
		if app.UserEmail == userEmail {
			out = append(out, app)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) UpsertInterviewRound(round *domain.InterviewRound) (bool, error) {
	for _, existing := range r.rounds {
		if existing.ApplicationID == round.ApplicationID &&
			strings.EqualFold(existing.RoundLabel, round.RoundLabel) {
			existing.InvitationDate = round.InvitationDate
			if round.InterviewLink != "" {
				existing.InterviewLink = round.InterviewLink
			}
			if round.DeadlineDate != nil {
				existing.DeadlineDate = round.DeadlineDate
			}
			*round = *existing
			return false, nil
		}
	}
	round.ID = uint(len(r.rounds) + 1)
	r.rounds = append(r.rounds, round)
	return true, nil
}

func (r *fakeAppRepo) FindInterviewsByUser(userEmail string) ([]*domain.InterviewRound, error) {
	var out []*domain.InterviewRound
	for _, round := range r.rounds {
		for _, app := range r.apps {
			if app.ID == round.ApplicationID && app.UserEmail == userEmail {
				out = append(out, round)
			}
		}
	}
	return out, nil
}

func (r *fakeAppRepo) UpsertRejection(rejection *domain.Rejection) error {
	for _, existing := range r.rejections {
		if existing.ApplicationID == rejection.ApplicationID {
			existing.CompanyName = rejection.CompanyName
			existing.RoleTitle = rejection.RoleTitle
			existing.RejectionDate = rejection.RejectionDate
			*rejection = *existing
			return nil
		}
	}
	r.rejections = append(r.rejections, rejection)
	return nil
}

func (r *fakeAppRepo) FindRejectionsByUser(userEmail string) ([]*domain.Rejection, error) {
	var out []*domain.Rejection
	for _, rejection := range r.rejections {
		for _, app := range r.apps {
			if app.ID == rejection.ApplicationID && app.UserEmail == userEmail {
				out = append(out, rejection)
			}
		}
	}
	return out, nil
}

func (r *fakeAppRepo) UpsertOffer(offer *domain.Offer) error {
	for _, existing := range r.offers {
		if existing.ApplicationID == offer.ApplicationID {
			if offer.Accepted == nil {
				offer.Accepted = existing.Accepted
			}
			existing.CompanyName = offer.CompanyName
			existing.RoleTitle = offer.RoleTitle
			existing.OfferDate = offer.OfferDate
			if offer.SalaryComp != "" {
				existing.SalaryComp = offer.SalaryComp
			}
			if offer.Location != "" {
				existing.Location = offer.Location
			}
			if offer.DeadlineToAccept != nil {
				existing.DeadlineToAccept = offer.DeadlineToAccept
			}
			existing.Accepted = offer.Accepted
			*offer = *existing
			return nil
		}
	}
	r.offers = append(r.offers, offer)
	return nil
}

func (r *fakeAppRepo) FindOffersByUser(userEmail string) ([]*domain.Offer, error) {
	var out []*domain.Offer
	for _, offer := range r.offers {
		for _, app := range r.apps {
			if app.ID == offer.ApplicationID && app.UserEmail == userEmail {
				out = append(out, offer)
			}
		}
	}
	return out, nil
}

// storedVector is one entry in the fake index, kept in insertion order.
type storedVector struct {
	id     string
	vector []float32
	record domain.SemanticRecord
}

// fakeIndex is an in-memory VectorIndex. Query ignores the vector and
// returns all records for the user in insertion order; match decisions are
// lexical, so that is enough for the tests.
type fakeIndex struct {
	namespaces map[string][]*storedVector
	queryErr   map[string]error
	queried    []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		namespaces: make(map[string][]*storedVector),
		queryErr:   make(map[string]error),
	}
}

func (f *fakeIndex) Upsert(ctx context.Context, namespace, id string, vector []float32, record domain.SemanticRecord) error {
	for _, sv := range f.namespaces[namespace] {
		if sv.id == id {
			sv.vector = vector
			sv.record = record
			return nil
		}
	}
	f.namespaces[namespace] = append(f.namespaces[namespace], &storedVector{id: id, vector: vector, record: record})
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, namespace string, vector []float32, userEmail string, topK int) ([]domain.SemanticMatch, error) {
	f.queried = append(f.queried, namespace)
	if err := f.queryErr[namespace]; err != nil {
		return nil, err
	}

	var matches []domain.SemanticMatch
	for i, sv := range f.namespaces[namespace] {
		if sv.record.UserEmail != userEmail {
			continue
		}
		matches = append(matches, domain.SemanticMatch{
			ID:     sv.id,
			Score:  0.9 - float64(i)*0.01,
			Record: sv.record,
		})
		if len(matches) == topK {
			break
		}
	}
	return matches, nil
}

func (f *fakeIndex) count(namespace string) int {
	return len(f.namespaces[namespace])
}

// fakeClassifier maps email text to a canned event via a classify func.
type fakeClassifier struct {
	classify func(text string) (*domain.EmailEvent, error)
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (*domain.EmailEvent, error) {
	return f.classify(text)
}

// fakeEmbedder returns a fixed vector, or fails when err is set.
type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// fakeSource serves a fixed batch of emails and records the requested window.
type fakeSource struct {
	emails []domain.InboundEmail
	err    error

	since time.Time
	until time.Time
}

func (f *fakeSource) Fetch(ctx context.Context, user *domain.User, since, until time.Time) ([]domain.InboundEmail, error) {
	f.since = since
	f.until = until
	if f.err != nil {
		return nil, f.err
	}
	return f.emails, nil
}

func testUser(email string) *domain.User {
	return &domain.User{
		Email:         email,
		Provider:      domain.ProviderGmail,
		SyncWatermark: time.Unix(0, 0).UTC(),
	}
}

func appliedEvent(company, role string) *domain.EmailEvent {
	return &domain.EmailEvent{
		CompanyName: company,
		RoleTitle:   role,
		EventDate:   "2026-03-01",
		EventType:   domain.EventApplied,
	}
}

var errBoom = fmt.Errorf("boom")
