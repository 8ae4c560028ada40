package usecase

import (
	"context"

	"jobify-backend/internal/tracker/domain"
	"jobify-backend/pkg/similarity"

	"github.com/rs/zerolog/log"
)

const matchTopK = 5

// scoreEpsilon guards the threshold comparison against float drift so a
// combined score of exactly 0.70 always passes.
const scoreEpsilon = 1e-9

// searchOrder lists the namespaces to probe per event type, nearest lifecycle
// stage first. Applied events probe only the application namespace, which
// catches a confirmation arriving after an out-of-order interview or
// rejection already created the pursuit.
var searchOrder = map[domain.EventType][]string{
	domain.EventApplied:   {"application"},
	domain.EventInterview: {"interview", "application"},
	domain.EventRejected:  {"application"},
	domain.EventOffer:     {"offer", "interview", "application"},
}

// matcher resolves an email event to an existing application, or reports no
// match so the caller creates one.
type matcher struct {
	index VectorIndex
}

func newMatcher(index VectorIndex) *matcher {
	return &matcher{index: index}
}

// Match returns the best existing application for an event, given the query
// vector computed from the event's company, role, and round. The vector only
// shortlists candidates; the decision is the lexical score over company and
// role names, gated at the match threshold. Index failures degrade to
// searching the remaining namespaces and finally to no match.
func (m *matcher) Match(ctx context.Context, userEmail string, event *domain.EmailEvent, vector []float32) (uint, bool) {
	for _, namespace := range searchOrder[event.EventType] {
		matches, err := m.index.Query(ctx, namespace, vector, userEmail, matchTopK)
		if err != nil {
			log.Warn().Err(err).
				Str("user", userEmail).
				Str("namespace", namespace).
				Msg("vector query failed, trying next namespace")
			continue
		}

		if id, ok := m.pickBest(userEmail, event, matches); ok {
			return id, true
		}
	}
	return 0, false
}

// pickBest re-scores candidates lexically and returns the winner, breaking
// score ties toward the larger (more recent) application id.
func (m *matcher) pickBest(userEmail string, event *domain.EmailEvent, matches []domain.SemanticMatch) (uint, bool) {
	var (
		bestID    uint
		bestScore float64
		found     bool
	)
	for _, match := range matches {
		record := match.Record
		if record.UserEmail != userEmail || record.ApplicationID == 0 {
			continue
		}

		score := similarity.Combined(
			event.CompanyName, record.CompanyName,
			event.RoleTitle, record.RoleTitle,
		)
		if score < similarity.MatchThreshold-scoreEpsilon {
			continue
		}

		if !found || score > bestScore ||
			(score == bestScore && record.ApplicationID > bestID) {
			bestID = record.ApplicationID
			bestScore = score
			found = true
		}
	}
	return bestID, found
}
