// Package chroma adapts Chroma Cloud as the pipeline's vector index.
package chroma

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"jobify-backend/internal/tracker/domain"
	"jobify-backend/pkg/config"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Client stores SemanticRecords in one collection per namespace
// (application, interview, offer, rejected). The index is advisory: a
// circuit breaker fails calls fast when Chroma is down so the pipeline
// degrades to "no match" instead of stalling on timeouts.
type Client struct {
	client chroma.Client
	cb     *gobreaker.CircuitBreaker

	mu          sync.Mutex
	collections map[string]chroma.Collection
}

const collectionPrefix = "jobify-"

func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.ChromaAPIKey == "" {
		return nil, fmt.Errorf("CHROMA_API_KEY is required")
	}

	var client chroma.Client
	var err error
	if cfg.ChromaDatabase != "" && cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithDatabaseAndTenant(cfg.ChromaDatabase, cfg.ChromaTenant),
		)
	} else if cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithTenant(cfg.ChromaTenant),
		)
	} else {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}

	cbSettings := gobreaker.Settings{
		Name:    "chroma",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).
				Msg("vector index breaker state change")
		},
	}

	return &Client{
		client:      client,
		cb:          gobreaker.NewCircuitBreaker(cbSettings),
		collections: make(map[string]chroma.Collection),
	}, nil
}

func (c *Client) collection(ctx context.Context, namespace string) (chroma.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if col, ok := c.collections[namespace]; ok {
		return col, nil
	}
	col, err := c.client.GetOrCreateCollection(ctx, collectionPrefix+namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %q: %w", namespace, err)
	}
	c.collections[namespace] = col
	return col, nil
}

// Upsert writes a SemanticRecord under the given namespace. The caller
// supplies the vector; embeddings are computed once per email upstream.
func (c *Client) Upsert(ctx context.Context, namespace, id string, vector []float32, record domain.SemanticRecord) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		col, err := c.collection(ctx, namespace)
		if err != nil {
			return nil, err
		}

		metadata, err := chroma.NewDocumentMetadataFromMap(recordToMap(record))
		if err != nil {
			return nil, fmt.Errorf("failed to create metadata: %w", err)
		}

		err = col.Upsert(
			ctx,
			chroma.WithIDs(chroma.DocumentID(id)),
			chroma.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
			chroma.WithMetadatas(metadata),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert vector: %w", err)
		}
		return nil, nil
	})
	return err
}

// Query returns up to topK nearest records in a namespace, filtered to the
// requesting user. Scores are advisory; callers re-score lexically.
func (c *Client) Query(ctx context.Context, namespace string, vector []float32, userEmail string, topK int) ([]domain.SemanticMatch, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		col, err := c.collection(ctx, namespace)
		if err != nil {
			return nil, err
		}

		res, err := col.Query(
			ctx,
			chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
			chroma.WithNResults(topK),
			chroma.WithWhereQuery(chroma.EqString("user_email", userEmail)),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query collection %q: %w", namespace, err)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	res := result.(chroma.QueryResult)
	if res == nil || res.CountGroups() == 0 {
		return nil, nil
	}

	idGroups := res.GetIDGroups()
	metadataGroups := res.GetMetadatasGroups()
	distanceGroups := res.GetDistancesGroups()
	if len(idGroups) == 0 || len(idGroups[0]) == 0 {
		return nil, nil
	}

	matches := make([]domain.SemanticMatch, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		match := domain.SemanticMatch{ID: string(id)}
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			// Distances are smaller-is-closer; invert into a rough score.
			match.Score = 1.0 / (1.0 + float64(distanceGroups[0][i]))
		}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			match.Record = recordFromMetadata(metadataGroups[0][i])
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func recordToMap(record domain.SemanticRecord) map[string]interface{} {
	// Null-like values are omitted entirely; the index rejects nils.
	m := map[string]interface{}{
		"user_email":     record.UserEmail,
		"application_id": strconv.FormatUint(uint64(record.ApplicationID), 10),
		"status":         record.Status,
		"company_name":   record.CompanyName,
		"role_title":     record.RoleTitle,
	}
	if record.InterviewRound != "" {
		m["interview_round"] = record.InterviewRound
	}
	if record.Location != "" {
		m["location"] = record.Location
	}
	if record.JobID != "" {
		m["job_id"] = record.JobID
	}
	return m
}

func recordFromMetadata(md chroma.DocumentMetadata) domain.SemanticRecord {
	record := domain.SemanticRecord{}
	if md == nil {
		return record
	}
	if v, ok := md.GetString("user_email"); ok {
		record.UserEmail = v
	}
	if v, ok := md.GetString("application_id"); ok {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			record.ApplicationID = uint(id)
		}
	}
	if v, ok := md.GetString("status"); ok {
		record.Status = v
	}
	if v, ok := md.GetString("company_name"); ok {
		record.CompanyName = v
	}
	if v, ok := md.GetString("role_title"); ok {
		record.RoleTitle = v
	}
	if v, ok := md.GetString("interview_round"); ok {
		record.InterviewRound = v
	}
	if v, ok := md.GetString("location"); ok {
		record.Location = v
	}
	if v, ok := md.GetString("job_id"); ok {
		record.JobID = v
	}
	return record
}
