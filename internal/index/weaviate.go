package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	wmodels "github.com/weaviate/weaviate/entities/models"

	"github.com/proctoriq/proctoriq/internal/config"
	"github.com/proctoriq/proctoriq/internal/models"
)

// WeaviateIndex implements Index against a Weaviate instance. One object per
// text chunk, typed by docType so submission chunks can be filtered from
// anything else sharing the class.
type WeaviateIndex struct {
	client *weaviate.Client
	class  string
}

// NewWeaviate connects to the configured instance and makes sure the chunk
// class exists. Connection problems surface here, not at query time.
func NewWeaviate(ctx context.Context, cfg *config.Config) (*WeaviateIndex, error) {
	wcfg := weaviate.Config{
		Host:   cfg.WeaviateHost,
		Scheme: cfg.WeaviateScheme,
	}
	if cfg.WeaviateAPIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.WeaviateAPIKey}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	idx := &WeaviateIndex{client: client, class: cfg.IndexClass}
	if err := idx.ensureSchema(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("host", cfg.WeaviateHost).Str("class", cfg.IndexClass).Msg("Semantic index connected")
	return idx, nil
}

func (w *WeaviateIndex) ensureSchema(ctx context.Context) error {
	exists, err := w.client.Schema().ClassExistenceChecker().WithClassName(w.class).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check index schema: %w", err)
	}
	if exists {
		return nil
	}

	class := &wmodels.Class{
		Class:       w.class,
		Description: "One chunk of an indexed submission",
		Properties: []*wmodels.Property{
			{Name: "content", DataType: []string{"text"}, Description: "Chunk text"},
			{Name: "submissionId", DataType: []string{"text"}, Description: "Owning submission"},
			{Name: "studentName", DataType: []string{"text"}},
			{Name: "filename", DataType: []string{"text"}},
			{Name: "docType", DataType: []string{"text"}, Description: "Document class, e.g. submission"},
		},
	}

	if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		// another writer may have raced us
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("failed to create index class %s: %w", w.class, err)
	}
	return nil
}

// Query returns the top-k neighbor chunks for text, filtered to submission
// documents.
func (w *WeaviateIndex) Query(ctx context.Context, text string, k int) ([]Neighbor, error) {
	where := filters.Where().
		WithPath([]string{"docType"}).
		WithOperator(filters.Equal).
		WithValueString("submission")

	nearText := w.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{text})

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "submissionId"},
		{Name: "studentName"},
		{Name: "filename"},
		{Name: "_additional { certainty }"},
	}

	result, err := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithFields(fields...).
		WithWhere(where).
		WithNearText(nearText).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("index query failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("index query failed: %s", result.Errors[0].Message)
	}

	return w.parseNeighbors(result.Data), nil
}

func (w *WeaviateIndex) parseNeighbors(data map[string]wmodels.JSONObject) []Neighbor {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	objects, ok := get[w.class].([]interface{})
	if !ok {
		return nil
	}

	neighbors := make([]Neighbor, 0, len(objects))
	for _, obj := range objects {
		props, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}
		n := Neighbor{
			Content:      stringProp(props, "content"),
			SubmissionID: stringProp(props, "submissionId"),
			Student:      stringProp(props, "studentName"),
			Filename:     stringProp(props, "filename"),
		}
		if add, ok := props["_additional"].(map[string]interface{}); ok {
			if c, ok := add["certainty"].(float64); ok {
				n.Certainty = c
			}
		}
		neighbors = append(neighbors, n)
	}
	return neighbors
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

// Upsert stores one object per chunk of the submission's combined text.
func (w *WeaviateIndex) Upsert(ctx context.Context, sub models.Submission) error {
	chunks := chunkText(sub.CombinedText())
	if len(chunks) == 0 {
		return nil
	}

	filename := ""
	if len(sub.Files) > 0 {
		filename = sub.Files[0].Name
	}

	for i, chunk := range chunks {
		props := map[string]interface{}{
			"content":      chunk,
			"submissionId": sub.ID,
			"studentName":  sub.Student,
			"filename":     filename,
			"docType":      "submission",
		}
		_, err := w.client.Data().Creator().
			WithClassName(w.class).
			WithProperties(props).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to index chunk %d/%d of %s: %w", i+1, len(chunks), sub.ID, err)
		}
	}

	log.Info().Str("submissionId", sub.ID).Int("chunks", len(chunks)).Msg("Submission indexed")
	return nil
}

var _ Index = (*WeaviateIndex)(nil)
