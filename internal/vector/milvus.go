package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// Schema fields shared by all collections.
const (
	FieldID         = "id"
	FieldEmbedding  = "embedding"
	FieldUserID     = "user_id"
	FieldDocumentID = "document_id"
	FieldChunkIndex = "chunk_index"
	FieldTitle      = "title"
	FieldContent    = "content"
	FieldSourceType = "source_type"
	FieldFilePath   = "file_path"
	FieldURL        = "url"
)

var payloadStringFields = []string{
	FieldUserID, FieldDocumentID, FieldTitle, FieldContent,
	FieldSourceType, FieldFilePath, FieldURL,
}

// MilvusStore implements Store on a Milvus index. All collections use
// the same denormalized schema and a cosine-metric HNSW index, so
// search scores are similarities in [-1, 1] with higher meaning more
// relevant.
type MilvusStore struct {
	client client.Client
	dim    int
	log    *logger.Logger
}

var _ Store = (*MilvusStore)(nil)

// NewMilvusStore creates a MilvusStore for embeddings of the given
// dimension.
func NewMilvusStore(c client.Client, dim int) (*MilvusStore, error) {
	if c == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	return &MilvusStore{client: c, dim: dim, log: logger.New("vectorstore", "")}, nil
}

// EnsureCollection creates the collection and its index if they do not
// exist, then loads the collection for searching.
func (s *MilvusStore) EnsureCollection(ctx context.Context, collection string) error {
	exists, err := s.client.HasCollection(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection '%s': %w", collection, err)
	}

	if !exists {
		schema := entity.NewSchema().WithName(collection).
			WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim))).
			WithField(entity.NewField().WithName(FieldUserID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(FieldDocumentID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(FieldChunkIndex).WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(FieldTitle).WithDataType(entity.FieldTypeVarChar).WithMaxLength(1024)).
			WithField(entity.NewField().WithName(FieldContent).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName(FieldSourceType).WithDataType(entity.FieldTypeVarChar).WithMaxLength(32)).
			WithField(entity.NewField().WithName(FieldFilePath).WithDataType(entity.FieldTypeVarChar).WithMaxLength(1024)).
			WithField(entity.NewField().WithName(FieldURL).WithDataType(entity.FieldTypeVarChar).WithMaxLength(2048))

		if err := s.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection '%s': %w", collection, err)
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 96)
		if err != nil {
			return fmt.Errorf("failed to build index: %w", err)
		}
		if err := s.client.CreateIndex(ctx, collection, FieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("failed to create index for '%s': %w", collection, err)
		}
	}

	if err := s.client.LoadCollection(ctx, collection, false); err != nil {
		return fmt.Errorf("failed to load collection '%s': %w", collection, err)
	}
	return nil
}

// Upsert writes points, overwriting points with the same ID.
func (s *MilvusStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	ids := make([]string, len(points))
	vectors := make([][]float32, len(points))
	chunkIndexes := make([]int64, len(points))
	stringCols := make(map[string][]string, len(payloadStringFields))
	for _, field := range payloadStringFields {
		stringCols[field] = make([]string, len(points))
	}

	for i, p := range points {
		ids[i] = p.ID
		vectors[i] = p.Vector
		chunkIndexes[i] = payloadInt64(p.Payload, FieldChunkIndex)
		for _, field := range payloadStringFields {
			if v, ok := p.Payload[field].(string); ok {
				stringCols[field][i] = v
			}
		}
	}

	columns := []entity.Column{
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnFloatVector(FieldEmbedding, s.dim, vectors),
		entity.NewColumnInt64(FieldChunkIndex, chunkIndexes),
	}
	for _, field := range payloadStringFields {
		columns = append(columns, entity.NewColumnVarChar(field, stringCols[field]))
	}

	if _, err := s.client.Upsert(ctx, collection, "", columns...); err != nil {
		return fmt.Errorf("failed to upsert into '%s': %w", collection, err)
	}

	s.log.WithPayload(map[string]interface{}{
		"collection": collection,
		"points":     len(points),
	}).Debug("upserted points")
	return nil
}

// Delete removes points by ID.
func (s *MilvusStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	expr := fmt.Sprintf("%s in [%s]", FieldID, strings.Join(quoted, ", "))
	if err := s.client.Delete(ctx, collection, "", expr); err != nil {
		return fmt.Errorf("failed to delete from '%s': %w", collection, err)
	}
	return nil
}

// Search returns the topK most similar points.
func (s *MilvusStore) Search(ctx context.Context, collection string, vector []float32, topK int, filters map[string]interface{}) ([]SearchHit, error) {
	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	outputFields := append([]string{FieldID, FieldChunkIndex}, payloadStringFields...)
	results, err := s.client.Search(
		ctx, collection, nil, buildFilterExpression(filters), outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding, entity.COSINE, topK, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search '%s': %w", collection, err)
	}

	var hits []SearchHit
	for _, res := range results {
		columns := make(map[string]entity.Column, len(res.Fields))
		for _, field := range res.Fields {
			columns[field.Name()] = field
		}

		idCol, ok := columns[FieldID].(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("search result is missing the id column, skipping")
			continue
		}
		idData := idCol.Data()

		for i := 0; i < res.ResultCount; i++ {
			payload := make(map[string]interface{})
			for _, field := range payloadStringFields {
				if col, ok := columns[field].(*entity.ColumnVarChar); ok && i < len(col.Data()) {
					payload[field] = col.Data()[i]
				}
			}
			if col, ok := columns[FieldChunkIndex].(*entity.ColumnInt64); ok && i < len(col.Data()) {
				payload[FieldChunkIndex] = col.Data()[i]
			}
			hits = append(hits, SearchHit{ID: idData[i], Score: res.Scores[i], Payload: payload})
		}
	}

	return hits, nil
}

// buildFilterExpression renders exact-match payload conditions as a
// Milvus boolean expression.
func buildFilterExpression(filters map[string]interface{}) string {
	if len(filters) == 0 {
		return ""
	}
	var conditions []string
	for key, value := range filters {
		if v, ok := value.(string); ok {
			conditions = append(conditions, fmt.Sprintf(`%s == %q`, key, v))
		}
	}
	return strings.Join(conditions, " and ")
}

func payloadInt64(payload map[string]interface{}, key string) int64 {
	switch v := payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
