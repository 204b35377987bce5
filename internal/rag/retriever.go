package rag

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nhdandz/ResearchRover/internal/embedding"
	"github.com/nhdandz/ResearchRover/internal/vector"
	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// VectorRetriever retrieves documents by embedding the query and
// searching the vector index, merging hits across collections by
// similarity. An unreachable index degrades to an empty result, never
// an error: the query path must not crash on retrieval problems.
type VectorRetriever struct {
	vectors    vector.Store
	model      embedding.Embedding
	translator *Translator
	log        *logger.Logger
}

var _ Retriever = (*VectorRetriever)(nil)

// NewVectorRetriever creates a retriever. translator may be nil to
// disable query translation.
func NewVectorRetriever(vectors vector.Store, model embedding.Embedding, translator *Translator) *VectorRetriever {
	return &VectorRetriever{
		vectors:    vectors,
		model:      model,
		translator: translator,
		log:        logger.New("retriever", ""),
	}
}

// Retrieve returns up to topK documents merged across collections.
// Non-English queries are translated first; translation failure falls
// back to the original query.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, topK int, filters map[string]interface{}, collections []string) ([]RetrievedDocument, error) {
	searchQuery := query
	if r.translator != nil && !IsEnglish(query) {
		translated, err := r.translator.TranslateToEnglish(ctx, query)
		if err != nil {
			r.log.WithError(err).Warn("query translation failed, using original query")
		} else {
			searchQuery = translated
		}
	}

	queryVector, err := r.model.Embed(ctx, searchQuery)
	if err != nil {
		r.log.WithError(err).Error("query embedding failed, returning no results")
		return nil, nil
	}

	// Collections are searched concurrently. A failed collection is
	// logged and contributes nothing; the others still answer.
	perCollection := make([][]vector.SearchHit, len(collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, collection := range collections {
		g.Go(func() error {
			hits, err := r.vectors.Search(gctx, collection, queryVector, topK, filters)
			if err != nil {
				r.log.WithError(err).WithPayload(map[string]interface{}{
					"collection": collection,
				}).Error("vector search failed, skipping collection")
				return nil
			}
			perCollection[i] = hits
			return nil
		})
	}
	_ = g.Wait()

	var merged []RetrievedDocument
	for _, hits := range perCollection {
		for _, hit := range hits {
			merged = append(merged, hitToDocument(hit))
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged, nil
}

func hitToDocument(hit vector.SearchHit) RetrievedDocument {
	doc := RetrievedDocument{
		ID:    hit.ID,
		Score: float64(hit.Score),
	}
	if v, ok := hit.Payload[vector.FieldDocumentID].(string); ok && v != "" {
		doc.ID = v
	}
	if v, ok := hit.Payload[vector.FieldSourceType].(string); ok {
		doc.SourceType = v
	}
	if v, ok := hit.Payload[vector.FieldTitle].(string); ok {
		doc.Title = v
	}
	if v, ok := hit.Payload[vector.FieldURL].(string); ok {
		doc.URL = v
	}
	if v, ok := hit.Payload[vector.FieldContent].(string); ok {
		doc.Content = v
	}
	return doc
}
