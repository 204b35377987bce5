package rag

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/nhdandz/ResearchRover/internal/llm"
	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// translationTTL bounds how long a cached translation lives.
const translationTTL = 24 * time.Hour

const translatePrompt = `Translate the following search query to English. Return only the translated query, nothing else.

Query: %s`

// Translator translates non-English queries to English before
// retrieval, caching results in Redis keyed by the query hash.
type Translator struct {
	model llm.LLM
	cache *redis.Client
	log   *logger.Logger
}

// NewTranslator creates a Translator. cache may be nil to disable
// caching.
func NewTranslator(model llm.LLM, cache *redis.Client) *Translator {
	return &Translator{
		model: model,
		cache: cache,
		log:   logger.New("translator", ""),
	}
}

// TranslateToEnglish returns the English form of query.
func (t *Translator) TranslateToEnglish(ctx context.Context, query string) (string, error) {
	key := translationKey(query)

	if t.cache != nil {
		if cached, err := t.cache.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	translated, err := t.model.Generate(ctx, fmt.Sprintf(translatePrompt, query), llm.Options{
		MaxTokens:   256,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		return "", fmt.Errorf("translation returned empty text")
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, key, translated, translationTTL).Err(); err != nil {
			t.log.WithError(err).Warn("failed to cache translation")
		}
	}

	return translated, nil
}

func translationKey(query string) string {
	sum := sha1.Sum([]byte(query))
	return "translate:" + hex.EncodeToString(sum[:])
}
