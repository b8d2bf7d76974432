package service

import (
	"context"

	"empathy-engine/backend/ai"
	"empathy-engine/backend/internal/emotion"
	"empathy-engine/backend/pkg/cache"
	"empathy-engine/backend/pkg/config"
	"empathy-engine/backend/pkg/logger"
	"empathy-engine/backend/pkg/resilience"
)

// ClassifierService produces an emotion vector for every message text. It
// prefers the model endpoint, memoizes model results per text, and falls
// back to rule-based classification whenever the model is unavailable, so
// Classify never fails.
type ClassifierService struct {
	model        *ai.Classifier
	breaker      *resilience.CircuitBreaker
	memo         *cache.Cache
	cacheEnabled bool
	log          *logger.Logger
}

// NewClassifierService creates a classifier service with a circuit breaker
// around the model endpoint
func NewClassifierService(model *ai.Classifier, log *logger.Logger) *ClassifierService {
	cfg := config.Get()
	return &ClassifierService{
		model:        model,
		breaker:      resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("model-classifier"), log),
		memo:         cache.NewCache(),
		cacheEnabled: cfg.Cache.Enabled,
		log:          log,
	}
}

// Classify returns a valid emotion vector for the given text. History gives
// the model conversational context for short acknowledgements; the rule
// fallback ignores it.
func (s *ClassifierService) Classify(ctx context.Context, text string, history []ai.HistoryEntry) emotion.Vector {
	if s.cacheEnabled && len(history) == 0 {
		if cached, found := s.memo.Get(text); found {
			if vector, ok := cached.(emotion.Vector); ok {
				return vector.Clone()
			}
		}
	}

	if s.model.Enabled() {
		var vector emotion.Vector
		err := s.breaker.Execute(func() error {
			v, classifyErr := s.model.Classify(ctx, text, history)
			if classifyErr != nil {
				return classifyErr
			}
			vector = v
			return nil
		})
		if err == nil {
			// Vectors influenced by history are not memoized; the same
			// text can classify differently in a different context
			if s.cacheEnabled && len(history) == 0 {
				s.memo.Set(text, vector.Clone())
			}
			return vector
		}

		s.log.Warn("Model classification failed, using rule-based fallback",
			"error", err.Error(),
			"breaker_state", string(s.breaker.GetState()),
		)
	}

	return emotion.ClassifyFallback(text)
}

// BreakerMetrics exposes circuit breaker state for diagnostics
func (s *ClassifierService) BreakerMetrics() map[string]interface{} {
	return s.breaker.GetMetrics()
}

// Ping checks the model endpoint
func (s *ClassifierService) Ping(ctx context.Context) error {
	return s.model.Ping(ctx)
}
