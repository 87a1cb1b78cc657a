package narrative

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

// Explanation is a generated explanation in Markdown.
type Explanation struct {
	Topic    Topic  `json:"topic"`
	Markdown string `json:"markdown"`
	Source   string `json:"source"`
	Cached   bool   `json:"cached"`
}

// Service builds prompts, consults the cache and calls the provider.
// Identical requests in flight at the same time share one provider call.
type Service struct {
	provider Provider
	fallback Provider
	cache    Cache
	ttl      time.Duration
	group    singleflight.Group
}

// NewService wires a Service. A nil provider uses the built-in text and a
// nil cache disables caching.
func NewService(provider Provider, cache Cache, ttl time.Duration) *Service {
	if provider == nil {
		provider = FallbackProvider{}
	}
	return &Service{provider: provider, fallback: FallbackProvider{}, cache: cache, ttl: ttl}
}

// ProviderName reports which provider answers requests.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Explain returns an explanation for req. Provider failures degrade to the
// built-in text and are not cached.
func (s *Service) Explain(ctx context.Context, req Request) (Explanation, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return Explanation{}, err
	}
	key := Key(req.Topic, prompt)

	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("narrative cache get: %v", err)
		}
		if ok {
			return Explanation{Topic: req.Topic, Markdown: text, Source: s.provider.Name(), Cached: true}, nil
		}
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		text, err := s.provider.Explain(ctx, prompt, SystemPrompt)
		if err != nil {
			log.Printf("narrative provider %s: %v", s.provider.Name(), err)
			text, _ = s.fallback.Explain(ctx, prompt, SystemPrompt)
			return Explanation{Topic: req.Topic, Markdown: text, Source: s.fallback.Name()}, nil
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, text, s.ttl); err != nil {
				log.Printf("narrative cache set: %v", err)
			}
		}
		return Explanation{Topic: req.Topic, Markdown: text, Source: s.provider.Name()}, nil
	})
	return v.(Explanation), nil
}
