package app

import (
	"fmt"

	"github.com/yungbote/studybuddy-backend/internal/clients/redis"
	"github.com/yungbote/studybuddy-backend/internal/observability"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
	"github.com/yungbote/studybuddy-backend/internal/platform/openai"
)

type Clients struct {
	LLM   openai.Client
	Cache redis.JSONCache
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	var observer openai.Observer
	if metrics != nil {
		observer = metrics
	}
	llm, err := openai.NewClient(log, cfg.OpenAI, observer)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Redis is optional; without it the leaderboard is computed per request.
	cache, err := redis.NewCache(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis cache: %w", err)
	}
	if cache == nil {
		log.Info("REDIS_ADDR not set, leaderboard cache disabled")
	}

	return Clients{LLM: llm, Cache: cache}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}
