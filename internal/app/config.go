package app

import (
	"time"

	"github.com/theshibabasement/neuroflow/internal/memory"
	"github.com/theshibabasement/neuroflow/internal/platform/envutil"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string
	HTTPAddr    string

	Memory memory.Options
}

func LoadConfig() Config {
	return Config{
		ServiceName: envutil.Get("SERVICE_NAME", "neuroflow"),
		Environment: envutil.Get("ENVIRONMENT", "development"),
		Version:     envutil.Get("SERVICE_VERSION", "dev"),
		HTTPAddr:    envutil.Get("HTTP_ADDR", ":8080"),
		Memory: memory.Options{
			SimilarityThreshold: envutil.GetFloat("MEMORY_SIMILARITY_THRESHOLD", 0.7),
			CandidateMultiplier: envutil.GetInt("MEMORY_CANDIDATE_MULTIPLIER", 3),
			ChannelTimeout:      envutil.GetDuration("MEMORY_CHANNEL_TIMEOUT", 5*time.Second),
			MaxTerms:            envutil.GetInt("MEMORY_MAX_SEARCH_TERMS", 3),
			MaxContextLength:    envutil.GetInt("MEMORY_MAX_CONTEXT_LENGTH", 2000),
			DefaultLimit:        envutil.GetInt("MEMORY_DEFAULT_LIMIT", 5),
		},
	}
}
