package app

import (
	goredis "github.com/redis/go-redis/v9"

	"github.com/theshibabasement/neuroflow/internal/clients/flowise"
	"github.com/theshibabasement/neuroflow/internal/clients/openai"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
	"github.com/theshibabasement/neuroflow/internal/platform/neo4jdb"
	"github.com/theshibabasement/neuroflow/internal/platform/redisq"
)

type Clients struct {
	Neo4j   *neo4jdb.Client
	Redis   *goredis.Client
	OpenAI  *openai.Client
	Flowise *flowise.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	neo4j, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		return Clients{}, err
	}
	rdb, err := redisq.NewFromEnv(log)
	if err != nil {
		return Clients{}, err
	}
	oa, err := openai.NewFromEnv(log)
	if err != nil {
		return Clients{}, err
	}
	fw, err := flowise.NewFromEnv(log)
	if err != nil {
		return Clients{}, err
	}
	return Clients{Neo4j: neo4j, Redis: rdb, OpenAI: oa, Flowise: fw}, nil
}
