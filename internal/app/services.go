package app

import (
	"github.com/theshibabasement/neuroflow/internal/data/knowledge"
	"github.com/theshibabasement/neuroflow/internal/data/repos"
	"github.com/theshibabasement/neuroflow/internal/memory"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
	"github.com/theshibabasement/neuroflow/internal/services"
	"github.com/theshibabasement/neuroflow/internal/tasks"
)

type Services struct {
	MemoryCore *memory.Service
	Memory     services.MemoryService
	Chat       services.ChatService
	Auth       services.AuthService
	Queue      *tasks.Queue
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, r *repos.Repos) (Services, error) {
	store, err := knowledge.NewNeo4jStore(clients.Neo4j, log)
	if err != nil {
		return Services{}, err
	}

	core, err := memory.NewService(store, clients.OpenAI, clients.OpenAI, clients.OpenAI, clients.OpenAI, log, cfg.Memory)
	if err != nil {
		return Services{}, err
	}
	mem, err := services.NewMemoryService(core, log)
	if err != nil {
		return Services{}, err
	}

	queue, err := tasks.NewQueue(clients.Redis, log)
	if err != nil {
		return Services{}, err
	}

	chat, err := services.NewChatService(mem, clients.Flowise, r, queue, log)
	if err != nil {
		return Services{}, err
	}

	auth := services.NewAuthService(r.APIKeys, log)

	return Services{
		MemoryCore: core,
		Memory:     mem,
		Chat:       chat,
		Auth:       auth,
		Queue:      queue,
	}, nil
}
