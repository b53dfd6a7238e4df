package repos

import (
	"gorm.io/gorm"

	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

// Repos bundles the relational repositories behind one constructor.
type Repos struct {
	Users       UserRepo
	Companies   CompanyRepo
	Sessions    SessionRepo
	ChatHistory ChatHistoryRepo
	APIKeys     APIKeyRepo
}

func New(db *gorm.DB, log *logger.Logger) *Repos {
	return &Repos{
		Users:       NewUserRepo(db, log),
		Companies:   NewCompanyRepo(db, log),
		Sessions:    NewSessionRepo(db, log),
		ChatHistory: NewChatHistoryRepo(db, log),
		APIKeys:     NewAPIKeyRepo(db, log),
	}
}
