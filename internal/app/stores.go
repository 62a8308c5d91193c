// Package app assembles the stores and usecases shared by the binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/config"
	"github.com/xavierca1/buyer-leads/internal/entity"
	"github.com/xavierca1/buyer-leads/internal/infra/database"
	"github.com/xavierca1/buyer-leads/internal/infra/memory"
	"github.com/xavierca1/buyer-leads/internal/usecase"
)

// Stores holds the lead and history stores. DB is nil for the memory driver.
type Stores struct {
	Leads   entity.LeadRepositoryInterface
	History entity.HistoryRepositoryInterface
	DB      *sql.DB
}

// OpenStores connects to the configured driver. With migrate set, pending
// migrations are applied before returning.
func OpenStores(ctx context.Context, cfg *config.Config, migrate bool, logger logrus.FieldLogger) (*Stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return &Stores{
			Leads:   memory.NewLeadStore(),
			History: memory.NewHistoryStore(),
		}, nil
	}

	db, err := database.NewDBConnection(ctx, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	logger.Info("connected to postgres")

	return &Stores{
		Leads:   database.NewLeadRepository(db),
		History: database.NewHistoryRepository(db),
		DB:      db,
	}, nil
}

func (s *Stores) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// UseCases groups every lead operation over one set of stores.
type UseCases struct {
	Create *usecase.CreateLeadUseCase
	Update *usecase.UpdateLeadUseCase
	Get    *usecase.GetLeadUseCase
	List   *usecase.ListLeadsUseCase
	Import *usecase.ImportLeadsUseCase
	Export *usecase.ExportLeadsUseCase
}

// NewUseCases wires the usecases. events may be nil.
func NewUseCases(s *Stores, events usecase.EventPublisher, logger logrus.FieldLogger) *UseCases {
	recorder := usecase.NewHistoryRecorder(s.History)
	return &UseCases{
		Create: usecase.NewCreateLeadUseCase(s.Leads, recorder, events, logger),
		Update: usecase.NewUpdateLeadUseCase(s.Leads, recorder, events, logger),
		Get:    usecase.NewGetLeadUseCase(s.Leads, recorder),
		List:   usecase.NewListLeadsUseCase(s.Leads),
		Import: usecase.NewImportLeadsUseCase(s.Leads, recorder, events, logger),
		Export: usecase.NewExportLeadsUseCase(s.Leads),
	}
}
