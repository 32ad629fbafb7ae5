package persistence

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/andrescamacho/solarion-go/internal/domain/game"
)

// GormStore hands out repositories bound to one gorm handle and implements
// game.Transactor. Events raised inside a transaction are held back until
// the transaction commits and dropped if it rolls back.
type GormStore struct {
	db        *gorm.DB
	publisher game.EventPublisher

	mu     *sync.Mutex
	outbox *[]game.Event
}

// NewGormStore creates a store; a nil publisher discards events
func NewGormStore(db *gorm.DB, publisher game.EventPublisher) *GormStore {
	if publisher == nil {
		publisher = game.NopPublisher{}
	}
	return &GormStore{db: db, publisher: publisher}
}

// DB exposes the underlying handle
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Users() game.UserRepository {
	return NewGormUserRepository(s.db)
}

func (s *GormStore) Planets() game.PlanetRepository {
	return NewGormPlanetRepository(s.db)
}

func (s *GormStore) Grids() game.GridRepository {
	return NewGormGridRepository(s.db)
}

func (s *GormStore) Garrisons() game.GarrisonRepository {
	return NewGormGarrisonRepository(s.db)
}

func (s *GormStore) UserResearch() game.UserResearchRepository {
	return NewGormUserResearchRepository(s.db)
}

func (s *GormStore) Catalog() game.CatalogRepository {
	return NewGormCatalogRepository(s.db)
}

func (s *GormStore) Constructions() game.ConstructionRepository {
	return NewGormConstructionRepository(s.db)
}

func (s *GormStore) Upgrades() game.UpgradeRepository {
	return NewGormUpgradeRepository(s.db)
}

func (s *GormStore) Trainings() game.TrainingRepository {
	return NewGormTrainingRepository(s.db)
}

func (s *GormStore) Researches() game.ResearchRepository {
	return NewGormResearchRepository(s.db)
}

func (s *GormStore) Movements() game.MovementRepository {
	return NewGormMovementRepository(s.db)
}

// Notify queues the event inside a transaction, publishes it otherwise
func (s *GormStore) Notify(event game.Event) {
	if s.outbox == nil {
		s.publisher.Publish(event)
		return
	}
	s.mu.Lock()
	*s.outbox = append(*s.outbox, event)
	s.mu.Unlock()
}

// Transaction runs fn against a store bound to a new transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx game.Store) error) error {
	var events []game.Event

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{
			db:        tx,
			publisher: s.publisher,
			mu:        &sync.Mutex{},
			outbox:    &events,
		})
	})
	if err != nil {
		return err
	}

	seen := make(map[game.Event]bool, len(events))
	for _, event := range events {
		if seen[event] {
			continue
		}
		seen[event] = true
		s.publisher.Publish(event)
	}
	return nil
}

var _ game.Transactor = (*GormStore)(nil)
