package app

import (
	"github.com/R3E-Network/item_service/internal/app/services/items"
	"github.com/R3E-Network/item_service/internal/app/storage"
	"github.com/R3E-Network/item_service/internal/app/storage/memory"
	"github.com/R3E-Network/item_service/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Items storage.ItemStore
}

// Application ties domain services together.
type Application struct {
	log *logger.Logger

	Items *items.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if stores.Items == nil {
		log.Warn("no item store configured; using in-memory store")
		stores.Items = memory.New()
	}

	return &Application{
		log:   log,
		Items: items.New(stores.Items, log),
	}, nil
}

// Logger returns the application logger.
func (a *Application) Logger() *logger.Logger {
	return a.log
}
