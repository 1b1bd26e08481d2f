// Package app provides the Application Composition Layer for the item service.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct and wiring
//	├── domain/item/        # Item model, validation and price rounding
//	├── storage/            # ItemStore interface and error taxonomy
//	│   ├── memory/         # In-memory implementation for tests
//	│   └── postgres/       # PostgreSQL implementation for production
//	├── services/items/     # Validation + persistence orchestration
//	├── httpapi/            # Routes, request pipeline, error translation
//	├── metrics/            # Prometheus request counters
//	└── runtime/            # Process lifecycle: config, database, server
//
// # Dependency Direction
//
//	cmd/item-service/
//	      │
//	      ▼
//	internal/app/runtime ──► internal/platform/ (database, migrations)
//	      │
//	      ▼
//	internal/app/httpapi ──► internal/app/metrics
//	      │
//	      ▼
//	internal/app (composition)
//	      │
//	      ▼
//	internal/app/services/items ──► internal/app/storage ──► internal/app/domain/item
//
// Validation always happens in services/items before a store is called, so
// stores only ever receive rows that satisfy the schema constraints.
package app
