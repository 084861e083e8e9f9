package main

import (
	"github.com/rs/zerolog"

	"github.com/lessuseless-systems/infinite-storage-glitch/index"
	"github.com/lessuseless-systems/infinite-storage-glitch/orchestrator"
	"github.com/lessuseless-systems/infinite-storage-glitch/storage"
)

// app bundles the index, dispatcher, and orchestrator that every command
// except version opens, against the global --db/--storage/--attachment-webhook
// flags.
type app struct {
	store *index.Store
	orch  *orchestrator.Orchestrator
	log   zerolog.Logger
}

func openApp() (*app, error) {
	log := newLogger()

	store, err := index.Open(dbPath, log)
	if err != nil {
		return nil, err
	}

	local, err := storage.NewLocalBackend(storageDir)
	if err != nil {
		store.Close()
		return nil, err
	}

	backends := []storage.Backend{local}
	if attachment != "" {
		backends = append(backends, storage.NewAttachmentBackend(attachment))
	}
	dispatcher := storage.NewDispatcher(backends...)

	orch := orchestrator.New(store, dispatcher, log)
	return &app{store: store, orch: orch, log: log}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
