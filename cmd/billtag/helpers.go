package main

import (
	"fmt"

	"github.com/yuhao-w/billtag/internal/config"
	"github.com/yuhao-w/billtag/internal/learn"
	"github.com/yuhao-w/billtag/internal/storage"
)

// newEngine builds a learning engine from the active configuration.
func newEngine() (*learn.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return learn.New(cfg, storage.NewJSONStore(cfg)), nil
}
