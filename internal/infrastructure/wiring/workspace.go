// Package wiring assembles repositories and services for a workspace root.
package wiring

import (
	"github.com/felixgeelhaar/workbench/internal/infrastructure/config"
	"github.com/felixgeelhaar/workbench/pkg/storage"
)

// Workspace bundles the per-root infrastructure: the persistence store and
// the project configuration.
type Workspace struct {
	Root   string
	Repo   *storage.FilesystemRepository
	Config *config.Config
}

func NewWorkspace(root string) (*Workspace, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	return &Workspace{
		Root:   root,
		Repo:   storage.NewFilesystemRepository(root),
		Config: cfg,
	}, nil
}
