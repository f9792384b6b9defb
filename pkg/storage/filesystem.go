// Package storage persists execution state under a fixed directory inside
// the workspace. One JSON document per workspace holds the plan and its
// append-only checkpoint log; an optional YAML document supplies a custom
// workflow catalog.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

const WorkbenchDir = ".workbench"
const ExecutionFile = "execution.json"
const CatalogFile = "catalog.yaml"

// FilesystemRepository reads and writes the per-workspace state documents.
// Failed reads and writes surface to the caller as-is: persistence is never
// retried, so a corrupt document is reported on the first touch.
type FilesystemRepository struct {
	root string
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{root: root}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .workbench directory and
// prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, WorkbenchDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, WorkbenchDir)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .workbench directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, WorkbenchDir))
	return err == nil
}

// SaveExecution writes the execution state document, stamping LastSaved.
// The .workbench directory is created on demand so the first save after
// plan generation does not require a separate init call.
func (r *FilesystemRepository) SaveExecution(state *execution.ExecutionState) error {
	if state == nil || state.ExecutionPlan == nil {
		return fmt.Errorf("cannot save empty execution state")
	}
	if err := r.Initialize(); err != nil {
		return err
	}
	path, err := r.ResolvePath(ExecutionFile)
	if err != nil {
		return err
	}

	state.LastSaved = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &execution.PersistenceError{Op: "save", Path: path, Err: err}
	}

	// G306: Use 0600 for files
	if err := os.WriteFile(path, data, 0600); err != nil {
		return &execution.PersistenceError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// LoadExecution reads the execution state document. A missing file is not an
// error: it returns (nil, nil), meaning no task has been started in this
// workspace. A file that exists but fails to parse is a PersistenceError, so
// "never started" and "corrupted" stay distinguishable.
func (r *FilesystemRepository) LoadExecution() (*execution.ExecutionState, error) {
	path, err := r.ResolvePath(ExecutionFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &execution.PersistenceError{Op: "load", Path: path, Err: err}
	}

	var state execution.ExecutionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, &execution.PersistenceError{Op: "load", Path: path, Err: err}
	}
	if state.ExecutionPlan == nil {
		return nil, &execution.PersistenceError{Op: "load", Path: path, Err: errors.New("document has no execution plan")}
	}

	return &state, nil
}
