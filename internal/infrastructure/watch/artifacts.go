package watch

import (
	"path/filepath"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

// ArtifactMatcher decides whether a changed file is one of a step's expected
// artifacts. Paths are compared relative to the workspace root; exact
// artifacts match on equality, glob artifacts via filepath.Match.
type ArtifactMatcher struct {
	workspace string
	artifacts []execution.Artifact
}

func NewArtifactMatcher(workspace string, artifacts []execution.Artifact) *ArtifactMatcher {
	return &ArtifactMatcher{workspace: workspace, artifacts: artifacts}
}

// Match returns the artifact the path corresponds to, if any.
func (m *ArtifactMatcher) Match(path string) (execution.Artifact, bool) {
	rel, err := filepath.Rel(m.workspace, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, artifact := range m.artifacts {
		if artifact.IsGlob() {
			if matched, _ := filepath.Match(artifact.Path, rel); matched {
				return artifact, true
			}
			continue
		}
		if artifact.Path == rel {
			return artifact, true
		}
	}
	return execution.Artifact{}, false
}
