package execution

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ArtifactKind distinguishes exact file paths from glob patterns.
type ArtifactKind string

const (
	// ArtifactExact is a relative path checked for existence under the workspace.
	ArtifactExact ArtifactKind = "exact"
	// ArtifactGlob is a wildcard pattern. Globs cannot be resolved generically,
	// so the gate treats them as satisfied without a filesystem check.
	ArtifactGlob ArtifactKind = "glob"
)

// IsValid returns true if the kind is a known artifact kind.
func (k ArtifactKind) IsValid() bool {
	return k == ArtifactExact || k == ArtifactGlob
}

// Artifact is a file whose presence evidences a step's completion.
type Artifact struct {
	Kind ArtifactKind `json:"kind"`
	Path string       `json:"path"`
}

// ParseArtifact classifies a path string as exact or glob. Paths containing
// any of the filepath.Match metacharacters are globs.
func ParseArtifact(path string) Artifact {
	if strings.ContainsAny(path, "*?[") {
		return Artifact{Kind: ArtifactGlob, Path: path}
	}
	return Artifact{Kind: ArtifactExact, Path: path}
}

// ParseArtifacts classifies a list of path strings.
func ParseArtifacts(paths []string) []Artifact {
	if len(paths) == 0 {
		return nil
	}
	artifacts := make([]Artifact, len(paths))
	for i, p := range paths {
		artifacts[i] = ParseArtifact(p)
	}
	return artifacts
}

// IsGlob returns true for wildcard artifacts.
func (a Artifact) IsGlob() bool {
	return a.Kind == ArtifactGlob
}

// String returns the artifact path.
func (a Artifact) String() string {
	return a.Path
}

// UnmarshalJSON validates the kind and re-derives it from the path when the
// kind field is absent, so plans written by older builds stay loadable.
func (a *Artifact) UnmarshalJSON(data []byte) error {
	type raw Artifact
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	if r.Path == "" {
		return fmt.Errorf("artifact path cannot be empty")
	}
	if r.Kind == "" {
		*a = ParseArtifact(r.Path)
		return nil
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("invalid artifact kind: %s", r.Kind)
	}
	*a = Artifact(r)
	return nil
}
