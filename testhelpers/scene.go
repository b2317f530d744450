package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Scene represents a test scene with a temporary directory and Git repository.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene with a temporary directory and Git repository.
// Scenes do not change the process working directory, so tests using them may run in parallel.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	tmpDir := t.TempDir()
	// Resolve symlinks so paths compare equal to what git reports
	if resolved, err := filepath.EvalSymlinks(tmpDir); err == nil {
		tmpDir = resolved
	}
	repoDir := filepath.Join(tmpDir, "repo")

	repo, err := NewGitRepo(repoDir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:  repoDir,
		Repo: repo,
	}

	if err := scene.writeDefaultConfigs(); err != nil {
		t.Fatalf("Failed to write config files: %v", err)
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	return scene
}

// writeDefaultConfigs writes a repo config marking the repository initialized and headless.
func (s *Scene) writeDefaultConfigs() error {
	repoConfigPath := filepath.Join(s.Dir, ".git", ".pushlog_config")
	repoConfig := `{
  "headless": true
}
`
	return os.WriteFile(repoConfigPath, []byte(repoConfig), 0600)
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// WriteRepoConfig replaces the repository config with contents.
func (s *Scene) WriteRepoConfig(contents string) error {
	return os.WriteFile(filepath.Join(s.Dir, ".git", ".pushlog_config"), []byte(contents), 0600)
}

// WriteTreeRegistry writes a tree registry override.
func (s *Scene) WriteTreeRegistry(contents string) error {
	return os.WriteFile(filepath.Join(s.Dir, ".git", "pushlog_trees.yaml"), []byte(contents), 0600)
}
