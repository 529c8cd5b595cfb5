//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// workspaceConfig is a small, fast in-memory dataset. Names are generated
// from the seed, so tests match on stable prefixes rather than exact rows.
const workspaceConfig = `page_size = %d

[provider]
kind = "memory"

[memory]
items = %d
latency_ms = 20
seed = 1

[sort]
by = "name"
direction = "asc"

[log]
level = "debug"
file = "scrollgrid.log"
`

// CreateTestWorkspace creates a temporary directory holding a config file
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	return tf.CreateTestWorkspaceWith(10, 120)
}

// CreateTestWorkspaceWith creates a workspace with the given page size and item count
func (tf *TUITestFramework) CreateTestWorkspaceWith(pageSize, items int) (string, error) {
	tempDir, err := os.MkdirTemp("", "scrollgrid-e2e-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	tf.workspace = tempDir

	cfg := fmt.Sprintf(workspaceConfig, pageSize, items)
	if err := os.WriteFile(filepath.Join(tempDir, ".scrollgrid.toml"), []byte(cfg), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return tempDir, nil
}

// LogContents returns the application log written in the workspace
func (tf *TUITestFramework) LogContents() string {
	data, _ := os.ReadFile(filepath.Join(tf.workspace, "scrollgrid.log"))
	return string(data)
}
