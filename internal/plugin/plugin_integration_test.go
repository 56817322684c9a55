package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPlugin_SystemControl_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pluginDir := findPluginDir("system-control")
	if pluginDir == "" {
		t.Skip("system-control plugin not found")
	}
	if _, err := os.Stat(filepath.Join(pluginDir, "system-control")); err != nil {
		t.Skip("system-control plugin not built")
	}

	mgr := NewManager(filepath.Dir(pluginDir), nil)
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.ForAction("brightness-set")
	if err != nil {
		t.Fatalf("ForAction() error = %v", err)
	}

	// Out-of-range brightness is rejected before any platform tool runs,
	// so this exercises the round trip without touching the display.
	err = NewExecutor(5*time.Second, nil).Run(context.Background(), plug, "brightness-set", map[string]int{"percent": 150})
	if err == nil {
		t.Error("expected failure for out-of-range percent")
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			return dir
		}
	}
	return ""
}
