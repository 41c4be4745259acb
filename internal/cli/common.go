package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/clock"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/config"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/engine"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/task"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/taskio"
)

// newEngine creates an engine with the real clock and the payload's own
// renormalization as the schema-layer hook.
func newEngine() *engine.Engine {
	return engine.New(&clock.RealClock{}, nil)
}

// loadSettings reads the settings file named by --config / SCALPEL_CONFIG.
func loadSettings() (task.Settings, error) {
	path := viper.GetString("config")
	settings, err := config.Load(path)
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// loadPayload reads a task file (Taskwarrior export or payload JSON)
// with the configured settings.
func loadPayload(path string) (*task.Payload, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return taskio.LoadPayload(path, settings)
}

// loadPlanObject reads a wire plan file into an untrusted object tree.
func loadPlanObject(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return obj, nil
}

// jsonOutput reports whether --json was requested.
func jsonOutput() bool {
	return viper.GetBool("json")
}

// outputJSON writes a value as indented JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
