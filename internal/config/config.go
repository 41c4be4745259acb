// Package config loads the scalpel.yaml settings file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/task"
)

// File models scalpel.yaml. Work-hour bounds are written as wall-clock
// HH:MM for readability and converted to minute offsets on load.
type File struct {
	Timezone            string `yaml:"timezone"`
	WorkStart           string `yaml:"work_start"`
	WorkEnd             string `yaml:"work_end"`
	SnapMin             int    `yaml:"snap_min"`
	Days                int    `yaml:"days"`
	DefaultDurationMin  int    `yaml:"default_duration_min"`
	MaxInferDurationMin int    `yaml:"max_infer_duration_min"`
	MaxSlotsPerTask     int    `yaml:"max_slots_per_task"`
}

// Load reads settings from path, falling back to defaults for anything
// unset. A missing file is not an error: every field has a default.
func Load(path string) (task.Settings, error) {
	settings := task.DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("read config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return settings, fmt.Errorf("parse config %s: %w", path, err)
	}

	if f.Timezone != "" {
		settings.Timezone = f.Timezone
	}
	if f.WorkStart != "" {
		m, err := parseHHMM(f.WorkStart)
		if err != nil {
			return settings, fmt.Errorf("work_start: %w", err)
		}
		settings.WorkStartMin = m
	}
	if f.WorkEnd != "" {
		m, err := parseHHMM(f.WorkEnd)
		if err != nil {
			return settings, fmt.Errorf("work_end: %w", err)
		}
		settings.WorkEndMin = m
	}
	if f.SnapMin > 0 {
		settings.SnapMin = f.SnapMin
	}
	if f.Days > 0 {
		settings.Days = f.Days
	}
	if f.DefaultDurationMin > 0 {
		settings.DefaultDurationMin = f.DefaultDurationMin
	}
	if f.MaxInferDurationMin > 0 {
		settings.MaxInferDurationMin = f.MaxInferDurationMin
	}
	if f.MaxSlotsPerTask > 0 {
		settings.MaxSlotsPerTask = f.MaxSlotsPerTask
	}

	return settings, Validate(settings)
}

// Validate checks the loaded settings for internal consistency.
func Validate(s task.Settings) error {
	if _, err := s.Location(); err != nil {
		return err
	}
	if s.WorkStartMin < 0 || s.WorkStartMin >= 24*60 {
		return fmt.Errorf("work_start outside the day")
	}
	if s.WorkEndMin <= s.WorkStartMin || s.WorkEndMin > 24*60 {
		return fmt.Errorf("work_end must be after work_start and within the day")
	}
	if s.SnapMin <= 0 || s.SnapMin > 12*60 {
		return fmt.Errorf("snap_min must be in 1..720")
	}
	if s.Days <= 0 {
		return fmt.Errorf("days must be positive")
	}
	if s.DefaultDurationMin <= 0 {
		return fmt.Errorf("default_duration_min must be positive")
	}
	if s.MaxInferDurationMin <= 0 {
		return fmt.Errorf("max_infer_duration_min must be positive")
	}
	return nil
}

// parseHHMM converts "HH:MM" to a minute offset from midnight.
func parseHHMM(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}
