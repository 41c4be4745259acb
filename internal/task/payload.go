package task

import (
	"fmt"
	"time"
)

// CurrentSchemaVersion is the payload schema version written by this build.
const CurrentSchemaVersion = 1

// Settings are the scheduling parameters carried alongside a task
// collection. The timezone here is the bucketing timezone: day keys and
// work-hour windows are always resolved against it, never against the
// process-local zone.
type Settings struct {
	// Timezone is the IANA bucketing timezone, e.g. "Europe/Madrid".
	Timezone string `json:"timezone" yaml:"timezone"`

	// WorkStartMin is the work window start, in minutes after midnight.
	WorkStartMin int `json:"work_start_min" yaml:"work_start_min"`

	// WorkEndMin is the work window end, in minutes after midnight.
	WorkEndMin int `json:"work_end_min" yaml:"work_end_min"`

	// SnapMin is the slot snap granularity in minutes.
	SnapMin int `json:"snap_min" yaml:"snap_min"`

	// ViewStart is the first visible day. Zero means "resolve at call time".
	ViewStart time.Time `json:"view_start,omitempty" yaml:"view_start,omitempty"`

	// Days is the number of visible days.
	Days int `json:"days" yaml:"days"`

	// DefaultDurationMin is the fallback task duration in minutes.
	DefaultDurationMin int `json:"default_duration_min" yaml:"default_duration_min"`

	// MaxInferDurationMin caps the duration inferred from a
	// scheduled..due span, in minutes.
	MaxInferDurationMin int `json:"max_infer_duration_min" yaml:"max_infer_duration_min"`

	// MaxSlotsPerTask caps candidate slots offered per movable task.
	MaxSlotsPerTask int `json:"max_slots_per_task" yaml:"max_slots_per_task"`
}

// DefaultSettings returns the settings used when no config file is present.
func DefaultSettings() Settings {
	return Settings{
		Timezone:            "UTC",
		WorkStartMin:        9 * 60,
		WorkEndMin:          18 * 60,
		SnapMin:             10,
		Days:                7,
		DefaultDurationMin:  30,
		MaxInferDurationMin: 8 * 60,
		MaxSlotsPerTask:     20,
	}
}

// Location resolves the bucketing timezone.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Payload is a task collection plus its scheduling settings. It is the
// unit the engine reads once per planning round and writes back after a
// plan is applied.
type Payload struct {
	SchemaVersion int      `json:"schema_version"`
	Settings      Settings `json:"settings"`
	Tasks         []Task   `json:"tasks"`

	index map[string]int
}

// NewPayload builds an indexed payload.
func NewPayload(settings Settings, tasks []Task) *Payload {
	p := &Payload{
		SchemaVersion: CurrentSchemaVersion,
		Settings:      settings,
		Tasks:         tasks,
	}
	p.Reindex()
	return p
}

// Reindex rebuilds the uuid index. Must be called after Tasks is
// reordered or appended to outside the payload's own methods.
func (p *Payload) Reindex() {
	p.index = make(map[string]int, len(p.Tasks))
	for i := range p.Tasks {
		p.index[p.Tasks[i].UUID] = i
	}
}

// Lookup returns a pointer to the task with the given uuid.
func (p *Payload) Lookup(uuid string) (*Task, bool) {
	if p.index == nil {
		p.Reindex()
	}
	i, ok := p.index[uuid]
	if !ok {
		return nil, false
	}
	return &p.Tasks[i], true
}

// DayKeyFor returns the day bucket for an instant in the payload timezone.
func (p *Payload) DayKeyFor(t time.Time) (string, error) {
	loc, err := p.Settings.Location()
	if err != nil {
		return "", err
	}
	return t.In(loc).Format("2006-01-02"), nil
}

// Renormalize rebuilds the derived structures of the payload: the uuid
// index, day buckets of placed tasks, and the schema version stamp. The
// scheduling core invokes this only through an opaque hook; everything
// it does is reconstructible from the tasks themselves.
func (p *Payload) Renormalize() error {
	loc, err := p.Settings.Location()
	if err != nil {
		return err
	}
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.StartCalc != nil {
			t.DayKey = t.StartCalc.In(loc).Format("2006-01-02")
		} else {
			t.DayKey = ""
		}
	}
	p.SchemaVersion = CurrentSchemaVersion
	p.Reindex()
	return nil
}
