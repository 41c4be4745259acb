// Package taskio adapts Taskwarrior `task export` JSON to the payload
// model. All file and stream I/O of the tool lives here; the scheduling
// core only ever sees already-parsed structured data.
package taskio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/task"
)

// twTimeLayout is Taskwarrior's ISO-basic UTC timestamp format.
const twTimeLayout = "20060102T150405Z"

// exportRecord is one entry of `task export`.
type exportRecord struct {
	UUID        string   `json:"uuid"`
	Description string   `json:"description"`
	Project     string   `json:"project"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
	Entry       string   `json:"entry"`
	Due         string   `json:"due"`
	Scheduled   string   `json:"scheduled"`
	Duration    string   `json:"duration"`
}

// ReadExport decodes a Taskwarrior export array. Records without a uuid
// get a deterministic SHA-1 based one derived from their description and
// entry time, so repeated imports of the same export agree.
func ReadExport(r io.Reader) ([]task.Task, error) {
	var records []exportRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode task export: %w", err)
	}

	tasks := make([]task.Task, 0, len(records))
	for i, rec := range records {
		t := task.Task{
			UUID:        rec.UUID,
			Description: rec.Description,
			Project:     rec.Project,
			Tags:        rec.Tags,
			Status:      task.Status(rec.Status),
		}
		if t.Status == "" {
			t.Status = task.StatusPending
		}
		if t.UUID == "" {
			t.UUID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(rec.Description+"|"+rec.Entry)).String()
		}
		var err error
		if t.Entry, err = parseTime(rec.Entry); err != nil {
			return nil, fmt.Errorf("record %d: entry: %w", i, err)
		}
		if t.Due, err = parseTime(rec.Due); err != nil {
			return nil, fmt.Errorf("record %d: due: %w", i, err)
		}
		if t.Scheduled, err = parseTime(rec.Scheduled); err != nil {
			return nil, fmt.Errorf("record %d: scheduled: %w", i, err)
		}
		if t.DurationMin, err = parseDuration(rec.Duration); err != nil {
			return nil, fmt.Errorf("record %d: duration: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// LoadPayload reads a payload file. Both shapes are accepted: a raw
// Taskwarrior export array (wrapped with the given settings) and a
// previously written payload object.
func LoadPayload(path string, settings task.Settings) (*task.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		tasks, err := ReadExport(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return task.NewPayload(settings, tasks), nil
	}

	var p task.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if p.Settings.Timezone == "" {
		p.Settings = settings
	}
	p.Reindex()
	return &p, nil
}

// SavePayload writes the payload as indented JSON.
func SavePayload(path string, p *task.Payload) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(twTimeLayout, s)
	if err != nil {
		// Some exports carry RFC 3339 instead.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q", s)
		}
	}
	t = t.UTC()
	return &t, nil
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?)?$`)

// parseDuration converts a Taskwarrior duration to whole minutes.
// Accepts the ISO 8601 subset Taskwarrior emits (PnDTnHnM) and bare
// minute counts.
func parseDuration(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return n, nil
	}
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unsupported duration %q", s)
	}
	total := 0
	if m[1] != "" {
		d, _ := strconv.Atoi(m[1])
		total += d * 24 * 60
	}
	if m[2] != "" {
		h, _ := strconv.Atoi(m[2])
		total += h * 60
	}
	if m[3] != "" {
		mins, _ := strconv.Atoi(m[3])
		total += mins
	}
	if total == 0 && s != "PT0M" && s != "P0D" {
		return 0, fmt.Errorf("unsupported duration %q", s)
	}
	return total, nil
}
