package wire

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestTempUUID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"t1", "tmp:t1"},
		{"tmp:t1", "tmp:t1"}, // idempotent under re-application
		{"  t1  ", "tmp:t1"},
		{"prep-slides", "tmp:prep-slides"},
	}
	for _, tt := range tests {
		if got := TempUUID(tt.in); got != tt.want {
			t.Errorf("TempUUID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompile_CreateAndPlaceViaSlot(t *testing.T) {
	obj := decode(t, `{
		"schema": "plan.v2",
		"slot_catalog": {"S1": {"start": 60000000, "due": 61800000}},
		"ops": [
			{"op": "create_task", "temp_id": "t1", "description": "X", "duration_min": 30},
			{"op": "place", "target": "t1", "slot_id": "S1"}
		]
	}`)

	r, err := Compile(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.AddedTasks) != 1 {
		t.Fatalf("AddedTasks = %d entries, want 1", len(r.AddedTasks))
	}
	draft := r.AddedTasks[0]
	if draft.UUID != "tmp:t1" {
		t.Errorf("draft uuid = %q, want tmp:t1", draft.UUID)
	}
	if draft.Status != "pending" {
		t.Errorf("draft status = %q, want pending", draft.Status)
	}

	o, ok := r.Overrides["tmp:t1"]
	if !ok {
		t.Fatalf("no override for tmp:t1; overrides: %v", r.Overrides)
	}
	wantStart := time.UnixMilli(60000000).UTC()
	wantDue := time.UnixMilli(61800000).UTC()
	if !o.Start.Equal(wantStart) || !o.Due.Equal(wantDue) {
		t.Errorf("override = [%v, %v], want the slot window [%v, %v]", o.Start, o.Due, wantStart, wantDue)
	}
	if o.DurationMin != 30 {
		t.Errorf("DurationMin = %d, want 30", o.DurationMin)
	}
}

// Compiling place ops that all reference catalog slots must reproduce
// the referenced windows exactly.
func TestCompile_SlotRoundTrip(t *testing.T) {
	obj := decode(t, `{
		"schema": "plan.v2",
		"slot_catalog": {
			"S1": {"start": 60000000, "due": 61800000},
			"S2": {"start": 90000000, "due": 93600000}
		},
		"ops": [
			{"op": "place", "target": "u1", "slot_id": "S1"},
			{"op": "place", "target": "u2", "slot_id": "S2"}
		]
	}`)

	r, err := Compile(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for target, slotID := range map[string]string{"u1": "S1", "u2": "S2"} {
		catalogEntry := obj["slot_catalog"].(map[string]any)[slotID].(map[string]any)
		wantStart := time.UnixMilli(int64(catalogEntry["start"].(float64))).UTC()
		wantDue := time.UnixMilli(int64(catalogEntry["due"].(float64))).UTC()
		o := r.Overrides[target]
		if !o.Start.Equal(wantStart) || !o.Due.Equal(wantDue) {
			t.Errorf("override[%s] = [%v, %v], want [%v, %v]", target, o.Start, o.Due, wantStart, wantDue)
		}
	}
}

func TestCompile_PlaceExplicitInstants(t *testing.T) {
	obj := decode(t, `{
		"schema": "plan.v2",
		"ops": [
			{"op": "place", "target": "u1",
			 "start_iso": "2020-01-02T09:00:00+01:00",
			 "due_iso": "2020-01-02T09:45:00+01:00"}
		]
	}`)

	r, err := Compile(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o := r.Overrides["u1"]
	if o.DurationMin != 45 {
		t.Errorf("DurationMin = %d, want 45", o.DurationMin)
	}
	wantStart := time.Date(2020, 1, 2, 8, 0, 0, 0, time.UTC)
	if !o.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", o.Start, wantStart)
	}
}

func TestCompile_FailFast(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantErr  error
		wantText string
	}{
		{
			name: "naive instant rejected",
			raw: `{"ops": [{"op": "place", "target": "u1",
				"start_iso": "2020-01-02T09:00:00", "due_iso": "2020-01-02T10:00:00Z"}]}`,
			wantErr:  ErrBadShape,
			wantText: "UTC offset required",
		},
		{
			name: "due not after start",
			raw: `{"ops": [{"op": "place", "target": "u1",
				"start_iso": "2020-01-02T09:00:00Z", "due_iso": "2020-01-02T09:00:00Z"}]}`,
			wantErr:  ErrBadShape,
			wantText: "due_iso must be after",
		},
		{
			name:     "unknown slot reference",
			raw:      `{"ops": [{"op": "place", "target": "u1", "slot_id": "S9"}]}`,
			wantErr:  ErrBadReference,
			wantText: `slot_id "S9"`,
		},
		{
			name:     "subtask missing duration",
			raw:      `{"ops": [{"op": "split_task", "target": "u1", "subtasks": [{"temp_id": "s1", "description": "half"}]}]}`,
			wantErr:  ErrBadShape,
			wantText: "positive integer duration_min",
		},
		{
			name:     "create_task without temp_id",
			raw:      `{"ops": [{"op": "create_task", "description": "X"}]}`,
			wantErr:  ErrBadShape,
			wantText: "requires temp_id",
		},
		{
			name:     "non-list warnings",
			raw:      `{"ops": [], "warnings": "oops"}`,
			wantErr:  ErrBadShape,
			wantText: "warnings must be a list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Compile(decode(t, tt.raw))
			if r != nil {
				t.Error("partial result returned alongside an error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q does not mention %q", err, tt.wantText)
			}
		})
	}
}

func TestCompile_LastPlaceWinsWithWarning(t *testing.T) {
	obj := decode(t, `{
		"ops": [
			{"op": "place", "target": "u1",
			 "start_iso": "2020-01-02T09:00:00Z", "due_iso": "2020-01-02T09:30:00Z"},
			{"op": "place", "target": "u1",
			 "start_iso": "2020-01-02T14:00:00Z", "due_iso": "2020-01-02T15:00:00Z"}
		]
	}`)

	r, err := Compile(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o := r.Overrides["u1"]
	if o.DurationMin != 60 {
		t.Errorf("DurationMin = %d, want the later placement's 60", o.DurationMin)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "overrides an earlier placement") {
		t.Errorf("Warnings = %v, want one overwrite warning", r.Warnings)
	}
}

func TestCompile_TagForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "sequence filtered to non-blank",
			raw:  `{"ops": [{"op": "create_task", "temp_id": "t1", "description": "X", "tags": ["a", " ", "b"]}]}`,
			want: []string{"a", "b"},
		},
		{
			name: "string whitespace tokenized",
			raw:  `{"ops": [{"op": "create_task", "temp_id": "t1", "description": "X", "tags": "deep  work"}]}`,
			want: []string{"deep", "work"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Compile(decode(t, tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(r.AddedTasks[0].Tags, tt.want) {
				t.Errorf("Tags = %v, want %v", r.AddedTasks[0].Tags, tt.want)
			}
		})
	}
}

func TestCompile_SplitTask(t *testing.T) {
	obj := decode(t, `{
		"ops": [
			{"op": "split_task", "target": "parent-1", "subtasks": [
				{"temp_id": "s1", "description": "first half", "duration_min": 25},
				{"temp_id": "s2", "description": "second half", "duration_min": 35}
			]},
			{"op": "place", "target": "s2",
			 "start_iso": "2020-01-02T09:00:00Z", "due_iso": "2020-01-02T09:35:00Z"}
		]
	}`)

	r, err := Compile(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.AddedTasks) != 2 {
		t.Fatalf("AddedTasks = %d entries, want 2", len(r.AddedTasks))
	}
	for i, want := range []string{"tmp:s1", "tmp:s2"} {
		if r.AddedTasks[i].UUID != want {
			t.Errorf("AddedTasks[%d].UUID = %q, want %q", i, r.AddedTasks[i].UUID, want)
		}
		if r.AddedTasks[i].SplitOf != "parent-1" {
			t.Errorf("AddedTasks[%d].SplitOf = %q, want parent-1", i, r.AddedTasks[i].SplitOf)
		}
	}
	// The later place op resolved the subtask's temp id.
	if _, ok := r.Overrides["tmp:s2"]; !ok {
		t.Errorf("no override for tmp:s2; overrides: %v", r.Overrides)
	}
}

// A place op may reference a task created later in the op list: the
// temp-id allocation pass runs before compilation.
func TestCompile_ForwardReference(t *testing.T) {
	obj := decode(t, `{
		"ops": [
			{"op": "place", "target": "t1",
			 "start_iso": "2020-01-02T09:00:00Z", "due_iso": "2020-01-02T09:30:00Z"},
			{"op": "create_task", "temp_id": "t1", "description": "later"}
		]
	}`)

	r, err := Compile(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.Overrides["tmp:t1"]; !ok {
		t.Errorf("forward reference unresolved; overrides: %v", r.Overrides)
	}
}

func TestCompile_StatusSugarAndUpdates(t *testing.T) {
	obj := decode(t, `{
		"ops": [
			{"op": "update_task", "target": "u1", "set": {"project": "inbox"}},
			{"op": "complete_task", "target": "u1"},
			{"op": "delete_task", "target": "u2"},
			{"op": "future_op", "payload": 42}
		]
	}`)

	r, err := Compile(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u1 := r.TaskUpdates["u1"]
	if u1["project"] != "inbox" || u1["status"] != "completed" {
		t.Errorf("TaskUpdates[u1] = %v, want merged project + completed status", u1)
	}
	if r.TaskUpdates["u2"]["status"] != "deleted" {
		t.Errorf("TaskUpdates[u2] = %v, want deleted status", r.TaskUpdates["u2"])
	}
	if len(r.Overrides) != 0 || len(r.AddedTasks) != 0 {
		t.Error("unknown op leaked into the result")
	}
}

func TestCompile_MinimumDurationIsOneMinute(t *testing.T) {
	obj := decode(t, `{
		"ops": [{"op": "place", "target": "u1",
			"start_iso": "2020-01-02T09:00:00Z", "due_iso": "2020-01-02T09:00:20Z"}]
	}`)

	r, err := Compile(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.Overrides["u1"].DurationMin; got != 1 {
		t.Errorf("DurationMin = %d, want the 1-minute floor", got)
	}
}

func TestCompile_Meta(t *testing.T) {
	obj := decode(t, `{
		"ops": [],
		"warnings": ["w1"], "notes": ["n1", "n2"], "model_id": "local-7b"
	}`)

	r, err := Compile(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.Warnings, []string{"w1"}) {
		t.Errorf("Warnings = %v", r.Warnings)
	}
	if !reflect.DeepEqual(r.Notes, []string{"n1", "n2"}) {
		t.Errorf("Notes = %v", r.Notes)
	}
	if r.ModelID != "local-7b" {
		t.Errorf("ModelID = %q", r.ModelID)
	}
}
