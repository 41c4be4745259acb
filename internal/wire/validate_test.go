package wire

import (
	"encoding/json"
	"strings"
	"testing"
)

// decode builds the untrusted object tree the validator sees in
// production: everything passes through encoding/json first.
func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return obj
}

func reasons(t *testing.T, obj map[string]any) []string {
	t.Helper()
	violations := Validate(obj)
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = v.String()
	}
	return out
}

func TestValidate_SchemaDispatch(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantHit string // "" = no violations
	}{
		{
			name: "missing schema implies v1",
			raw:  `{"overrides": "not-an-object"}`,
			// The v1 rule fires, proving the v1 path ran.
			wantHit: "overrides: must be an object",
		},
		{
			name:    "explicit v1",
			raw:     `{"schema": "plan.v1", "overrides": {}}`,
			wantHit: "",
		},
		{
			name:    "unsupported schema",
			raw:     `{"schema": "plan.v9"}`,
			wantHit: "unsupported schema",
		},
		{
			name:    "non-string schema",
			raw:     `{"schema": 2}`,
			wantHit: "schema: must be a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reasons(t, decode(t, tt.raw))
			if tt.wantHit == "" {
				if len(got) != 0 {
					t.Errorf("Validate() = %v, want none", got)
				}
				return
			}
			if !anyContains(got, tt.wantHit) {
				t.Errorf("Validate() = %v, want a violation containing %q", got, tt.wantHit)
			}
		})
	}
}

func TestValidate_V1Shapes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantHit string
	}{
		{
			name:    "override entry not an object",
			raw:     `{"overrides": {"u1": 5}}`,
			wantHit: "overrides[u1]: must be an object",
		},
		{
			name:    "override start not numeric",
			raw:     `{"overrides": {"u1": {"start": "soon", "due": 120000}}}`,
			wantHit: "start must be epoch milliseconds",
		},
		{
			name:    "override fractional duration",
			raw:     `{"overrides": {"u1": {"start": 0, "due": 60000, "duration_min": 1.5}}}`,
			wantHit: "duration_min must be a whole number",
		},
		{
			name:    "added task missing status",
			raw:     `{"added_tasks": [{"uuid": "u1", "description": "x"}]}`,
			wantHit: "status must be a non-empty string",
		},
		{
			name:    "added task tags not a list",
			raw:     `{"added_tasks": [{"uuid": "u1", "description": "x", "status": "pending", "tags": "home"}]}`,
			wantHit: "tags must be a list",
		},
		{
			name:    "task_updates value not object",
			raw:     `{"task_updates": {"u1": "done"}}`,
			wantHit: "task_updates[u1]: must be an object",
		},
		{
			name:    "warnings with non-string entry",
			raw:     `{"warnings": ["ok", 3]}`,
			wantHit: "warnings[1]: must be a string",
		},
		{
			name:    "model_id not a string",
			raw:     `{"model_id": 7}`,
			wantHit: "model_id: must be a string",
		},
		{
			name:    "valid v1 plan",
			raw:     `{"overrides": {"u1": {"start": 0, "due": 1800000, "duration_min": 30}}, "warnings": [], "model_id": "m"}`,
			wantHit: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reasons(t, decode(t, tt.raw))
			if tt.wantHit == "" {
				if len(got) != 0 {
					t.Errorf("Validate() = %v, want none", got)
				}
				return
			}
			if !anyContains(got, tt.wantHit) {
				t.Errorf("Validate() = %v, want a violation containing %q", got, tt.wantHit)
			}
		})
	}
}

func TestValidate_V1AccumulatesAll(t *testing.T) {
	obj := decode(t, `{
		"overrides": {"u1": 5, "u2": {"start": "x", "due": "y"}},
		"added_tasks": [{"uuid": ""}],
		"model_id": 7
	}`)
	got := Validate(obj)
	if len(got) < 4 {
		t.Errorf("Validate() reported %d violations, want the full batch (>= 4): %v", len(got), got)
	}
}

func TestValidate_V2Ops(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantHit string
	}{
		{
			name:    "ops missing",
			raw:     `{"schema": "plan.v2"}`,
			wantHit: "ops: must be a list",
		},
		{
			name:    "op without tag",
			raw:     `{"schema": "plan.v2", "ops": [{"target": "u1"}]}`,
			wantHit: "op tag must be a string",
		},
		{
			name: "unknown op tag accepted",
			raw: `{"schema": "plan.v2", "ops": [
				{"op": "reticulate_splines", "intensity": 11}
			]}`,
			wantHit: "",
		},
		{
			name:    "create_task missing description",
			raw:     `{"schema": "plan.v2", "ops": [{"op": "create_task", "temp_id": "t1"}]}`,
			wantHit: "create_task requires description",
		},
		{
			name:    "place with neither slot nor explicit pair",
			raw:     `{"schema": "plan.v2", "ops": [{"op": "place", "target": "u1"}]}`,
			wantHit: "either slot_id or both",
		},
		{
			name: "place slot_id without catalog",
			raw: `{"schema": "plan.v2", "ops": [
				{"op": "place", "target": "u1", "slot_id": "S1"}
			]}`,
			wantHit: `slot_id "S1" requires a valid slot_catalog`,
		},
		{
			name: "place slot_id absent from catalog",
			raw: `{"schema": "plan.v2",
				"slot_catalog": {"S2": {"start": 60000000, "due": 61800000}},
				"ops": [{"op": "place", "target": "u1", "slot_id": "S1"}]}`,
			wantHit: `slot_id "S1" not present`,
		},
		{
			name: "catalog entry with due before start",
			raw: `{"schema": "plan.v2", "ops": [],
				"slot_catalog": {"S1": {"start": 100, "due": 100}}}`,
			wantHit: "slot_catalog[S1]: due must be after start",
		},
		{
			name: "valid v2 plan",
			raw: `{"schema": "plan.v2",
				"slot_catalog": {"S1": {"start": 60000000, "due": 61800000}},
				"ops": [
					{"op": "create_task", "temp_id": "t1", "description": "X", "duration_min": 30},
					{"op": "place", "target": "t1", "slot_id": "S1"},
					{"op": "complete_task", "target": "u9"}
				]}`,
			wantHit: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reasons(t, decode(t, tt.raw))
			if tt.wantHit == "" {
				if len(got) != 0 {
					t.Errorf("Validate() = %v, want none", got)
				}
				return
			}
			if !anyContains(got, tt.wantHit) {
				t.Errorf("Validate() = %v, want a violation containing %q", got, tt.wantHit)
			}
		})
	}
}

func anyContains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
