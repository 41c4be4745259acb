package wire

import (
	"fmt"
	"sort"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/plan"
)

// maxScanEntries bounds how many entries of any wire array or object the
// validator inspects. Entries past the bound are admitted uninspected;
// validation is best-effort and bounded, not exhaustive, so adversarial
// or buggy planner output cannot make it arbitrarily expensive.
const maxScanEntries = 5000

// Validate checks an untrusted plan object against whichever schema its
// discriminator names (v1 when absent) and returns every violation
// found. An empty result means the object may be decoded or compiled.
func Validate(obj map[string]any) []plan.Violation {
	schema := str(obj["schema"])
	if _, present := obj["schema"]; present && schema == "" {
		return []plan.Violation{{Path: "schema", Reason: "must be a string"}}
	}
	switch schema {
	case "", SchemaV1:
		return validateV1(obj)
	case SchemaV2:
		return validateV2(obj)
	default:
		return []plan.Violation{{Path: "schema", Reason: fmt.Sprintf("unsupported schema %q", schema)}}
	}
}

func validateV1(obj map[string]any) []plan.Violation {
	var out []plan.Violation

	if v, present := obj["overrides"]; present {
		m, ok := v.(map[string]any)
		if !ok {
			out = append(out, plan.Violation{Path: "overrides", Reason: "must be an object keyed by task uuid"})
		} else {
			for _, uuid := range cappedKeys(m) {
				path := fmt.Sprintf("overrides[%s]", uuid)
				entry, ok := m[uuid].(map[string]any)
				if !ok {
					out = append(out, plan.Violation{Path: path, Reason: "must be an object"})
					continue
				}
				if _, ok := wholeNumber(entry["start"]); !ok {
					out = append(out, plan.Violation{Path: path, Reason: "start must be epoch milliseconds"})
				}
				if _, ok := wholeNumber(entry["due"]); !ok {
					out = append(out, plan.Violation{Path: path, Reason: "due must be epoch milliseconds"})
				}
				if dv, present := entry["duration_min"]; present {
					if _, ok := wholeNumber(dv); !ok {
						out = append(out, plan.Violation{Path: path, Reason: "duration_min must be a whole number"})
					}
				}
			}
		}
	}

	if v, present := obj["added_tasks"]; present {
		list, ok := v.([]any)
		if !ok {
			out = append(out, plan.Violation{Path: "added_tasks", Reason: "must be a list"})
		} else {
			for i, raw := range list {
				if i >= maxScanEntries {
					break
				}
				path := fmt.Sprintf("added_tasks[%d]", i)
				entry, ok := raw.(map[string]any)
				if !ok {
					out = append(out, plan.Violation{Path: path, Reason: "must be an object"})
					continue
				}
				for _, field := range []string{"uuid", "description", "status"} {
					if str(entry[field]) == "" {
						out = append(out, plan.Violation{Path: path, Reason: fmt.Sprintf("%s must be a non-empty string", field)})
					}
				}
				if tv, present := entry["tags"]; present {
					if _, ok := tv.([]any); !ok {
						out = append(out, plan.Violation{Path: path, Reason: "tags must be a list"})
					}
				}
			}
		}
	}

	if v, present := obj["task_updates"]; present {
		m, ok := v.(map[string]any)
		if !ok {
			out = append(out, plan.Violation{Path: "task_updates", Reason: "must be an object keyed by task uuid"})
		} else {
			for _, uuid := range cappedKeys(m) {
				if _, ok := m[uuid].(map[string]any); !ok {
					out = append(out, plan.Violation{Path: fmt.Sprintf("task_updates[%s]", uuid), Reason: "must be an object"})
				}
			}
		}
	}

	out = append(out, validateMeta(obj)...)
	return out
}

func validateV2(obj map[string]any) []plan.Violation {
	var out []plan.Violation

	catalog, catalogOK, catalogViolations := validateCatalog(obj)
	out = append(out, catalogViolations...)

	rawOps, ok := obj["ops"].([]any)
	if !ok {
		out = append(out, plan.Violation{Path: "ops", Reason: "must be a list of op objects"})
	} else {
		for i, raw := range rawOps {
			if i >= maxScanEntries {
				break
			}
			path := fmt.Sprintf("ops[%d]", i)
			m, ok := raw.(map[string]any)
			if !ok {
				out = append(out, plan.Violation{Path: path, Reason: "must be an object"})
				continue
			}
			if _, ok := m["op"].(string); !ok {
				out = append(out, plan.Violation{Path: path, Reason: "op tag must be a string"})
				continue
			}
			op, err := parseOp(i, m)
			if err != nil {
				out = append(out, plan.Violation{Path: path, Reason: shapeReason(err)})
				continue
			}
			// The one cross-field check: a slot reference is only valid
			// against a catalog that actually carries it.
			if p, isPlace := op.(Place); isPlace && p.SlotID != "" {
				if !catalogOK {
					out = append(out, plan.Violation{Path: path, Reason: fmt.Sprintf("slot_id %q requires a valid slot_catalog", p.SlotID)})
				} else if _, found := catalog[p.SlotID]; !found {
					out = append(out, plan.Violation{Path: path, Reason: fmt.Sprintf("slot_id %q not present in slot_catalog", p.SlotID)})
				}
			}
		}
	}

	out = append(out, validateMeta(obj)...)
	return out
}

// validateCatalog checks slot_catalog shape. It returns the set of valid
// slot ids so place ops can be cross-checked, and reports whether a
// usable catalog exists at all.
func validateCatalog(obj map[string]any) (map[string]struct{}, bool, []plan.Violation) {
	v, present := obj["slot_catalog"]
	if !present {
		return nil, false, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false, []plan.Violation{{Path: "slot_catalog", Reason: "must be an object keyed by slot id"}}
	}
	var out []plan.Violation
	valid := make(map[string]struct{}, len(m))
	for _, id := range cappedKeys(m) {
		path := fmt.Sprintf("slot_catalog[%s]", id)
		entry, ok := m[id].(map[string]any)
		if !ok {
			out = append(out, plan.Violation{Path: path, Reason: "must be an object"})
			continue
		}
		start, okStart := wholeNumber(entry["start"])
		due, okDue := wholeNumber(entry["due"])
		if !okStart || !okDue {
			out = append(out, plan.Violation{Path: path, Reason: "start and due must be epoch milliseconds"})
			continue
		}
		if due <= start {
			out = append(out, plan.Violation{Path: path, Reason: "due must be after start"})
			continue
		}
		valid[id] = struct{}{}
	}
	return valid, true, out
}

// validateMeta checks the shapes shared by both schemas: warnings, notes
// and model_id.
func validateMeta(obj map[string]any) []plan.Violation {
	var out []plan.Violation
	for _, field := range []string{"warnings", "notes"} {
		v, present := obj[field]
		if !present {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			out = append(out, plan.Violation{Path: field, Reason: "must be a list of strings"})
			continue
		}
		for i, e := range list {
			if i >= maxScanEntries {
				break
			}
			if _, ok := e.(string); !ok {
				out = append(out, plan.Violation{Path: fmt.Sprintf("%s[%d]", field, i), Reason: "must be a string"})
			}
		}
	}
	if v, present := obj["model_id"]; present && v != nil {
		if _, ok := v.(string); !ok {
			out = append(out, plan.Violation{Path: "model_id", Reason: "must be a string"})
		}
	}
	return out
}

// cappedKeys returns at most maxScanEntries keys in sorted order, so
// violation reports are deterministic.
func cappedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxScanEntries {
		keys = keys[:maxScanEntries]
	}
	return keys
}

// shapeReason strips the sentinel prefix from a parse error for use as a
// violation reason.
func shapeReason(err error) string {
	return err.Error()
}
