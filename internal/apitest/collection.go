package apitest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// record is one stored entity. Records are plain JSON objects so one
// collection implementation serves every entity type.
type record map[string]any

func (r record) clone() record {
	out := make(record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r record) id() string {
	s, _ := r["id"].(string)
	return s
}

func (r record) deleted() bool {
	d, _ := r["is_deleted"].(bool)
	return d
}

// collection is an ordered in-memory record set for one endpoint.
type collection struct {
	records []record
}

type filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

type listQuery struct {
	page           int
	pageSize       int
	search         string
	sortBy         string
	sortDir        string
	includeDeleted bool
	filters        []filter
}

func (c *collection) insert(data record) record {
	rec := data.clone()
	if rec.id() == "" {
		rec["id"] = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	rec["created_at"] = now
	rec["updated_at"] = now
	rec["is_deleted"] = false
	if _, ok := rec["status"]; !ok {
		rec["status"] = "active"
	}
	rec["version"] = 1
	c.records = append(c.records, rec)
	return rec.clone()
}

func (c *collection) find(id string) (record, bool) {
	for _, rec := range c.records {
		if rec.id() == id {
			return rec, true
		}
	}
	return nil, false
}

func (c *collection) patch(id string, changes record) (record, bool) {
	rec, ok := c.find(id)
	if !ok {
		return nil, false
	}
	for k, v := range changes {
		if k == "id" || k == "created_at" || k == "version" {
			continue
		}
		rec[k] = v
	}
	rec["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	if ver, ok := rec["version"].(int); ok {
		rec["version"] = ver + 1
	}
	return rec.clone(), true
}

// remove soft-deletes by default and drops the record when hard is set.
func (c *collection) remove(id string, hard bool) bool {
	for i, rec := range c.records {
		if rec.id() != id {
			continue
		}
		if hard {
			c.records = append(c.records[:i], c.records[i+1:]...)
		} else {
			rec["is_deleted"] = true
			rec["updated_at"] = time.Now().UTC().Format(time.RFC3339)
		}
		return true
	}
	return false
}

func (c *collection) recover(id string) (record, bool) {
	rec, ok := c.find(id)
	if !ok {
		return nil, false
	}
	rec["is_deleted"] = false
	rec["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	return rec.clone(), true
}

// list applies visibility, filters, search, sort and pagination in that
// order and returns the page plus the filtered total.
func (c *collection) list(q listQuery) ([]record, int) {
	matched := make([]record, 0, len(c.records))
	for _, rec := range c.records {
		if rec.deleted() && !q.includeDeleted {
			continue
		}
		if !matchFilters(rec, q.filters) {
			continue
		}
		if q.search != "" && !matchSearch(rec, q.search) {
			continue
		}
		matched = append(matched, rec)
	}

	if q.sortBy != "" {
		desc := q.sortDir == "desc"
		sort.SliceStable(matched, func(i, j int) bool {
			less := compareValues(matched[i][q.sortBy], matched[j][q.sortBy]) < 0
			if desc {
				return !less
			}
			return less
		})
	}

	total := len(matched)
	if q.pageSize > 0 {
		page := q.page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * q.pageSize
		if start > total {
			start = total
		}
		end := start + q.pageSize
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}

	out := make([]record, len(matched))
	for i, rec := range matched {
		out[i] = rec.clone()
	}
	return out, total
}

func matchSearch(rec record, needle string) bool {
	needle = strings.ToLower(needle)
	for _, v := range rec {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func matchFilters(rec record, filters []filter) bool {
	for _, f := range filters {
		if !matchFilter(rec, f) {
			return false
		}
	}
	return true
}

func matchFilter(rec record, f filter) bool {
	val, present := rec[f.Field]
	switch f.Operator {
	case "eq":
		return compareValues(val, f.Value) == 0
	case "neq":
		return compareValues(val, f.Value) != 0
	case "gt":
		return compareValues(val, f.Value) > 0
	case "lt":
		return compareValues(val, f.Value) < 0
	case "gte":
		return compareValues(val, f.Value) >= 0
	case "lte":
		return compareValues(val, f.Value) <= 0
	case "like":
		s, _ := val.(string)
		sub, _ := f.Value.(string)
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	case "in":
		return valueIn(val, f.Value)
	case "not_in":
		return !valueIn(val, f.Value)
	case "is_null":
		return !present || val == nil
	case "is_not_null":
		return present && val != nil
	default:
		return false
	}
}

func valueIn(val, set any) bool {
	items, ok := set.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if compareValues(val, item) == 0 {
			return true
		}
	}
	return false
}

// compareValues orders two JSON values, numerically when both sides are
// numbers and lexically otherwise.
func compareValues(a, b any) int {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
