package designpatch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"irrigation-engine/internal/model"
)

// Diff returns the RFC 6902 style operations that turn before into after. Both values
// are taken through their JSON form so paths use the wire field names. Operations are
// ordered by path.
func Diff(before, after interface{}) ([]model.DesignChange, error) {
	a, err := toGeneric(before)
	if err != nil {
		return nil, fmt.Errorf("encode original: %w", err)
	}
	b, err := toGeneric(after)
	if err != nil {
		return nil, fmt.Errorf("encode candidate: %w", err)
	}
	ops := diff(a, b, "")
	if ops == nil {
		ops = []model.DesignChange{}
	}
	return ops, nil
}

func toGeneric(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func diff(a, b interface{}, path string) []model.DesignChange {
	if a == nil && b == nil {
		return nil
	}
	if a == nil || b == nil {
		return []model.DesignChange{replaceOp(path, a, b)}
	}

	aMap, aIsMap := a.(map[string]interface{})
	bMap, bIsMap := b.(map[string]interface{})
	if aIsMap && bIsMap {
		return diffObjects(aMap, bMap, path)
	}

	aArr, aIsArr := a.([]interface{})
	bArr, bIsArr := b.([]interface{})
	if aIsArr && bIsArr {
		return diffArrays(aArr, bArr, path)
	}

	if a != b {
		return []model.DesignChange{replaceOp(path, a, b)}
	}
	return nil
}

func diffObjects(a, b map[string]interface{}, path string) []model.DesignChange {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var ops []model.DesignChange
	for _, k := range keys {
		child := path + "/" + escapeKey(k)
		av, inA := a[k]
		bv, inB := b[k]
		switch {
		case !inB:
			ops = append(ops, model.DesignChange{Op: "remove", Path: child, Previous: av})
		case !inA:
			ops = append(ops, model.DesignChange{Op: "add", Path: child, Value: bv})
		default:
			ops = append(ops, diff(av, bv, child)...)
		}
	}
	return ops
}

func diffArrays(a, b []interface{}, path string) []model.DesignChange {
	var ops []model.DesignChange
	common := len(a)
	if len(b) < common {
		common = len(b)
	}
	for i := 0; i < common; i++ {
		ops = append(ops, diff(a[i], b[i], path+"/"+strconv.Itoa(i))...)
	}
	// removals from the tail so earlier indexes stay valid
	for i := len(a) - 1; i >= common; i-- {
		ops = append(ops, model.DesignChange{Op: "remove", Path: path + "/" + strconv.Itoa(i), Previous: a[i]})
	}
	for i := common; i < len(b); i++ {
		ops = append(ops, model.DesignChange{Op: "add", Path: path + "/" + strconv.Itoa(i), Value: b[i]})
	}
	return ops
}

func replaceOp(path string, previous, value interface{}) model.DesignChange {
	return model.DesignChange{Op: "replace", Path: path, Value: value, Previous: previous}
}

// escapeKey escapes a JSON Pointer token per RFC 6901.
func escapeKey(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}
