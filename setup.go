package harness

import (
	"regexp"
	"strings"

	"github.com/unbound-force/harness/fault"
	"github.com/unbound-force/harness/instance"
	"github.com/unbound-force/harness/member"
)

const setupHelper = "harness.SetupTarget"

// Named is the part of *testing.T SetupTarget uses.
type Named interface {
	Name() string
}

// SetupTarget replaces the specification held by the suite's Target
// field with the subject it describes, and returns the subject. The
// suite must be a pointer, created afresh for every test.
//
// The specification is one of:
//
//	true                       the result of the suite's InitTarget method
//	false                      left as is
//	"Type", []any{"Type", ...} a type specification built with mapped arguments
//	map[string]any{
//		"default": {...},      // merged into every entry
//		"create": []any{{
//			"for":        "TestName*",    // patterns, default "*"
//			"target":     spec,
//			"reflection": "Type" | bool,  // build a descriptor instead
//			"callback":   "Method" | func() any,
//			"arguments":  []any{...},
//			"use":        "presetName",   // merged before the entry
//		}},
//		"presetName": {...},
//	}
//
// A pattern is matched against the test name, ignoring case; "*"
// matches any text. A pattern containing "|" matches
// "test|subtest", for example "TestSet*|alice".
func SetupTarget(t Named, suite any) (any, error) {
	acc := member.Of(suite)
	raw, ok := acc.Field("target")
	if !ok {
		return nil, nil
	}

	spec, err := selectSpec(t.Name(), raw)
	if err != nil || spec == nil {
		return nil, err
	}
	subject, err := setupInstance(suite, spec)
	if err != nil {
		return nil, err
	}
	if err := acc.SetField("target", subject); err != nil {
		return nil, fault.FromHelper(setupHelper, fault.TypeName(suite), "storing the target", err)
	}
	return subject, nil
}

func selectSpec(name string, raw any) (map[string]any, error) {
	m, isMap := instance.AsMap(raw)
	_, hasCreate := m["create"]
	_, hasDefault := m["default"]
	if !isMap || (!hasCreate && !hasDefault) {
		switch raw {
		case false, nil:
			return nil, nil
		case true:
			return map[string]any{"callback": "initTarget"}, nil
		}
		return map[string]any{"target": raw}, nil
	}

	defaults, err := specMap(m["default"], "default")
	if err != nil {
		return nil, err
	}
	entries, ok := instance.AsList(m["create"])
	if !ok && m["create"] != nil {
		return nil, fault.FromComponent(setupHelper, `"create" must be a list`)
	}
	for i, e := range entries {
		entry, err := specMap(e, "create entry")
		if err != nil {
			return nil, fault.FromComponent(setupHelper, "entry %d", i, err)
		}
		matched, err := matchesAny(name, entry["for"])
		if err != nil {
			return nil, fault.FromComponent(setupHelper, "entry %d", i, err)
		}
		if !matched {
			continue
		}
		var preset map[string]any
		if use, ok := entry["use"].(string); ok {
			if preset, err = specMap(m[use], "preset "+use); err != nil {
				return nil, err
			}
		}
		return merge(defaults, preset, entry), nil
	}
	if defaults != nil {
		return defaults, nil
	}
	return map[string]any{"callback": "initTarget"}, nil
}

func specMap(v any, what string) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := instance.AsMap(v)
	if !ok {
		return nil, fault.FromComponent(setupHelper, "%s must be a map, got %s", what, fault.TypeName(v))
	}
	return m, nil
}

func merge(maps ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func matchesAny(name string, patterns any) (bool, error) {
	if patterns == nil {
		patterns = "*"
	}
	list, ok := instance.AsList(patterns)
	if !ok {
		list = []any{patterns}
	}
	test, sub, _ := strings.Cut(name, "/")
	for _, p := range list {
		pattern, ok := p.(string)
		if !ok {
			return false, fault.Create(`"for" patterns must be strings, got %s`, fault.TypeName(p))
		}
		search := test
		if strings.Contains(pattern, "|") {
			search = test + "|" + sub
		}
		if matchPattern(pattern, search) {
			return true, nil
		}
	}
	return false, nil
}

// matchPattern reports whether s matches pattern, where "*" matches any
// text and everything else is literal.
func matchPattern(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	re := regexp.MustCompile("(?i)^" + strings.Join(parts, ".*") + "$")
	return re.MatchString(s)
}

// setupInstance builds the subject from one resolved specification.
func setupInstance(suite any, spec map[string]any) (any, error) {
	r := registryOf(suite)
	arguments := spec["arguments"]

	reflection := false
	switch v := spec["reflection"].(type) {
	case string:
		return r.BuildReflection(v)
	case bool:
		reflection = v
	}

	if cb, ok := spec["callback"]; ok && cb != nil && cb != false {
		result, err := callback(suite, cb)
		if err != nil {
			return nil, err
		}
		if !isSpecValue(result) {
			return result, nil
		}
		if reflection {
			return r.BuildReflection(result)
		}
		return r.WithMappedArguments(result, arguments, suite)
	}

	target := spec["target"]
	if target == nil || target == false || target == "" {
		return nil, nil
	}
	if reflection {
		return r.BuildReflection(target)
	}
	return r.WithMappedArguments(target, arguments, suite)
}

func callback(suite, cb any) (any, error) {
	if member.Callable(cb) {
		return member.Call(cb)
	}
	name, ok := cb.(string)
	acc := member.Of(suite)
	if !ok || !acc.HasMethod(name) {
		return nil, fault.FromHelper(setupHelper, fault.TypeName(suite), "Invalid callback.")
	}
	return acc.CallMethod(name)
}

// isSpecValue reports whether v is a type specification rather than a
// built object.
func isSpecValue(v any) bool {
	if _, ok := v.(string); ok {
		return true
	}
	return isCollection(v)
}
