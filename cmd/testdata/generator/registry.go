package generator

import (
	"fmt"
	"slices"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// Registry maps executor names to generator factories. Factories allow
// parameterization (e.g. UserCount).
var Registry = map[string]func() Generator{
	"actioncount": func() Generator { return &ActionCountGenerator{UserCount: 100} },
	"wordcount":   func() Generator { return &ActionCountGenerator{UserCount: 100} }, // Same format as actioncount
	"maxvalue":    func() Generator { return &MaxValueGenerator{KeyCount: 10} },
	"average":     func() Generator { return &MaxValueGenerator{KeyCount: 10} }, // Same format as maxvalue
	"urldedup":    func() Generator { return &URLDedupGenerator{} },
	"titleindex":  func() Generator { return &TitleIndexGenerator{} },
}

// Get returns a generator by name
func Get(name string) (Generator, error) {
	factory, exists := Registry[name]
	if !exists {
		return nil, fmt.Errorf("%w: no generator for %s", execreduce.ErrUnknownExecutor, name)
	}
	return factory(), nil
}

// List returns all available generator names, sorted
func List() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SetUserCount updates the UserCount for ActionCountGenerator
func SetUserCount(name string, count int) {
	if name == "actioncount" || name == "wordcount" {
		Registry[name] = func() Generator { return &ActionCountGenerator{UserCount: count} }
	}
}

// SetKeyCount updates the KeyCount for MaxValueGenerator
func SetKeyCount(name string, count int) {
	if name == "maxvalue" || name == "average" {
		Registry[name] = func() Generator { return &MaxValueGenerator{KeyCount: count} }
	}
}
