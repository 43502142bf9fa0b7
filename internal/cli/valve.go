package cli

import (
	"fmt"
	"sort"
	"strings"
)

// valveFlag collects repeated -valve NAME=on|off settings.
type valveFlag map[string]bool

func (v valveFlag) String() string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		state := "off"
		if v[name] {
			state = "on"
		}
		parts[i] = name + "=" + state
	}
	return strings.Join(parts, ",")
}

func (v valveFlag) Set(s string) error {
	name, state, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("want NAME=on|off, got %q", s)
	}
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "on", "true", "1":
		v[name] = true
	case "off", "false", "0":
		v[name] = false
	default:
		return fmt.Errorf("valve %s: state must be on or off, got %q", name, state)
	}
	return nil
}
