package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// Loads a YAML configuration file into a kong resolver.
//
// Top-level keys are matched against flag names, with underscores accepted
// in place of dashes. Lists are joined with commas so they can be parsed by
// slice flags. An empty file resolves nothing.
func configLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid configuration file: %w", err)
	}

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		raw, ok := values[flag.Name]
		if !ok {
			raw, ok = values[strings.ReplaceAll(flag.Name, "-", "_")]
		}
		if !ok {
			return nil, nil
		}
		return configValue(raw), nil
	}), nil
}

// Converts a decoded YAML value into the string form kong parses.
func configValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = configValue(item)
		}
		return strings.Join(items, ",")
	default:
		return fmt.Sprint(v)
	}
}
