// Package vars loads and validates the variable bundle before it is handed
// to the import command, so a broken bundle fails the run without touching
// the metadata store.
package vars

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	bserrors "github.com/dataservices/airflow-bootstrap/internal/errors"
)

// Bundle is the parsed variable bundle: top-level variable names mapped to
// arbitrary values. The deployed bundle is JSON; YAML is a superset, so one
// decoder covers both.
type Bundle map[string]any

// Load reads and validates the bundle at path.
func Load(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variable bundle: %w", err)
	}

	var bundle Bundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parsing variable bundle %s: %w", path, err)
	}
	if len(bundle) == 0 {
		return nil, fmt.Errorf("%s: %w", path, bserrors.ErrEmptyBundle)
	}
	for key := range bundle {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%s: variable bundle has an empty key", path)
		}
	}
	return bundle, nil
}

// Keys returns the variable names in sorted order.
func (b Bundle) Keys() []string {
	keys := make([]string, 0, len(b))
	for key := range b {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
