// Package pin resolves GPIO pin numbers to the human-readable labels used
// in the device logs.
package pin

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// builtinLabels maps the andon tower pins to their fixed labels.
// These match the wiring of the standard monitor build.
var builtinLabels = map[int]string{
	23: "Green",
	24: "Yellow",
	25: "Red",
	12: "Load",
}

// Resolver maps pin numbers to labels. The mapping is immutable after
// construction, so a Resolver is safe for concurrent use.
type Resolver struct {
	labels map[int]string
}

// NewResolver returns a Resolver using the built-in pin labels.
func NewResolver() *Resolver {
	return &Resolver{labels: builtinLabels}
}

// NewResolverFromFile returns a Resolver with site-specific label overrides
// loaded from a YAML file and merged over the built-in labels. The file is
// a flat mapping of pin number to label:
//
//	23: Green
//	17: Hopper Low
//
// Parameters:
//   - path: Path to the YAML overrides file
//
// Returns:
//   - *Resolver: Resolver with merged labels
//   - error: If the file cannot be read or parsed
func NewResolverFromFile(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pin labels file: %w", err)
	}

	overrides := make(map[int]string)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing pin labels file: %w", err)
	}

	labels := make(map[int]string, len(builtinLabels)+len(overrides))
	for p, label := range builtinLabels {
		labels[p] = label
	}
	for p, label := range overrides {
		labels[p] = label
	}

	return &Resolver{labels: labels}, nil
}

// Resolve returns the label for a pin. Unknown pins get a synthesised
// "Pin_<n>" label so every event remains attributable.
func (r *Resolver) Resolve(pin int) string {
	if label, ok := r.labels[pin]; ok {
		return label
	}
	return fmt.Sprintf("Pin_%d", pin)
}
