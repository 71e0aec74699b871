package quality

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownConstellation is returned when a selection names an unsupported
// constellation code.
var ErrUnknownConstellation = errors.New("unknown constellation")

// Selection is the set of dimensions picked by the user for one chart.
type Selection struct {
	Dataset        string
	Site           string
	Metric         Metric
	Constellations []Constellation
}

// ParseConstellations parses constellation codes. Each value may itself be a
// comma-separated list ("G,R"). Duplicates are dropped; order is kept.
func ParseConstellations(values []string) ([]Constellation, error) {
	seen := make(map[Constellation]struct{})
	out := []Constellation{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			c, ok := ParseConstellation(part)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownConstellation, strings.TrimSpace(part))
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}

// Includes reports whether the selection contains constellation c.
func (s Selection) Includes(c Constellation) bool {
	for _, sc := range s.Constellations {
		if sc == c {
			return true
		}
	}
	return false
}
