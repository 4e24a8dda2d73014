package taint

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/asyncreach/internal/model"
)

// Exemptions is an allow-list of trimmed display names through which taint
// must not propagate: known-safe synchronous bridges into async code, such
// as shims that spawn a fresh runtime per call.
type Exemptions map[string]struct{}

// ParseExemptions builds an exemption set from a comma-separated list of
// display names. Empty elements are ignored.
func ParseExemptions(list string) Exemptions {
	ex := make(Exemptions)
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			ex[name] = struct{}{}
		}
	}
	return ex
}

// LoadExemptionsFile reads an exemption set from a YAML file containing a
// list of display names.
func LoadExemptionsFile(path string) (Exemptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	ex := make(Exemptions, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			ex[name] = struct{}{}
		}
	}
	return ex, nil
}

// Merge adds every name in other to e.
func (e Exemptions) Merge(other Exemptions) {
	for name := range other {
		e[name] = struct{}{}
	}
}

// Exempt reports whether the trimmed display form of sym is exempted.
func (e Exemptions) Exempt(sym string) bool {
	if len(e) == 0 {
		return false
	}
	_, ok := e[model.TrimSymbol(sym)]
	return ok
}
