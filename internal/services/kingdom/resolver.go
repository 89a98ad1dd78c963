package kingdom

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mcoot/kingdom-bot/internal/model"
)

// Mapping pairs a Latin group-name fragment with the kingdom it stands for
type Mapping struct {
	Group   string
	Kingdom model.Kingdom
}

// DefaultMappings is the built-in kingdom table
var DefaultMappings = []Mapping{
	{Group: "FALORYA KINGDOM", Kingdom: "فالوريا"},
	{Group: "AZMAR KINGDOM", Kingdom: "ازمار"},
	{Group: "DIVALA KINGDOM", Kingdom: "ديفالا"},
}

// DefaultNativeNames are kingdom names matched verbatim in the group name
var DefaultNativeNames = []model.Kingdom{"فالوريا", "ازمار", "ديفالا"}

// Resolver maps group names to kingdoms
type Resolver struct {
	mappings []Mapping
	native   []model.Kingdom
}

// NewResolver creates a resolver. Nil tables fall back to the defaults.
func NewResolver(mappings []Mapping, native []model.Kingdom) *Resolver {
	if mappings == nil {
		mappings = DefaultMappings
	}
	if native == nil {
		native = DefaultNativeNames
	}
	upper := newUpper()
	normalized := make([]Mapping, len(mappings))
	for i, m := range mappings {
		normalized[i] = Mapping{Group: upper.String(m.Group), Kingdom: m.Kingdom}
	}
	return &Resolver{
		mappings: normalized,
		native:   append([]model.Kingdom(nil), native...),
	}
}

// Resolve returns the kingdom named by groupName.
// Latin entries are matched as upper-cased substrings in table order;
// native names are then matched against the original string.
func (r *Resolver) Resolve(groupName string) (model.Kingdom, bool) {
	if groupName == "" {
		return "", false
	}
	name := newUpper().String(groupName)
	for _, m := range r.mappings {
		if m.Group != "" && strings.Contains(name, m.Group) {
			return m.Kingdom, true
		}
	}
	for _, k := range r.native {
		if k != "" && strings.Contains(groupName, string(k)) {
			return k, true
		}
	}
	return "", false
}

// newUpper returns a fresh caser; a cases.Caser must not be shared across goroutines
func newUpper() cases.Caser {
	return cases.Upper(language.Und)
}
