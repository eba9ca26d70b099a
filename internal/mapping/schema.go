package mapping

import (
	"errors"
	"fmt"
)

// ProfileFile is the root of a YAML profile: mapper-wide options plus the
// declared type pair mappings, expressed against registered type names.
type ProfileFile struct {
	// Version of the profile schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Options are mapper-wide settings.
	Options OptionsDef `yaml:"options,omitempty"`

	// Mappings is a list of type pair mappings.
	Mappings []TypeMapDef `yaml:"mappings"`
}

// OptionsDef mirrors Profile in YAML form.
type OptionsDef struct {
	AllowNilCollections bool `yaml:"allowNilCollections,omitempty"`
}

// TypeMapDef declares how to map one source type to one destination type.
type TypeMapDef struct {
	// Source type name as registered with the engine (e.g. "store.Order").
	Source string `yaml:"source"`

	// Target type name as registered with the engine.
	Target string `yaml:"target"`

	// MaxDepth bounds recursion for self-referential types (0 = unbounded).
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// CheckContext requests the recursion-context pre-check before refill
	// loops mapping through this pair.
	CheckContext bool `yaml:"checkContext,omitempty"`

	// Members holds per-destination-member overrides; unlisted members map
	// by matching name.
	Members []MemberDef `yaml:"members,omitempty"`
}

// MemberDef declares one destination member override.
type MemberDef struct {
	// Target is the destination member name.
	Target string `yaml:"target"`

	// Source is a dotted path on the source type ("Address.City"); empty
	// means same-name lookup.
	Source string `yaml:"source,omitempty"`

	// UseDestinationValue mutates the existing destination value in place.
	UseDestinationValue bool `yaml:"useDestinationValue,omitempty"`

	// CanBeSet marks the destination member settable; defaults to true.
	CanBeSet *bool `yaml:"canBeSet,omitempty"`

	// Ignore skips the member.
	Ignore bool `yaml:"ignore,omitempty"`

	// NilSubstitute replaces the zero value when the source chain has a nil
	// link.
	NilSubstitute any `yaml:"nilSubstitute,omitempty"`
}

// Validate checks structural well-formedness: every mapping names both
// types, every member override names its target exactly once.
func (f *ProfileFile) Validate() error {
	if len(f.Mappings) == 0 {
		return errors.New("profile declares no mappings")
	}

	for i, tm := range f.Mappings {
		if tm.Source == "" || tm.Target == "" {
			return fmt.Errorf("mapping %d: source and target are required", i)
		}

		if tm.MaxDepth < 0 {
			return fmt.Errorf("mapping %s->%s: negative maxDepth", tm.Source, tm.Target)
		}

		seen := make(map[string]struct{}, len(tm.Members))

		for _, m := range tm.Members {
			if m.Target == "" {
				return fmt.Errorf("mapping %s->%s: member without target", tm.Source, tm.Target)
			}

			if _, dup := seen[m.Target]; dup {
				return fmt.Errorf("mapping %s->%s: duplicate member %q", tm.Source, tm.Target, m.Target)
			}

			seen[m.Target] = struct{}{}

			if m.Ignore && (m.Source != "" || m.UseDestinationValue || m.NilSubstitute != nil) {
				return fmt.Errorf("mapping %s->%s: member %q is ignored but configured",
					tm.Source, tm.Target, m.Target)
			}
		}
	}

	return nil
}
