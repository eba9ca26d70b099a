package remap

import (
	"fmt"

	"remap/internal/mapping"
)

// LoadProfile reads a YAML profile from path and applies it to the
// configuration. Type names in the profile must have been registered with
// RegisterTypeName beforehand.
func (c *Config) LoadProfile(path string) error {
	pf, err := mapping.LoadFile(path)
	if err != nil {
		return err
	}

	return c.ApplyProfile(pf)
}

// ParseProfile applies an in-memory YAML profile.
func (c *Config) ParseProfile(data []byte) error {
	pf, err := mapping.Parse(data)
	if err != nil {
		return err
	}

	return c.ApplyProfile(pf)
}

// ApplyProfile turns a parsed profile into type map declarations.
func (c *Config) ApplyProfile(pf *mapping.ProfileFile) error {
	c.profile.AllowNilCollections = pf.Options.AllowNilCollections

	for _, def := range pf.Mappings {
		src, ok := c.names[def.Source]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTypeName, def.Source)
		}

		dst, ok := c.names[def.Target]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTypeName, def.Target)
		}

		opts := make([]MapOption, 0, len(def.Members)+2)

		if def.MaxDepth > 0 {
			opts = append(opts, MaxDepth(def.MaxDepth))
		}

		if def.CheckContext {
			opts = append(opts, CheckContext())
		}

		for _, m := range def.Members {
			opts = append(opts, Member(MemberDef{
				Target:              m.Target,
				Source:              m.Source,
				UseDestinationValue: m.UseDestinationValue,
				CanBeSet:            m.CanBeSet,
				Ignore:              m.Ignore,
				NilSubstitute:       m.NilSubstitute,
			}))
		}

		if err := c.CreateMap(src, dst, opts...); err != nil {
			return err
		}
	}

	return nil
}
