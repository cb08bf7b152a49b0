package manifest

import (
	"github.com/imdario/mergo"
)

// Dependencies maps a package name to a version specifier.
type Dependencies map[string]string

func (d Dependencies) clone() Dependencies {
	out := make(Dependencies, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Step is one merge step. A step never modifies its input; it returns a new
// mapping.
type Step func(Dependencies) Dependencies

// Fold applies steps left to right starting from an empty mapping. Values
// set by later steps take precedence over values set by earlier ones.
func Fold(steps ...Step) Dependencies {
	d := Dependencies{}
	for _, step := range steps {
		d = step(d)
	}
	return d
}

// Overlay copies every entry of src, replacing existing values on collision.
func Overlay(src Dependencies) Step {
	return func(in Dependencies) Dependencies {
		out := in.clone()
		if len(src) == 0 {
			return out
		}
		if err := mergo.Merge(&out, src.clone(), mergo.WithOverride); err != nil {
			// Merging two maps of the same type cannot fail.
			panic(err)
		}
		return out
	}
}

// Baseline seeds the mapping with default specifiers.
func Baseline(seed Dependencies) Step {
	return Overlay(seed)
}

// Resolve sets each name to its installed version. Names the lookup cannot
// find keep whatever value they already had, or stay absent.
func Resolve(lookup VersionLookup, names ...string) Step {
	return func(in Dependencies) Dependencies {
		out := in.clone()
		for _, name := range names {
			if v, ok := lookup.InstalledVersion(name); ok {
				out[name] = v
			}
		}
		return out
	}
}
