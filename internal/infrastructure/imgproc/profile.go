package imgproc

import (
	"fmt"
)

// FitMode controls how a source image is mapped onto the profile's target box.
type FitMode string

const (
	// FitCover crops symmetrically so the target box is filled completely.
	FitCover FitMode = "cover"
	// FitContain keeps the full image inside the box, never upscaling.
	FitContain FitMode = "contain"
)

// Asset categories known to the registry.
const (
	CategoryMenuItem = "menu-item"
	CategoryBanner   = "banner"
	CategoryLogo     = "logo"
)

// Profile describes the sizing and quality targets for one asset category.
// Profiles are read-only configuration, never mutated at runtime.
type Profile struct {
	Category       string
	TargetWidth    int
	TargetHeight   int
	Fit            FitMode
	InitialQuality int // 1-100
	MinSizeKB      int
	MaxSizeKB      int
	MaxIterations  int
}

// Registry is the static per-category profile table. Built once at startup,
// safe for concurrent reads.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry returns a registry with the built-in profile table.
func NewRegistry() *Registry {
	return &Registry{
		profiles: map[string]Profile{
			CategoryMenuItem: {
				Category:       CategoryMenuItem,
				TargetWidth:    600,
				TargetHeight:   400,
				Fit:            FitCover,
				InitialQuality: 80,
				MinSizeKB:      70,
				MaxSizeKB:      150,
				MaxIterations:  15,
			},
			CategoryBanner: {
				Category:       CategoryBanner,
				TargetWidth:    1200,
				TargetHeight:   400,
				Fit:            FitCover,
				InitialQuality: 80,
				MinSizeKB:      100,
				MaxSizeKB:      200,
				MaxIterations:  15,
			},
			CategoryLogo: {
				Category:       CategoryLogo,
				TargetWidth:    400,
				TargetHeight:   400,
				Fit:            FitContain,
				InitialQuality: 85,
				MinSizeKB:      60,
				MaxSizeKB:      100,
				MaxIterations:  15,
			},
		},
	}
}

// ProfileOverride carries optional per-category tweaks loaded from environment
// configuration. Zero fields are ignored.
type ProfileOverride struct {
	Category       string
	MinSizeKB      int
	MaxSizeKB      int
	InitialQuality int
	MaxIterations  int
}

// NewRegistryWithOverrides applies environment overrides on top of the
// built-in table. Overrides for unknown categories are rejected so a typo in
// deployment config surfaces at startup instead of silently doing nothing.
func NewRegistryWithOverrides(overrides []ProfileOverride) (*Registry, error) {
	r := NewRegistry()
	for _, o := range overrides {
		p, ok := r.profiles[o.Category]
		if !ok {
			return nil, fmt.Errorf("profile override for unknown category %q", o.Category)
		}
		if o.MinSizeKB > 0 {
			p.MinSizeKB = o.MinSizeKB
		}
		if o.MaxSizeKB > 0 {
			p.MaxSizeKB = o.MaxSizeKB
		}
		if o.InitialQuality > 0 {
			p.InitialQuality = o.InitialQuality
		}
		if o.MaxIterations > 0 {
			p.MaxIterations = o.MaxIterations
		}
		if p.MinSizeKB > p.MaxSizeKB {
			return nil, fmt.Errorf("profile %q: min size %dKB exceeds max %dKB", o.Category, p.MinSizeKB, p.MaxSizeKB)
		}
		r.profiles[o.Category] = p
	}
	return r, nil
}

// Lookup returns the profile for a category. An unknown category is a
// programmer error, not user input, so it fails fast.
func (r *Registry) Lookup(category string) (Profile, error) {
	p, ok := r.profiles[category]
	if !ok {
		return Profile{}, fmt.Errorf("no compression profile registered for category %q", category)
	}
	return p, nil
}

// Categories returns the registered category names.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.profiles))
	for c := range r.profiles {
		out = append(out, c)
	}
	return out
}
