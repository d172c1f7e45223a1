// Package types provides type definitions for structured data used throughout the career pilot.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// SkillLevel is the self-assessed proficiency for a skill
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "Beginner"
	LevelIntermediate SkillLevel = "Intermediate"
	LevelExpert       SkillLevel = "Expert"
)

// Skill is a single entry of the candidate's skill list. Name acts as the key.
type Skill struct {
	Name  string     `json:"name" validate:"required"`
	Level SkillLevel `json:"level" validate:"omitempty,oneof=Beginner Intermediate Expert"`
}

// Profile is the job seeker's skills profile. Skills keep insertion order.
type Profile struct {
	Name       string  `json:"name"`
	Title      string  `json:"title" validate:"required"`
	Skills     []Skill `json:"skills" validate:"min=1,dive"`
	Experience string  `json:"experience"`
}

// AddSkill appends a skill. Blank names are ignored and an empty level
// defaults to Intermediate. Returns false when nothing was added.
func (p *Profile) AddSkill(name string, level SkillLevel) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if level == "" {
		level = LevelIntermediate
	}
	p.Skills = append(p.Skills, Skill{Name: name, Level: level})
	return true
}

// RemoveSkill drops every skill with the given name and returns how many were removed.
func (p *Profile) RemoveSkill(name string) int {
	kept := p.Skills[:0]
	removed := 0
	for _, s := range p.Skills {
		if s.Name == name {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	p.Skills = kept
	return removed
}

// SetTitle replaces the target job title
func (p *Profile) SetTitle(title string) {
	p.Title = title
}

// SkillNames returns skill names in insertion order
func (p Profile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return names
}

// Validate checks that the profile is complete enough to run discovery:
// a non-empty title and at least one skill.
func (p Profile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// Ready reports whether Validate passes
func (p Profile) Ready() bool {
	return p.Validate() == nil
}

// Clone returns a copy that shares no slices with p
func (p Profile) Clone() Profile {
	out := p
	out.Skills = append([]Skill(nil), p.Skills...)
	return out
}
