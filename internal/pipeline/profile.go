package pipeline

import (
	"strings"

	"github.com/jonathan/career-pilot/internal/types"
)

// Profile returns a copy of the current profile
func (c *Controller) Profile() types.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile.Clone()
}

// SetProfile replaces the whole profile
func (c *Controller) SetProfile(profile types.Profile) types.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := types.Profile{
		Name:       strings.TrimSpace(profile.Name),
		Experience: profile.Experience,
	}
	next.SetTitle(profile.Title)
	for _, skill := range profile.Skills {
		next.AddSkill(skill.Name, skill.Level)
	}
	c.profile = next
	return c.profile.Clone()
}

// SetTitle edits the target job title
func (c *Controller) SetTitle(title string) types.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile.SetTitle(title)
	return c.profile.Clone()
}

// AddSkill appends a skill. An empty level defaults to Intermediate.
// It reports false when the name is blank.
func (c *Controller) AddSkill(name string, level types.SkillLevel) (types.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	added := c.profile.AddSkill(name, level)
	return c.profile.Clone(), added
}

// RemoveSkill removes every skill with the given name and returns how many were removed
func (c *Controller) RemoveSkill(name string) (types.Profile, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := c.profile.RemoveSkill(name)
	return c.profile.Clone(), removed
}
