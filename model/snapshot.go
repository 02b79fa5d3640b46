package model

import "github.com/gurpsmanager/server/gurps"

// Snapshot converts a character and its preloaded rows into the value the
// gurps calculator reads. Rows must be loaded with Preload("Skills.Skill"),
// Preload("Spells.Spell"), Preload("Traits") and Preload("Possessions.Item").
func (c *Character) Snapshot() *gurps.Character {
	s := &gurps.Character{
		Name:         c.Name,
		Strength:     c.Strength,
		Dexterity:    c.Dexterity,
		Intelligence: c.Intelligence,
		Health:       c.Health,
		Magery:       c.Magery,
		Bonus: gurps.Bonuses{
			Fatigue:    c.BonusFatigue,
			Hitpoints:  c.BonusHitpoints,
			Alertness:  c.BonusAlertness,
			Willpower:  c.BonusWillpower,
			Fright:     c.BonusFright,
			Speed:      c.BonusSpeed,
			Movement:   c.BonusMovement,
			Dodge:      c.BonusDodge,
			Initiative: c.BonusInitiative,
		},
		Free: gurps.FreeLevels{
			Strength:     c.FreeStrength,
			Dexterity:    c.FreeDexterity,
			Intelligence: c.FreeIntelligence,
			Health:       c.FreeHealth,
		},
		UsedFatigue:   c.UsedFatigue,
		Appearance:    c.Appearance,
		Wealth:        c.Wealth,
		EideticMemory: c.EideticMemory,
		MuscleMemory:  c.MuscleMemory,
	}
	if c.TotalPoints != nil {
		s.TotalPoints = gurps.Budget(*c.TotalPoints)
	}

	s.Skills = make([]gurps.CharacterSkill, 0, len(c.Skills))
	for _, cs := range c.Skills {
		s.Skills = append(s.Skills, cs.Snapshot())
	}
	s.Spells = make([]gurps.CharacterSpell, 0, len(c.Spells))
	for _, cs := range c.Spells {
		s.Spells = append(s.Spells, cs.Snapshot())
	}
	s.Traits = make([]gurps.Trait, 0, len(c.Traits))
	for _, t := range c.Traits {
		s.Traits = append(s.Traits, t.Snapshot())
	}
	s.Possessions = make([]gurps.Possession, 0, len(c.Possessions))
	for _, p := range c.Possessions {
		s.Possessions = append(s.Possessions, p.Snapshot())
	}
	return s
}

func (s Skill) Snapshot() gurps.Skill {
	return gurps.Skill{
		Name:               s.Name,
		Category:           gurps.SkillCategory(s.Category),
		Difficulty:         gurps.Difficulty(s.Difficulty),
		GrantsRunningBonus: s.GrantsRunningBonus,
	}
}

func (cs CharacterSkill) Snapshot() gurps.CharacterSkill {
	return gurps.CharacterSkill{Skill: cs.Skill.Snapshot(), Points: cs.Points, BonusLevel: cs.BonusLevel}
}

func (cs CharacterSpell) Snapshot() gurps.CharacterSpell {
	return gurps.CharacterSpell{
		Spell:      gurps.Spell{Name: cs.Spell.Name, Difficulty: gurps.Difficulty(cs.Spell.Difficulty)},
		Points:     cs.Points,
		BonusLevel: cs.BonusLevel,
	}
}

func (t Trait) Snapshot() gurps.Trait {
	return gurps.Trait{Name: t.Name, Points: t.Points}
}

func (i Item) Snapshot() gurps.Item {
	return gurps.Item{Name: i.Name, Weight: i.Weight, Value: i.Value}
}

func (p Possession) Snapshot() gurps.Possession {
	return gurps.Possession{Item: p.Item.Snapshot(), Quantity: p.Quantity}
}
