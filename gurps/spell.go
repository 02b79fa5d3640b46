package gurps

// SpellScore returns the character's level in a learned spell. Spells use the
// mental skill bands on raw points; intelligence, magery and eidetic memory
// set the base.
func SpellScore(c *Character, cs CharacterSpell) float64 {
	base := c.Intelligence + c.Magery + c.EideticMemory/30
	return mentalScore(base, cs.Spell.Difficulty, cs.Points)
}
