package gurps

// PointsForAttributeLevel returns the point cost of an attribute at level.
// GURPS Basic Set 3rd Edition Revised, page 13.
func PointsForAttributeLevel(level int) int {
	switch {
	case level < 8:
		return (9 - level) * -10
	case level < 9:
		return -15
	case level < 14:
		return (level - 10) * 10
	case level < 15:
		return 45
	case level < 18:
		return (level - 12) * 20
	default:
		return (level - 13) * 25
	}
}

// PointsInStrength prices strength above its free levels.
func (c *Character) PointsInStrength() int {
	return PointsForAttributeLevel(c.Strength - c.Free.Strength)
}

// PointsInDexterity prices dexterity above its free levels.
func (c *Character) PointsInDexterity() int {
	return PointsForAttributeLevel(c.Dexterity - c.Free.Dexterity)
}

// PointsInIntelligence prices intelligence above its free levels.
func (c *Character) PointsInIntelligence() int {
	return PointsForAttributeLevel(c.Intelligence - c.Free.Intelligence)
}

// PointsInHealth prices health above its free levels.
func (c *Character) PointsInHealth() int {
	return PointsForAttributeLevel(c.Health - c.Free.Health)
}

// PointsInMagery is 0 without magery, otherwise 10 per level plus 5.
func (c *Character) PointsInMagery() int {
	if c.Magery == 0 {
		return 0
	}
	return c.Magery*10 + 5
}

// Fatigue is strength plus its bonus.
func (c *Character) Fatigue() int { return c.Strength + c.Bonus.Fatigue }

// Hitpoints is health plus its bonus.
func (c *Character) Hitpoints() int { return c.Health + c.Bonus.Hitpoints }

// Alertness is intelligence plus its bonus.
func (c *Character) Alertness() int { return c.Intelligence + c.Bonus.Alertness }

// Will is intelligence plus the willpower bonus.
func (c *Character) Will() int { return c.Intelligence + c.Bonus.Willpower }

// Fright is intelligence plus the fright check bonus.
func (c *Character) Fright() int { return c.Intelligence + c.Bonus.Fright }

// FatigueRemaining subtracts fatigue already spent from the fatigue pool.
func (c *Character) FatigueRemaining() float64 {
	return float64(c.Fatigue()) - c.UsedFatigue
}

// Initiative is (IQ+DX)/4 plus its bonus.
func (c *Character) Initiative() float64 {
	return float64(c.Intelligence+c.Dexterity)/4 + float64(c.Bonus.Initiative)
}
