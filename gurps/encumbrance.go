package gurps

import "math"

// Encumbrance tier upper bounds, as multiples of strength.
const (
	noEncumbranceFactor         = 2
	lightEncumbranceFactor      = 4
	mediumEncumbranceFactor     = 6
	heavyEncumbranceFactor      = 12
	extraHeavyEncumbranceFactor = 20
)

// The tier limits are the heaviest load, in pounds, carried at each level.

// NoEncumbrance is the load carried without penalty.
func (c *Character) NoEncumbrance() int { return c.Strength * noEncumbranceFactor }

// LightEncumbrance is the limit of light encumbrance.
func (c *Character) LightEncumbrance() int { return c.Strength * lightEncumbranceFactor }

// MediumEncumbrance is the limit of medium encumbrance.
func (c *Character) MediumEncumbrance() int { return c.Strength * mediumEncumbranceFactor }

// HeavyEncumbrance is the limit of heavy encumbrance.
func (c *Character) HeavyEncumbrance() int { return c.Strength * heavyEncumbranceFactor }

// ExtraHeavyEncumbrance is the most a character can carry.
func (c *Character) ExtraHeavyEncumbrance() int { return c.Strength * extraHeavyEncumbranceFactor }

// TotalPossessionWeight sums item weight times quantity.
func (c *Character) TotalPossessionWeight() float64 {
	var total float64
	for _, p := range c.Possessions {
		total += p.Item.Weight * float64(p.Quantity)
	}
	return total
}

// TotalPossessionValue sums item value times quantity.
func (c *Character) TotalPossessionValue() float64 {
	var total float64
	for _, p := range c.Possessions {
		total += p.Item.Value * float64(p.Quantity)
	}
	return total
}

// EncumbrancePenalty returns the movement penalty for the carried weight.
// GURPS Basic Set 3rd Edition Revised, page 76.
//
// Past extra-heavy the penalty is chosen so that Movement comes out at -1,
// which callers treat as over-encumbered.
func (c *Character) EncumbrancePenalty() (int, error) {
	w := c.TotalPossessionWeight()
	tiers := []int{
		c.NoEncumbrance(),
		c.LightEncumbrance(),
		c.MediumEncumbrance(),
		c.HeavyEncumbrance(),
		c.ExtraHeavyEncumbrance(),
	}
	for penalty, limit := range tiers {
		if w < float64(limit) {
			return penalty, nil
		}
	}
	speed, err := c.Speed()
	if err != nil {
		return 0, err
	}
	return int(math.Floor(speed)) + c.Bonus.Movement + 1, nil
}

// OverEncumbered reports whether the carried weight reaches extra-heavy.
func (c *Character) OverEncumbered() bool {
	return c.TotalPossessionWeight() >= float64(c.ExtraHeavyEncumbrance())
}

// Speed is (DX+HT)/4 plus the speed bonus, plus one eighth of the running
// skill score when the character knows a running skill.
func (c *Character) Speed() (float64, error) {
	speed := float64(c.Dexterity+c.Health)/4 + float64(c.Bonus.Speed)
	for _, cs := range c.Skills {
		if !cs.Skill.GrantsRunningBonus {
			continue
		}
		score, err := SkillScore(c, cs)
		if err != nil {
			return 0, err
		}
		speed += score / 8
		break
	}
	return speed, nil
}

// Movement is floor(Speed) less the encumbrance penalty, plus its bonus.
func (c *Character) Movement() (int, error) {
	return c.speedMinusPenalty(c.Bonus.Movement)
}

// Dodge is floor(Speed) less the encumbrance penalty, plus its bonus.
func (c *Character) Dodge() (int, error) {
	return c.speedMinusPenalty(c.Bonus.Dodge)
}

func (c *Character) speedMinusPenalty(bonus int) (int, error) {
	speed, err := c.Speed()
	if err != nil {
		return 0, err
	}
	penalty, err := c.EncumbrancePenalty()
	if err != nil {
		return 0, err
	}
	return int(math.Floor(speed)) - penalty + bonus, nil
}
