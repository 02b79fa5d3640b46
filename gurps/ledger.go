package gurps

// Ledger breaks a character's point spend into its buckets.
type Ledger struct {
	Attributes    int     `json:"attributes"`
	Skills        float64 `json:"skills"`
	Spells        float64 `json:"spells"`
	Advantages    float64 `json:"advantages"`
	Disadvantages float64 `json:"disadvantages"`
	SpecialTraits int     `json:"special_traits"`
	Spent         float64 `json:"spent"`
	// Remaining is nil while the budget is unset.
	Remaining *float64 `json:"remaining"`
}

// TotalPointsInAttributes prices ST, DX, IQ and HT.
func (c *Character) TotalPointsInAttributes() int {
	return c.PointsInStrength() + c.PointsInDexterity() + c.PointsInIntelligence() + c.PointsInHealth()
}

// TotalPointsInSkills sums invested points, not scores.
func (c *Character) TotalPointsInSkills() float64 {
	var total float64
	for _, s := range c.Skills {
		total += s.Points
	}
	return total
}

// TotalPointsInSpells sums invested points.
func (c *Character) TotalPointsInSpells() float64 {
	var total float64
	for _, s := range c.Spells {
		total += s.Points
	}
	return total
}

// TotalPointsInAdvantages sums the positive traits.
func (c *Character) TotalPointsInAdvantages() float64 {
	var total float64
	for _, t := range c.Traits {
		if t.Points > 0 {
			total += t.Points
		}
	}
	return total
}

// TotalPointsInDisadvantages is zero or negative.
func (c *Character) TotalPointsInDisadvantages() float64 {
	var total float64
	for _, t := range c.Traits {
		if t.Points < 0 {
			total += t.Points
		}
	}
	return total
}

// TotalPointsInSpecialTraits covers memory, wealth, appearance and magery.
func (c *Character) TotalPointsInSpecialTraits() int {
	return c.EideticMemory + c.MuscleMemory + c.Wealth + c.Appearance + c.PointsInMagery()
}

// TotalPointsSpent is the sum of every bucket, disadvantages included.
func (c *Character) TotalPointsSpent() float64 {
	return float64(c.TotalPointsInAttributes()) +
		c.TotalPointsInSkills() +
		c.TotalPointsInSpells() +
		c.TotalPointsInAdvantages() +
		c.TotalPointsInDisadvantages() +
		float64(c.TotalPointsInSpecialTraits())
}

// PointsRemaining returns ErrMissingBudget when no budget is set.
func (c *Character) PointsRemaining() (float64, error) {
	if c.TotalPoints == nil {
		return 0, ErrMissingBudget
	}
	return *c.TotalPoints - c.TotalPointsSpent(), nil
}

// Ledger computes every bucket in one pass.
func (c *Character) Ledger() Ledger {
	l := Ledger{
		Attributes:    c.TotalPointsInAttributes(),
		Skills:        c.TotalPointsInSkills(),
		Spells:        c.TotalPointsInSpells(),
		Advantages:    c.TotalPointsInAdvantages(),
		Disadvantages: c.TotalPointsInDisadvantages(),
		SpecialTraits: c.TotalPointsInSpecialTraits(),
		Spent:         c.TotalPointsSpent(),
	}
	if rem, err := c.PointsRemaining(); err == nil {
		l.Remaining = &rem
	}
	return l
}

// CheckBudget is the write-time guard: it fails with ErrMissingBudget when no
// budget is set and with *BudgetExceededError when spend exceeds it.
func CheckBudget(c *Character) error {
	if c.TotalPoints == nil {
		return ErrMissingBudget
	}
	if spent := c.TotalPointsSpent(); spent > *c.TotalPoints {
		return &BudgetExceededError{Budget: *c.TotalPoints, Spent: spent}
	}
	return nil
}
