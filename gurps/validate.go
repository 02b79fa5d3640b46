package gurps

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

var quarter = decimal.RequireFromString("0.25")

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsQuarter reports whether v is a multiple of 0.25 once quantized to two
// decimal places. Quantizing first keeps binary float noise from rejecting
// values such as 0.75 that arrive as 0.7499999999. Non-finite values are
// never quarters.
func IsQuarter(v float64) bool {
	if !IsFinite(v) {
		return false
	}
	return decimal.NewFromFloat(v).Round(2).Mod(quarter).IsZero()
}

// ValidateQuarter rejects values that are not multiples of 0.25.
func ValidateQuarter(field string, v float64) error {
	if !IsQuarter(v) {
		return &ValidationError{Field: field, Msg: fmt.Sprintf("%g is not divisible by 0.25", v)}
	}
	return nil
}

// ValidateNotNegative rejects negative and non-finite values.
func ValidateNotNegative[T int | float64](field string, v T) error {
	if f := float64(v); !IsFinite(f) {
		return &ValidationError{Field: field, Msg: fmt.Sprintf("%v is not a number", v)}
	}
	if v < 0 {
		return &ValidationError{Field: field, Msg: fmt.Sprintf("%v is negative", v)}
	}
	return nil
}

// ValidateChoice rejects values outside choices.
func ValidateChoice(field string, choices []Choice, v int) error {
	if ChoiceLabel(choices, v) == "" {
		return &ValidationError{Field: field, Msg: fmt.Sprintf("%d is not a valid choice", v)}
	}
	return nil
}

// Validate checks the character's own fields. Budget compliance is a
// separate step, see CheckBudget.
func (c *Character) Validate() error {
	err := multierr.Combine(
		ValidateNotNegative("strength", c.Strength),
		ValidateNotNegative("dexterity", c.Dexterity),
		ValidateNotNegative("intelligence", c.Intelligence),
		ValidateNotNegative("health", c.Health),
		ValidateNotNegative("magery", c.Magery),
		ValidateQuarter("used_fatigue", c.UsedFatigue),
		ValidateChoice("appearance", AppearanceChoices, c.Appearance),
		ValidateChoice("wealth", WealthChoices, c.Wealth),
		ValidateChoice("eidetic_memory", MemoryChoices, c.EideticMemory),
		ValidateChoice("muscle_memory", MemoryChoices, c.MuscleMemory),
	)
	if c.TotalPoints != nil {
		err = multierr.Append(err, ValidateQuarter("total_points", *c.TotalPoints))
	}
	return err
}

// Validate checks a learned skill row.
func (s CharacterSkill) Validate() error {
	err := multierr.Combine(
		ValidateNotNegative("points", s.Points),
		ValidateQuarter("points", s.Points),
	)
	if !s.Skill.Category.Valid() {
		err = multierr.Append(err, &InvalidCategoryError{Skill: s.Skill.Name, Category: s.Skill.Category})
	}
	return err
}

// Validate checks a learned spell row.
func (s CharacterSpell) Validate() error {
	err := multierr.Combine(
		ValidateNotNegative("points", s.Points),
		ValidateQuarter("points", s.Points),
	)
	if s.Spell.Difficulty != Hard && s.Spell.Difficulty != VeryHard {
		err = multierr.Append(err, &ValidationError{Field: "difficulty", Msg: fmt.Sprintf("%d is not a spell difficulty", int(s.Spell.Difficulty))})
	}
	return err
}

// Validate checks a trait row. Traits may be negative but still move in
// quarter-point steps.
func (t Trait) Validate() error {
	return ValidateQuarter("points", t.Points)
}

// Validate checks a catalog item.
func (i Item) Validate() error {
	return multierr.Combine(
		ValidateNotNegative("weight", i.Weight),
		ValidateNotNegative("value", i.Value),
	)
}

// Validate checks a possession row.
func (p Possession) Validate() error {
	return ValidateNotNegative("quantity", p.Quantity)
}

// ValidateAll checks the character and every related row.
func (c *Character) ValidateAll() error {
	err := c.Validate()
	for _, s := range c.Skills {
		err = multierr.Append(err, s.Validate())
	}
	for _, s := range c.Spells {
		err = multierr.Append(err, s.Validate())
	}
	for _, t := range c.Traits {
		err = multierr.Append(err, t.Validate())
	}
	for _, p := range c.Possessions {
		err = multierr.Append(err, multierr.Combine(p.Validate(), p.Item.Validate()))
	}
	return err
}
