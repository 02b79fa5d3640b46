package gurps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func carrying(weight float64) []Possession {
	return []Possession{{Item: Item{Name: "sack", Weight: weight, Value: 1}, Quantity: 1}}
}

func TestEncumbrance_NoPossessions(t *testing.T) {
	c := &Character{Strength: 10, Dexterity: 10, Health: 10}
	assert.Equal(t, 20, c.NoEncumbrance())
	assert.Equal(t, 40, c.LightEncumbrance())
	assert.Equal(t, 60, c.MediumEncumbrance())
	assert.Equal(t, 120, c.HeavyEncumbrance())
	assert.Equal(t, 200, c.ExtraHeavyEncumbrance())

	p, err := c.EncumbrancePenalty()
	require.NoError(t, err)
	assert.Equal(t, 0, p)
}

func TestEncumbrance_Tiers(t *testing.T) {
	cases := []struct {
		weight float64
		want   int
	}{
		{19.5, 0},
		{20, 1},
		{39, 1},
		{40, 2},
		{60, 3},
		{119, 3},
		{120, 4},
		{199.75, 4},
	}
	for _, tc := range cases {
		c := &Character{Strength: 10, Dexterity: 10, Health: 10, Possessions: carrying(tc.weight)}
		p, err := c.EncumbrancePenalty()
		require.NoError(t, err)
		assert.Equal(t, tc.want, p, "weight %v", tc.weight)
	}
}

func TestEncumbrance_OverLimitForcesMovementNegative(t *testing.T) {
	c := &Character{Strength: 10, Dexterity: 12, Health: 11, Bonus: Bonuses{Movement: 2, Dodge: 1},
		Possessions: carrying(200)}
	assert.True(t, c.OverEncumbered())

	p, err := c.EncumbrancePenalty()
	require.NoError(t, err)
	// floor(5.75) + 2 + 1
	assert.Equal(t, 8, p)

	mv, err := c.Movement()
	require.NoError(t, err)
	assert.Equal(t, -1, mv)
}

func TestPossessionTotals(t *testing.T) {
	c := &Character{Possessions: []Possession{
		{Item: Item{Weight: 2.5, Value: 10}, Quantity: 4},
		{Item: Item{Weight: 1, Value: 0.5}, Quantity: 3},
		{Item: Item{Weight: 100, Value: 100}, Quantity: 0},
	}}
	assert.Equal(t, 13.0, c.TotalPossessionWeight())
	assert.Equal(t, 41.5, c.TotalPossessionValue())
}

func TestSpeedMovementDodge(t *testing.T) {
	c := &Character{Strength: 10, Dexterity: 13, Health: 12,
		Bonus: Bonuses{Speed: 1, Movement: -1, Dodge: 2}, Possessions: carrying(25)}

	speed, err := c.Speed()
	require.NoError(t, err)
	assert.Equal(t, 7.25, speed)

	mv, err := c.Movement()
	require.NoError(t, err)
	assert.Equal(t, 5, mv) // 7 - 1 - 1

	dodge, err := c.Dodge()
	require.NoError(t, err)
	assert.Equal(t, 8, dodge) // 7 - 1 + 2
}

func TestSpeed_RunningSkillBonus(t *testing.T) {
	running := Skill{Name: "Running", Category: CategoryPhysicalHealth, Difficulty: Hard, GrantsRunningBonus: true}
	c := &Character{Strength: 10, Dexterity: 10, Health: 12,
		Skills: []CharacterSkill{{Skill: running, Points: 2}}}

	speed, err := c.Speed()
	require.NoError(t, err)
	// 22/4 + (12-3+2)/8
	assert.Equal(t, 5.5+11.0/8, speed)

	mv, err := c.Movement()
	require.NoError(t, err)
	assert.Equal(t, 6, mv)
}

func TestSpeed_NameAloneGrantsNothing(t *testing.T) {
	c := &Character{Dexterity: 10, Health: 10,
		Skills: []CharacterSkill{{Skill: Skill{Name: "running", Category: CategoryPhysical, Difficulty: Easy}, Points: 8}}}
	speed, err := c.Speed()
	require.NoError(t, err)
	assert.Equal(t, 5.0, speed)
}

func TestSpeed_InvalidRunningCategoryPropagates(t *testing.T) {
	c := &Character{Dexterity: 10, Health: 10,
		Skills: []CharacterSkill{{Skill: Skill{Name: "Sprint", Category: 42, GrantsRunningBonus: true}, Points: 1}}}
	_, err := c.Speed()
	assert.ErrorIs(t, err, ErrInvalidCategory)
	_, err = c.Movement()
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestPropertyEncumbrancePenaltyMonotonicInWeight(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := &Character{
			Strength:  rapid.IntRange(1, 20).Draw(t, "st"),
			Dexterity: rapid.IntRange(6, 20).Draw(t, "dx"),
			Health:    rapid.IntRange(6, 20).Draw(t, "ht"),
		}
		w1 := rapid.Float64Range(0, 500).Draw(t, "w1")
		w2 := rapid.Float64Range(w1, 600).Draw(t, "w2")

		c.Possessions = carrying(w1)
		p1, err := c.EncumbrancePenalty()
		if err != nil {
			t.Fatal(err)
		}
		c.Possessions = carrying(w2)
		p2, err := c.EncumbrancePenalty()
		if err != nil {
			t.Fatal(err)
		}
		if p2 < p1 {
			t.Fatalf("penalty dropped from %d to %d as weight rose from %v to %v", p1, p2, w1, w2)
		}
	})
}
