package gurps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	c := ledgerCharacter()
	c.Name = "Alia"
	c.Possessions = carrying(30)

	s, err := Compute(c)
	require.NoError(t, err)

	assert.Equal(t, "Alia", s.Name)
	assert.Equal(t, 5.25, s.Speed)
	assert.Equal(t, 1, s.Encumbrance.Penalty)
	assert.Equal(t, 4, s.Movement)
	assert.Equal(t, 4, s.Dodge)
	assert.Equal(t, 24, s.Encumbrance.None)
	assert.False(t, s.Encumbrance.OverEncumbered)
	assert.Equal(t, 90.0, s.Points.Spent)

	require.Len(t, s.Skills, 2)
	assert.Equal(t, "Mental", s.Skills[0].Category)
	assert.Equal(t, "Average", s.Skills[0].Difficulty)
	// 11 - 2 + floor(12/2) + 1
	assert.Equal(t, 16.0, s.Skills[0].Score)

	require.Len(t, s.Spells, 1)
	assert.Equal(t, "Hard", s.Spells[0].Difficulty)
	// 11 - 3 + floor(10/2) + 1
	assert.Equal(t, 14.0, s.Spells[0].Score)
}

func TestCompute_InvalidCategory(t *testing.T) {
	c := ledgerCharacter()
	c.Skills = append(c.Skills, learned(SkillCategory(99), Easy, 1))
	_, err := Compute(c)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}
