package gurps

import "math"

// memory ratio divisor: Partial (30) doubles points, Full (60) quadruples them.
const memoryDivisor = 15

// SkillScore returns the character's level in a learned skill.
// GURPS Basic Set 3rd Edition Revised, page 44.
func SkillScore(c *Character, cs CharacterSkill) (float64, error) {
	switch cs.Skill.Category {
	case CategoryMental:
		return mentalScore(c.Intelligence, cs.Skill.Difficulty, effectivePoints(cs.Points, c.EideticMemory)), nil
	case CategoryMentalHealth:
		return mentalScore(c.Health, cs.Skill.Difficulty, effectivePoints(cs.Points, c.EideticMemory)), nil
	case CategoryPhysical:
		return physicalScore(c.Dexterity, cs.Skill.Difficulty, effectivePoints(cs.Points, c.MuscleMemory)), nil
	case CategoryPhysicalHealth:
		return physicalScore(c.Health, cs.Skill.Difficulty, effectivePoints(cs.Points, c.MuscleMemory)), nil
	case CategoryPhysicalStrength:
		return physicalScore(c.Strength, cs.Skill.Difficulty, effectivePoints(cs.Points, c.MuscleMemory)), nil
	case CategoryPsionic:
		return mentalScore(c.Intelligence, cs.Skill.Difficulty, cs.Points), nil
	}
	return 0, &InvalidCategoryError{Skill: cs.Skill.Name, Category: cs.Skill.Category}
}

func effectivePoints(points float64, memory int) float64 {
	if memory == 0 {
		return points
	}
	return points * float64(memory) / memoryDivisor
}

// mentalScore also serves psionic skills and spells, which share its bands.
func mentalScore(attribute int, difficulty Difficulty, ep float64) float64 {
	base := float64(attribute - int(difficulty))
	switch {
	case ep < 0.5:
		return 0
	case ep < 1:
		return base
	case ep < 2:
		return base + 1
	case ep < 4:
		return base + 2
	case difficulty < VeryHard:
		return base + math.Floor(ep/2) + 1
	default:
		return base + math.Floor(ep/4) + 2
	}
}

func physicalScore(attribute int, difficulty Difficulty, ep float64) float64 {
	base := float64(attribute - int(difficulty))
	switch {
	case ep < 0.5:
		return 0
	case ep < 1:
		return base
	case ep < 2:
		return base + 1
	case ep < 4:
		return base + 2
	case ep < 8:
		return base + 3
	default:
		return base + math.Floor(ep/8) + 3
	}
}
