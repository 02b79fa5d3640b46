package gurps

// SkillCategory selects the attribute a skill is rolled against and which
// memory advantage scales its points.
type SkillCategory int

const (
	CategoryMental           SkillCategory = 1
	CategoryMentalHealth     SkillCategory = 2
	CategoryPhysical         SkillCategory = 3
	CategoryPhysicalHealth   SkillCategory = 4
	CategoryPhysicalStrength SkillCategory = 5
	CategoryPsionic          SkillCategory = 6
)

var categoryNames = map[SkillCategory]string{
	CategoryMental:           "Mental",
	CategoryMentalHealth:     "Mental (health)",
	CategoryPhysical:         "Physical",
	CategoryPhysicalHealth:   "Physical (health)",
	CategoryPhysicalStrength: "Physical (strength)",
	CategoryPsionic:          "Psionic",
}

func (c SkillCategory) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "Unknown"
}

// Valid reports whether c is one of the six known categories.
func (c SkillCategory) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// Difficulty is the skill/spell difficulty, 1 (Easy) through 4 (Very Hard).
type Difficulty int

const (
	Easy     Difficulty = 1
	Average  Difficulty = 2
	Hard     Difficulty = 3
	VeryHard Difficulty = 4
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "Easy"
	case Average:
		return "Average"
	case Hard:
		return "Hard"
	case VeryHard:
		return "Very Hard"
	}
	return "Unknown"
}

// Skill is a catalog entry.
type Skill struct {
	Name       string
	Category   SkillCategory
	Difficulty Difficulty
	// GrantsRunningBonus marks the skill whose score adds score/8 to speed.
	GrantsRunningBonus bool
}

// CharacterSkill is a skill as learned by one character.
type CharacterSkill struct {
	Skill      Skill
	Points     float64
	BonusLevel int
}

// Spell is a catalog entry. Only Hard and VeryHard are legal difficulties.
type Spell struct {
	Name       string
	Difficulty Difficulty
}

// CharacterSpell is a spell as learned by one character.
type CharacterSpell struct {
	Spell      Spell
	Points     float64
	BonusLevel int
}

// Trait is an advantage (positive points) or disadvantage (negative points).
type Trait struct {
	Name   string
	Points float64
}

// Item is a catalog entry; Weight is in pounds.
type Item struct {
	Name   string
	Weight float64
	Value  float64
}

// Possession is a quantity of an item carried by a character.
type Possession struct {
	Item     Item
	Quantity int
}

// Bonuses are flat modifiers applied on top of derived statistics.
type Bonuses struct {
	Fatigue    int `json:"fatigue"`
	Hitpoints  int `json:"hitpoints"`
	Alertness  int `json:"alertness"`
	Willpower  int `json:"willpower"`
	Fright     int `json:"fright"`
	Speed      int `json:"speed"`
	Movement   int `json:"movement"`
	Dodge      int `json:"dodge"`
	Initiative int `json:"initiative"`
}

// FreeLevels are attribute levels granted without spending points.
type FreeLevels struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Intelligence int `json:"intelligence"`
	Health       int `json:"health"`
}

// Character is an immutable snapshot of a character and its related rows.
// Every calculation in this package reads a Character and nothing else.
type Character struct {
	Name string

	Strength     int
	Dexterity    int
	Intelligence int
	Health       int
	Magery       int

	Bonus Bonuses
	Free  FreeLevels

	// TotalPoints is the point budget; nil when the budget has not been set.
	TotalPoints *float64
	UsedFatigue float64

	Appearance    int
	Wealth        int
	EideticMemory int
	MuscleMemory  int

	Skills      []CharacterSkill
	Spells      []CharacterSpell
	Traits      []Trait
	Possessions []Possession
}

// Budget is a convenience for building a TotalPoints pointer.
func Budget(points float64) *float64 { return &points }
