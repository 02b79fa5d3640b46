package gurps

// SkillLine is one learned skill with its computed score.
type SkillLine struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Difficulty string  `json:"difficulty"`
	Points     float64 `json:"points"`
	BonusLevel int     `json:"bonus_level"`
	Score      float64 `json:"score"`
}

// SpellLine is one learned spell with its computed score.
type SpellLine struct {
	Name       string  `json:"name"`
	Difficulty string  `json:"difficulty"`
	Points     float64 `json:"points"`
	BonusLevel int     `json:"bonus_level"`
	Score      float64 `json:"score"`
}

// Encumbrance lists the tier limits and the resulting penalty.
type Encumbrance struct {
	None           int     `json:"none"`
	Light          int     `json:"light"`
	Medium         int     `json:"medium"`
	Heavy          int     `json:"heavy"`
	ExtraHeavy     int     `json:"extra_heavy"`
	Weight         float64 `json:"weight"`
	Value          float64 `json:"value"`
	Penalty        int     `json:"penalty"`
	OverEncumbered bool    `json:"over_encumbered"`
}

// Sheet is everything derivable from a Character.
type Sheet struct {
	Name             string      `json:"name"`
	Fatigue          int         `json:"fatigue"`
	FatigueRemaining float64     `json:"fatigue_remaining"`
	Hitpoints        int         `json:"hitpoints"`
	Alertness        int         `json:"alertness"`
	Will             int         `json:"will"`
	Fright           int         `json:"fright"`
	Initiative       float64     `json:"initiative"`
	Speed            float64     `json:"speed"`
	Movement         int         `json:"movement"`
	Dodge            int         `json:"dodge"`
	Encumbrance      Encumbrance `json:"encumbrance"`
	Skills           []SkillLine `json:"skills"`
	Spells           []SpellLine `json:"spells"`
	Points           Ledger      `json:"points"`
}

// Compute derives the full sheet. It fails only when a skill carries an
// unknown category.
func Compute(c *Character) (Sheet, error) {
	speed, err := c.Speed()
	if err != nil {
		return Sheet{}, err
	}
	penalty, err := c.EncumbrancePenalty()
	if err != nil {
		return Sheet{}, err
	}
	movement, err := c.Movement()
	if err != nil {
		return Sheet{}, err
	}
	dodge, err := c.Dodge()
	if err != nil {
		return Sheet{}, err
	}

	s := Sheet{
		Name:             c.Name,
		Fatigue:          c.Fatigue(),
		FatigueRemaining: c.FatigueRemaining(),
		Hitpoints:        c.Hitpoints(),
		Alertness:        c.Alertness(),
		Will:             c.Will(),
		Fright:           c.Fright(),
		Initiative:       c.Initiative(),
		Speed:            speed,
		Movement:         movement,
		Dodge:            dodge,
		Encumbrance: Encumbrance{
			None:           c.NoEncumbrance(),
			Light:          c.LightEncumbrance(),
			Medium:         c.MediumEncumbrance(),
			Heavy:          c.HeavyEncumbrance(),
			ExtraHeavy:     c.ExtraHeavyEncumbrance(),
			Weight:         c.TotalPossessionWeight(),
			Value:          c.TotalPossessionValue(),
			Penalty:        penalty,
			OverEncumbered: c.OverEncumbered(),
		},
		Skills: make([]SkillLine, 0, len(c.Skills)),
		Spells: make([]SpellLine, 0, len(c.Spells)),
		Points: c.Ledger(),
	}
	for _, cs := range c.Skills {
		score, err := SkillScore(c, cs)
		if err != nil {
			return Sheet{}, err
		}
		s.Skills = append(s.Skills, SkillLine{
			Name:       cs.Skill.Name,
			Category:   cs.Skill.Category.String(),
			Difficulty: cs.Skill.Difficulty.String(),
			Points:     cs.Points,
			BonusLevel: cs.BonusLevel,
			Score:      score,
		})
	}
	for _, cs := range c.Spells {
		s.Spells = append(s.Spells, SpellLine{
			Name:       cs.Spell.Name,
			Difficulty: cs.Spell.Difficulty.String(),
			Points:     cs.Points,
			BonusLevel: cs.BonusLevel,
			Score:      SpellScore(c, cs),
		})
	}
	return s, nil
}
