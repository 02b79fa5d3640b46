package model

import "time"

// Character is a role-playable individual inside a campaign.
type Character struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CampaignID  int64  `gorm:"index:idx_character_campaign;not null" json:"campaign_id"`
	OwnerID     int64  `gorm:"index:idx_character_owner;not null" json:"owner_id"`
	Name        string `gorm:"size:50;not null;default:'New Character'" json:"name"`
	Description string `gorm:"size:2000" json:"description"`
	Story       string `gorm:"size:2000" json:"story"`

	Strength     int `gorm:"not null" json:"strength"`
	Dexterity    int `gorm:"not null" json:"dexterity"`
	Intelligence int `gorm:"not null" json:"intelligence"`
	Health       int `gorm:"not null" json:"health"`
	Magery       int `gorm:"not null" json:"magery"`

	BonusFatigue    int `gorm:"default:0" json:"bonus_fatigue"`
	BonusHitpoints  int `gorm:"default:0" json:"bonus_hitpoints"`
	BonusAlertness  int `gorm:"default:0" json:"bonus_alertness"`
	BonusWillpower  int `gorm:"default:0" json:"bonus_willpower"`
	BonusFright     int `gorm:"default:0" json:"bonus_fright"`
	BonusSpeed      int `gorm:"default:0" json:"bonus_speed"`
	BonusMovement   int `gorm:"default:0" json:"bonus_movement"`
	BonusDodge      int `gorm:"default:0" json:"bonus_dodge"`
	BonusInitiative int `gorm:"default:0" json:"bonus_initiative"`

	FreeStrength     int `gorm:"default:0" json:"free_strength"`
	FreeDexterity    int `gorm:"default:0" json:"free_dexterity"`
	FreeIntelligence int `gorm:"default:0" json:"free_intelligence"`
	FreeHealth       int `gorm:"default:0" json:"free_health"`

	TotalPoints *float64 `json:"total_points"`
	UsedFatigue float64  `gorm:"default:0" json:"used_fatigue"`

	Appearance    int `gorm:"default:0" json:"appearance"`
	Wealth        int `gorm:"default:0" json:"wealth"`
	EideticMemory int `gorm:"default:0" json:"eidetic_memory"`
	MuscleMemory  int `gorm:"default:0" json:"muscle_memory"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Skills       []CharacterSkill `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Spells       []CharacterSpell `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Traits       []Trait          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Possessions  []Possession     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	HitLocations []HitLocation    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Trait is an advantage (positive points) or disadvantage (negative points).
type Trait struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	CharacterID int64   `gorm:"index:idx_trait_character;not null" json:"character_id"`
	Name        string  `gorm:"size:50;not null" json:"name"`
	Description string  `gorm:"size:2000" json:"description"`
	Points      float64 `json:"points"`
}

// CharacterSkill records points a character invested in a catalog skill.
type CharacterSkill struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	CharacterID int64   `gorm:"index:idx_char_skill;not null" json:"character_id"`
	SkillID     int64   `gorm:"not null" json:"skill_id"`
	Skill       Skill   `gorm:"constraint:OnDelete:CASCADE" json:"skill"`
	Comments    string  `gorm:"size:50" json:"comments"`
	BonusLevel  int     `gorm:"default:0" json:"bonus_level"`
	Points      float64 `gorm:"default:0" json:"points"`
}

type CharacterSpell struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	CharacterID int64   `gorm:"index:idx_char_spell;not null" json:"character_id"`
	SpellID     int64   `gorm:"not null" json:"spell_id"`
	Spell       Spell   `gorm:"constraint:OnDelete:CASCADE" json:"spell"`
	BonusLevel  int     `gorm:"default:0" json:"bonus_level"`
	Points      float64 `gorm:"default:0" json:"points"`
}

// Possession is a stack of one catalog item carried by a character.
type Possession struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CharacterID int64 `gorm:"index:idx_char_possession;not null" json:"character_id"`
	ItemID      int64 `gorm:"not null" json:"item_id"`
	Item        Item  `gorm:"constraint:OnDelete:CASCADE" json:"item"`
	Quantity    int   `gorm:"default:0" json:"quantity"`
}

// HitLocation is a body location tracked for armor and damage.
type HitLocation struct {
	ID               int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CharacterID      int64  `gorm:"index:idx_char_hit_location;not null" json:"character_id"`
	Name             string `gorm:"size:50;not null" json:"name"`
	Status           string `gorm:"size:500" json:"status"`
	PassiveDefense   int    `json:"passive_defense"`
	DamageResistance int    `json:"damage_resistance"`
	DamageTaken      int    `gorm:"default:0" json:"damage_taken"`
}
