package model

import "time"

const (
	MaxLenName        = 50
	MaxLenDescription = 2000
)

// Campaign is a single role-playing campaign. It owns its spell and item
// catalogs and draws skills from the skill sets attached to it.
type Campaign struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     int64      `gorm:"index:idx_campaign_owner;not null" json:"owner_id"`
	Name        string     `gorm:"size:50;not null" json:"name"`
	Description string     `gorm:"size:2000" json:"description"`
	SkillSets   []SkillSet `gorm:"many2many:campaign_skill_sets;constraint:OnDelete:CASCADE" json:"skill_sets,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Characters []Character `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Spells     []Spell     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Items      []Item      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// SkillSet groups similar skills; campaigns opt into whole skill sets.
type SkillSet struct {
	ID     int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string  `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Skills []Skill `gorm:"constraint:OnDelete:CASCADE" json:"skills,omitempty"`
}

// Skill is a catalog skill. Category and Difficulty hold gurps.SkillCategory
// and gurps.Difficulty values.
type Skill struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SkillSetID         int64  `gorm:"index:idx_skill_set;not null" json:"skill_set_id"`
	Name               string `gorm:"size:50;not null" json:"name"`
	Category           int    `gorm:"not null" json:"category"`
	Difficulty         int    `gorm:"not null" json:"difficulty"`
	GrantsRunningBonus bool   `gorm:"default:false" json:"grants_running_bonus"`
}

// Spell is a campaign catalog spell.
type Spell struct {
	ID                     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CampaignID             int64  `gorm:"index:idx_spell_campaign;not null" json:"campaign_id"`
	Name                   string `gorm:"size:50;not null" json:"name"`
	School                 string `gorm:"size:50" json:"school"`
	Resist                 string `gorm:"size:50" json:"resist"`
	Duration               string `gorm:"size:50" json:"duration"`
	CastTime               int    `json:"cast_time"`
	InitialFatigueCost     int    `json:"initial_fatigue_cost"`
	MaintenanceFatigueCost int    `json:"maintenance_fatigue_cost"`
	Difficulty             int    `gorm:"not null" json:"difficulty"`
}

// Item is a campaign catalog item.
type Item struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	CampaignID  int64   `gorm:"index:idx_item_campaign;not null" json:"campaign_id"`
	Name        string  `gorm:"size:50;not null" json:"name"`
	Description string  `gorm:"size:2000" json:"description"`
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
}
