package achievements

import "time"

// Type classifies an achievement by the metric its condition checks.
type Type string

const (
	TypeQuantity  Type = "QUANTITY"
	TypeStreak    Type = "STREAK"
	TypeSpeed     Type = "SPEED"
	TypeVersatile Type = "VERSATILE"
)

// AllTypes returns the achievement types in display order.
func AllTypes() []Type {
	return []Type{TypeQuantity, TypeStreak, TypeSpeed, TypeVersatile}
}

// DisplayName returns a human-readable label for the type.
func (t Type) DisplayName() string {
	switch t {
	case TypeQuantity:
		return "Quantity"
	case TypeStreak:
		return "Streak"
	case TypeSpeed:
		return "Speed"
	case TypeVersatile:
		return "Versatile"
	default:
		return string(t)
	}
}

// Rarity is the prestige tier of an achievement.
type Rarity string

const (
	RarityBronze  Rarity = "BRONZE"
	RaritySilver  Rarity = "SILVER"
	RarityGold    Rarity = "GOLD"
	RarityDiamond Rarity = "DIAMOND"
	RarityLegend  Rarity = "LEGEND"
)

// AllRarities returns all rarities from lowest to highest.
func AllRarities() []Rarity {
	return []Rarity{RarityBronze, RaritySilver, RarityGold, RarityDiamond, RarityLegend}
}

// DisplayName returns a human-readable label for the rarity.
func (r Rarity) DisplayName() string {
	switch r {
	case RarityBronze:
		return "Bronze"
	case RaritySilver:
		return "Silver"
	case RarityGold:
		return "Gold"
	case RarityDiamond:
		return "Diamond"
	case RarityLegend:
		return "Legend"
	default:
		return string(r)
	}
}

// Color returns the hex color of the rarity.
func (r Rarity) Color() string {
	switch r {
	case RarityBronze:
		return "#CD7F32"
	case RaritySilver:
		return "#C0C0C0"
	case RarityGold:
		return "#FFD700"
	case RarityDiamond:
		return "#B9F2FF"
	case RarityLegend:
		return "#FF6B6B"
	default:
		return "#FFFFFF"
	}
}

// Icon returns the medal emoji of the rarity.
func (r Rarity) Icon() string {
	switch r {
	case RarityBronze:
		return "🥉"
	case RaritySilver:
		return "🥈"
	case RarityGold:
		return "🥇"
	case RarityDiamond:
		return "💎"
	case RarityLegend:
		return "👑"
	default:
		return "🏅"
	}
}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	for _, known := range AllRarities() {
		if r == known {
			return true
		}
	}
	return false
}

// Achievement is a catalog entry with its decoded condition and unlock
// status.
type Achievement struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Type           Type       `json:"type"`
	Rarity         Rarity     `json:"rarity"`
	Condition      Condition  `json:"condition"`
	Icon           string     `json:"icon"`
	Repeatable     bool       `json:"repeatable"`
	Unlocked       bool       `json:"unlocked"`
	UnlockedAt     *time.Time `json:"unlocked_at,omitempty"`
	Count          int        `json:"count"`
	LastAchievedAt *time.Time `json:"last_achieved_at,omitempty"`
}

// Unlock is one achievement triggered by a check.
type Unlock struct {
	Achievement Achievement `json:"achievement"`
	Count       int         `json:"count"`
	IsFirst     bool        `json:"is_first"`
}

// Progress is how far a locked achievement is from its threshold.
type Progress struct {
	AchievementID int  `json:"achievement_id"`
	Current       int  `json:"current"`
	Target        int  `json:"target"`
	Progress      int  `json:"progress"`
	Remaining     int  `json:"remaining"`
	Unlocked      bool `json:"unlocked"`
}

// RarityStats counts catalog entries and unlocks for one rarity.
type RarityStats struct {
	Rarity   Rarity `json:"rarity"`
	Total    int    `json:"total"`
	Unlocked int    `json:"unlocked"`
}

// Stats summarizes the catalog.
type Stats struct {
	Total          int           `json:"total"`
	Unlocked       int           `json:"unlocked"`
	CompletionRate int           `json:"completion_rate"`
	ByRarity       []RarityStats `json:"by_rarity"`
}
