package progression

import (
	"math/rand"

	"github.com/dawnhollow/memquest/internal/domain"
)

// RollGrade draws a cosmetic rarity for a newly created card.
func (c *Config) RollGrade(rng *rand.Rand) domain.CardGrade {
	roll := rng.Float64()
	switch {
	case roll < c.LegendChance:
		return domain.GradeLegend
	case roll < c.LegendChance+c.RareChance:
		return domain.GradeRare
	default:
		return domain.GradeNormal
	}
}

// UpgradeGrade returns the rarity a card holds at the given level. Repetition
// only ever upgrades: the creation roll is kept when it outranks the
// level-derived grade.
func (c *Config) UpgradeGrade(current domain.CardGrade, level int) domain.CardGrade {
	var earned domain.CardGrade
	switch {
	case level >= c.LegendLevel:
		earned = domain.GradeLegend
	case level >= c.RareLevel:
		earned = domain.GradeRare
	default:
		earned = domain.GradeNormal
	}
	if gradeRank(current) >= gradeRank(earned) {
		return current
	}
	return earned
}

func gradeRank(g domain.CardGrade) int {
	switch g {
	case domain.GradeLegend:
		return 2
	case domain.GradeRare:
		return 1
	default:
		return 0
	}
}
