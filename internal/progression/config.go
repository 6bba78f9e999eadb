// Package progression decides what happens after a graded exercise: card
// creation and level-ups, rarity rolls, XP awards, and zone routing.
package progression

// Config holds the tuning constants of the progression rules.
type Config struct {
	// XP awards per zone
	AcquireXP      int
	ReviewBaseXP   int
	ReviewLevelXP  int // multiplied by the card's pre-increment level
	AbbrevCreateXP int
	AbbrevRepeatXP int

	// MnemonicLevel is the blank-card level at which the next review open is
	// intercepted into mnemonic registration.
	MnemonicLevel int

	// Rarity roll probabilities at card creation
	LegendChance float64
	RareChance   float64

	// Grade upgrade thresholds by card level
	RareLevel   int
	LegendLevel int
}

// NewDefaultConfig returns the reference progression constants.
func NewDefaultConfig() *Config {
	return &Config{
		AcquireXP:      50,
		ReviewBaseXP:   20,
		ReviewLevelXP:  5,
		AbbrevCreateXP: 100,
		AbbrevRepeatXP: 30,
		MnemonicLevel:  5,
		LegendChance:   0.05,
		RareChance:     0.15,
		RareLevel:      3,
		LegendLevel:    7,
	}
}
