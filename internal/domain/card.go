package domain

import "time"

// CardType distinguishes the two exercise variants a quest can be mastered in.
type CardType string

const (
	// TypeBlank is the fill-in-the-blank variant.
	TypeBlank CardType = "BLANK"
	// TypeAbbrev is the mnemonic-recall variant.
	TypeAbbrev CardType = "ABBREV"
)

// CardGrade is the cosmetic rarity of a collected card.
type CardGrade string

const (
	GradeNormal CardGrade = "NORMAL"
	GradeRare   CardGrade = "RARE"
	GradeLegend CardGrade = "LEGEND"
)

// CardRecord is a user's mastery record for one quest unit and card type.
// At most one record exists per (UserID, QuestName, Type).
type CardRecord struct {
	ID          int64
	UserID      string
	QuestName   string
	Type        CardType
	Level       int
	Grade       CardGrade
	CardText    string
	CollectedAt time.Time
}
