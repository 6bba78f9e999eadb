package domain

import "time"

// QuestUnit is one persisted, independently studyable block of source text.
// Content may carry inline {answer} markers consumed by the cloze parser.
type QuestUnit struct {
	Name      string
	Content   string
	Creator   string
	CreatedAt time.Time
}

// Mnemonic is a user-authored memory aid for one quest. It is written once a
// blank-type card reaches the mnemonic threshold level and later serves as the
// hint in abbrev-mode recall.
type Mnemonic struct {
	UserID    string
	QuestName string
	Text      string
	UpdatedAt time.Time
}
