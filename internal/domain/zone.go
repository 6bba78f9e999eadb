package domain

import "fmt"

// Zone is one of the four study modes a quest can be played in.
type Zone int

const (
	// ZoneAcquire is the first-exposure mode for quests with no blank card yet.
	ZoneAcquire Zone = iota
	// ZoneReview is the repeated-review mode for quests with a blank card.
	ZoneReview
	// ZoneAbbrev is the mnemonic-recall mode.
	ZoneAbbrev
	// ZoneRegisterMnemonic prompts the user to author a mnemonic. It is not a
	// graded exercise.
	ZoneRegisterMnemonic
)

func (z Zone) String() string {
	switch z {
	case ZoneAcquire:
		return "acquire"
	case ZoneReview:
		return "review"
	case ZoneAbbrev:
		return "abbrev"
	case ZoneRegisterMnemonic:
		return "register_mnemonic"
	}
	return fmt.Sprintf("Zone(%d)", int(z))
}

// ParseZone converts the wire name of a zone back to its enumeration value.
func ParseZone(s string) (Zone, error) {
	switch s {
	case "acquire":
		return ZoneAcquire, nil
	case "review":
		return ZoneReview, nil
	case "abbrev":
		return ZoneAbbrev, nil
	case "register_mnemonic":
		return ZoneRegisterMnemonic, nil
	}
	return ZoneAcquire, fmt.Errorf("unknown zone %q", s)
}
