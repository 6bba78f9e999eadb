package domain

// UserProgress is a user's cumulative level and experience.
// Invariant after every update: 0 <= XP < Level*100.
type UserProgress struct {
	UserID string
	Level  int
	XP     int
	Title  string
}

// XPRequired returns the experience needed to reach the next level.
func (u UserProgress) XPRequired() int {
	return u.Level * 100
}

// NewUserProgress returns the starting state for a fresh user.
func NewUserProgress(userID string) *UserProgress {
	return &UserProgress{
		UserID: userID,
		Level:  1,
		XP:     0,
		Title:  TitleFor(1),
	}
}

var titleBands = []struct {
	minLevel int
	title    string
}{
	{30, "현자"},
	{20, "대마법사"},
	{10, "정식 마법사"},
	{5, "수습 마법사"},
	{1, "견습 마법사"},
}

// TitleFor returns the display title for a user level.
func TitleFor(level int) string {
	for _, band := range titleBands {
		if level >= band.minLevel {
			return band.title
		}
	}
	return titleBands[len(titleBands)-1].title
}
