package progression

import "github.com/dawnhollow/memquest/internal/domain"

// ApplyXP adds an award to a user's progress, rolling overflow into level-ups.
// The loop handles awards large enough to cross several level boundaries in
// one call. Every XP-granting path in the system routes through here.
func ApplyXP(user *domain.UserProgress, amount int) {
	user.XP += amount
	for user.XP >= user.Level*100 {
		user.XP -= user.Level * 100
		user.Level++
	}
	user.Title = domain.TitleFor(user.Level)
}
