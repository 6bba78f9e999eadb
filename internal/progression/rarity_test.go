package progression

import (
	"math/rand"
	"testing"

	"github.com/dawnhollow/memquest/internal/domain"
)

func TestRollGradeDistribution(t *testing.T) {
	cfg := NewDefaultConfig()
	rng := rand.New(rand.NewSource(42))

	counts := map[domain.CardGrade]int{}
	const n = 10000
	for i := 0; i < n; i++ {
		counts[cfg.RollGrade(rng)]++
	}

	if counts[domain.GradeNormal] == 0 || counts[domain.GradeRare] == 0 || counts[domain.GradeLegend] == 0 {
		t.Fatalf("expected all grades to occur, got %v", counts)
	}
	// Weighted 80/15/5: the ordering must hold on any reasonable sample.
	if !(counts[domain.GradeNormal] > counts[domain.GradeRare] && counts[domain.GradeRare] > counts[domain.GradeLegend]) {
		t.Errorf("expected NORMAL > RARE > LEGEND, got %v", counts)
	}
}

func TestUpgradeGrade(t *testing.T) {
	cfg := NewDefaultConfig()
	testCases := []struct {
		name     string
		current  domain.CardGrade
		level    int
		expected domain.CardGrade
	}{
		{name: "normal stays below rare level", current: domain.GradeNormal, level: 2, expected: domain.GradeNormal},
		{name: "normal upgrades at rare level", current: domain.GradeNormal, level: 3, expected: domain.GradeRare},
		{name: "normal upgrades at legend level", current: domain.GradeNormal, level: 7, expected: domain.GradeLegend},
		{name: "creation roll is never downgraded", current: domain.GradeLegend, level: 2, expected: domain.GradeLegend},
		{name: "rare holds until legend level", current: domain.GradeRare, level: 6, expected: domain.GradeRare},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cfg.UpgradeGrade(tc.current, tc.level); got != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}
