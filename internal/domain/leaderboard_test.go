package domain

import "testing"

func TestAchievements(t *testing.T) {
	tests := []struct {
		name  string
		entry LeaderboardEntry
		want  []string
	}{
		{
			name:  "newcomer",
			entry: LeaderboardEntry{},
			want:  nil,
		},
		{
			name:  "mid player",
			entry: LeaderboardEntry{Score: 520, Streak: 6, Accuracy: 86, GamesPlayed: 12},
			want:  []string{"High Scorer", "Getting Started", "Hot Streak", "Sharp Shooter", "Good Aim", "Getting Hooked"},
		},
		{
			name:  "everything",
			entry: LeaderboardEntry{Score: 1000, Streak: 20, Accuracy: 95, GamesPlayed: 100},
			want: []string{
				"Score Master", "High Scorer", "Getting Started",
				"Unstoppable", "On Fire", "Hot Streak",
				"Perfectionist", "Sharp Shooter", "Good Aim",
				"Dedicated", "Regular Player", "Getting Hooked",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Achievements(tt.entry)
			if len(got) != len(tt.want) {
				t.Fatalf("Achievements() returned %d badges, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, a := range got {
				if a.Name != tt.want[i] {
					t.Errorf("Achievements()[%d] = %q, want %q", i, a.Name, tt.want[i])
				}
				if a.Icon == "" || a.Description == "" {
					t.Errorf("Achievements()[%d] has empty icon or description", i)
				}
			}
		})
	}
}
