// Package leaderboard keeps the ranked top players and the local player
// profile, persisted through a storage.Store.
package leaderboard

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/learnhub/internal/domain"
	"github.com/felixgeelhaar/learnhub/internal/storage"
)

// DefaultTopN is the number of entries shown when no limit is given
const DefaultTopN = 10

// Upsert replaces any entry named like entry, sorts by score descending
// (ties keep their previous order) and truncates to the maximum size.
func Upsert(entries []domain.LeaderboardEntry, entry domain.LeaderboardEntry) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, 0, len(entries)+1)
	for _, e := range entries {
		if e.Name != entry.Name {
			out = append(out, e)
		}
	}
	out = append(out, entry)

	slices.SortStableFunc(out, func(a, b domain.LeaderboardEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(out) > domain.MaxLeaderboardEntries {
		out = out[:domain.MaxLeaderboardEntries]
	}
	return out
}

// Summary aggregates the whole board
type Summary struct {
	TotalPlayers    int `json:"total_players"`
	AverageScore    int `json:"average_score"`
	HighestScore    int `json:"highest_score"`
	AverageAccuracy int `json:"average_accuracy"`
}

// Summarize computes a Summary of entries
func Summarize(entries []domain.LeaderboardEntry) Summary {
	if len(entries) == 0 {
		return Summary{}
	}

	var totalScore, totalAccuracy int
	highest := entries[0].Score
	for _, e := range entries {
		totalScore += e.Score
		totalAccuracy += e.Accuracy
		highest = max(highest, e.Score)
	}

	n := float64(len(entries))
	return Summary{
		TotalPlayers:    len(entries),
		AverageScore:    int(math.Round(float64(totalScore) / n)),
		HighestScore:    highest,
		AverageAccuracy: int(math.Round(float64(totalAccuracy) / n)),
	}
}

// demoPlayers populate an empty board so a first-time learner has someone
// to chase
var demoPlayers = []domain.LeaderboardEntry{
	{Name: "CodeMaster", Avatar: "🧙‍♂️", Score: 850, Streak: 12, Accuracy: 94, GamesPlayed: 45},
	{Name: "FlexboxNinja", Avatar: "🥷", Score: 720, Streak: 8, Accuracy: 89, GamesPlayed: 38},
	{Name: "BugHunter", Avatar: "🕵️", Score: 680, Streak: 15, Accuracy: 92, GamesPlayed: 42},
	{Name: "CSSWizard", Avatar: "🧙‍♀️", Score: 650, Streak: 6, Accuracy: 87, GamesPlayed: 35},
	{Name: "JSGuru", Avatar: "🤓", Score: 590, Streak: 9, Accuracy: 85, GamesPlayed: 40},
	{Name: "HTMLHero", Avatar: "🦸", Score: 520, Streak: 4, Accuracy: 83, GamesPlayed: 28},
	{Name: "DevRookie", Avatar: "👶", Score: 450, Streak: 3, Accuracy: 78, GamesPlayed: 25},
	{Name: "CodeCrafter", Avatar: "⚒️", Score: 380, Streak: 7, Accuracy: 81, GamesPlayed: 22},
}

// DemoPlayers returns a copy of the seed entries
func DemoPlayers() []domain.LeaderboardEntry {
	return slices.Clone(demoPlayers)
}

// Board is the persisted leaderboard. It serialises its own
// read-modify-write cycles; it does not coordinate with other processes.
type Board struct {
	mu     sync.Mutex
	store  storage.Store
	logger *slog.Logger
}

// NewBoard creates a board stored under storage.KeyLeaderboard
func NewBoard(store storage.Store, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{store: store, logger: logger}
}

func (b *Board) load(ctx context.Context) []domain.LeaderboardEntry {
	return storage.LoadJSON[[]domain.LeaderboardEntry](ctx, b.store, storage.KeyLeaderboard, nil)
}

func (b *Board) save(ctx context.Context, entries []domain.LeaderboardEntry) error {
	if err := storage.SaveJSON(ctx, b.store, storage.KeyLeaderboard, entries); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Entries returns the whole board in rank order
func (b *Board) Entries(ctx context.Context) []domain.LeaderboardEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

// Upsert inserts or replaces entry and persists the board
func (b *Board) Upsert(ctx context.Context, entry domain.LeaderboardEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := Upsert(b.load(ctx), entry)
	return b.save(ctx, entries)
}

// TopN returns the first n entries; n <= 0 uses DefaultTopN
func (b *Board) TopN(ctx context.Context, n int) []domain.LeaderboardEntry {
	if n <= 0 {
		n = DefaultTopN
	}
	entries := b.Entries(ctx)
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// RankOf returns the 1-based position of name. ok is false when unranked.
func (b *Board) RankOf(ctx context.Context, name string) (rank int, ok bool) {
	i := slices.IndexFunc(b.Entries(ctx), func(e domain.LeaderboardEntry) bool {
		return e.Name == name
	})
	if i < 0 {
		return 0, false
	}
	return i + 1, true
}

// Seed stores the demo players when the board is empty. It reports
// whether it wrote anything.
func (b *Board) Seed(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.load(ctx)) > 0 {
		return false, nil
	}
	if err := b.save(ctx, DemoPlayers()); err != nil {
		return false, err
	}
	b.logger.Debug("leaderboard seeded", "players", len(demoPlayers))
	return true, nil
}

// Reset clears the board and seeds it again
func (b *Board) Reset(ctx context.Context) error {
	b.mu.Lock()
	if err := b.store.Remove(ctx, storage.KeyLeaderboard); err != nil {
		b.mu.Unlock()
		return fmt.Errorf("%w: clear leaderboard: %w", domain.ErrPersistence, err)
	}
	b.mu.Unlock()

	_, err := b.Seed(ctx)
	return err
}

// Summary aggregates the stored board
func (b *Board) Summary(ctx context.Context) Summary {
	return Summarize(b.Entries(ctx))
}

// Rename changes oldName to newName. Blank names and names already used by
// another player (compared case-insensitively) are rejected.
func (b *Board) Rename(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return domain.ErrInvalidName
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.load(ctx)
	for _, e := range entries {
		if e.Name != oldName && strings.EqualFold(e.Name, newName) {
			return fmt.Errorf("%w: %s", domain.ErrNameTaken, newName)
		}
	}

	for i := range entries {
		if entries[i].Name == oldName {
			entries[i].Name = newName
		}
	}
	return b.save(ctx, entries)
}

// Export is the portable document written by Board.Export
type Export struct {
	User        *Profile                  `json:"user,omitempty"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
	ExportDate  time.Time                 `json:"export_date"`
}

// Export serialises the board, plus user when given, as indented JSON
func (b *Board) Export(ctx context.Context, user *Profile, now time.Time) ([]byte, error) {
	doc := Export{
		User:        user,
		Leaderboard: b.Entries(ctx),
		ExportDate:  now.UTC(),
	}
	if doc.Leaderboard == nil {
		doc.Leaderboard = []domain.LeaderboardEntry{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import replaces the board with the document's entries, re-ranked and
// truncated. It returns the user profile carried by the document, if any.
func (b *Board) Import(ctx context.Context, data []byte) (*Profile, error) {
	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse leaderboard export: %w", domain.ErrConfiguration, err)
	}

	var entries []domain.LeaderboardEntry
	for _, e := range doc.Leaderboard {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		entries = Upsert(entries, e)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.save(ctx, entries); err != nil {
		return nil, err
	}
	return doc.User, nil
}
