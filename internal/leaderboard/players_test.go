package leaderboard

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/felixgeelhaar/learnhub/internal/domain"
	"github.com/felixgeelhaar/learnhub/internal/storage"
	"github.com/felixgeelhaar/learnhub/internal/storage/memory"
)

func newPlayers(t *testing.T, opts ...PlayerOption) (*Players, *Board, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	board := NewBoard(store, nil)
	opts = append([]PlayerOption{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return NewPlayers(store, board, opts...), board, store
}

func TestPlayers_CurrentGeneratesOnce(t *testing.T) {
	ctx := context.Background()
	joined := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p, _, store := newPlayers(t, WithClock(func() time.Time { return joined }))

	first := p.Current(ctx)
	if first.ID.IsZero() {
		t.Error("generated profile has no ID")
	}
	if first.JoinDate == nil || !first.JoinDate.Equal(joined) {
		t.Errorf("JoinDate = %v, want %v", first.JoinDate, joined)
	}
	if !slices.Contains(avatars, first.Avatar) {
		t.Errorf("Avatar = %q, not from the avatar list", first.Avatar)
	}

	validName := false
	for _, a := range adjectives {
		for _, n := range nouns {
			if first.Name == a+n {
				validName = true
			}
		}
	}
	if !validName {
		t.Errorf("Name = %q, want AdjectiveNoun", first.Name)
	}

	second := p.Current(ctx)
	if second.Name != first.Name || second.ID != first.ID {
		t.Errorf("Current() changed between calls: %+v then %+v", first, second)
	}

	if _, err := store.Get(ctx, storage.KeyPlayer); err != nil {
		t.Errorf("profile not persisted: %v", err)
	}
}

func TestPlayers_DefaultName(t *testing.T) {
	p, _, _ := newPlayers(t, WithDefaultName("  Grace "))
	if got := p.Current(context.Background()).Name; got != "Grace" {
		t.Errorf("Name = %q, want Grace", got)
	}
}

func TestPlayers_SyncStats(t *testing.T) {
	ctx := context.Background()
	p, board, _ := newPlayers(t, WithDefaultName("Ada"))

	snap := domain.StatsSnapshot{Score: 77, Streak: 3, Accuracy: 80, TotalQuestions: 12}
	profile, err := p.SyncStats(ctx, snap)
	if err != nil {
		t.Fatalf("SyncStats() error = %v", err)
	}
	if profile.Score != 77 || profile.GamesPlayed != 12 || profile.Accuracy != 80 {
		t.Errorf("profile = %+v, want score 77, games 12, accuracy 80", profile)
	}

	rank, ok := board.RankOf(ctx, "Ada")
	if !ok || rank != 1 {
		t.Errorf("RankOf(Ada) = %d, %v; want 1, true", rank, ok)
	}
	if got, _ := p.Rank(ctx); got != 1 {
		t.Errorf("Rank() = %d, want 1", got)
	}
}

func TestPlayers_RenameAndAvatar(t *testing.T) {
	ctx := context.Background()
	p, board, _ := newPlayers(t, WithDefaultName("Ada"))
	if _, err := board.Seed(ctx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if _, err := p.SyncStats(ctx, domain.StatsSnapshot{Score: 5}); err != nil {
		t.Fatalf("SyncStats() error = %v", err)
	}

	if err := p.Rename(ctx, "jsguru"); !errors.Is(err, domain.ErrNameTaken) {
		t.Errorf("Rename(jsguru) error = %v, want ErrNameTaken", err)
	}
	if err := p.Rename(ctx, ""); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("Rename(\"\") error = %v, want ErrInvalidName", err)
	}
	if err := p.Rename(ctx, "Lovelace"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if got := p.Current(ctx).Name; got != "Lovelace" {
		t.Errorf("Name = %q, want Lovelace", got)
	}
	if _, ok := board.RankOf(ctx, "Lovelace"); !ok {
		t.Error("board should carry the new name")
	}

	if err := p.ChangeAvatar(ctx, "🚀"); err != nil {
		t.Fatalf("ChangeAvatar() error = %v", err)
	}
	entries := board.Entries(ctx)
	i := slices.IndexFunc(entries, func(e domain.LeaderboardEntry) bool { return e.Name == "Lovelace" })
	if i < 0 || entries[i].Avatar != "🚀" {
		t.Errorf("board avatar not updated: %+v", entries)
	}
}

func TestPlayers_Achievements(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newPlayers(t)
	if _, err := p.SyncStats(ctx, domain.StatsSnapshot{Score: 150, Streak: 5, Accuracy: 76, TotalQuestions: 10}); err != nil {
		t.Fatalf("SyncStats() error = %v", err)
	}

	got := p.Achievements(ctx)
	if len(got) != 4 {
		t.Errorf("Achievements() = %+v, want 4 badges", got)
	}
}

func TestPlayers_ExportImport(t *testing.T) {
	ctx := context.Background()
	src, _, _ := newPlayers(t, WithDefaultName("Ada"))
	if _, err := src.SyncStats(ctx, domain.StatsSnapshot{Score: 33}); err != nil {
		t.Fatalf("SyncStats() error = %v", err)
	}
	data, err := src.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	dst, board, _ := newPlayers(t)
	if err := dst.Import(ctx, data); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got := dst.Current(ctx); got.Name != "Ada" || got.Score != 33 {
		t.Errorf("Current() = %+v, want Ada with score 33", got)
	}
	if _, ok := board.RankOf(ctx, "Ada"); !ok {
		t.Error("imported board should rank Ada")
	}
}
