package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/learnhub/internal/domain"
	"github.com/felixgeelhaar/learnhub/internal/storage"
)

var (
	avatars    = []string{"😊", "🤖", "🎯", "🚀", "⭐", "🔥", "💎", "🎮", "🏆", "🌟"}
	adjectives = []string{"Quick", "Smart", "Clever", "Swift", "Bright", "Sharp", "Fast", "Cool"}
	nouns      = []string{"Coder", "Dev", "Hacker", "Builder", "Maker", "Creator", "Ninja", "Pro"}
)

// Avatars returns the avatars a player can choose from
func Avatars() []string {
	return append([]string(nil), avatars...)
}

// Profile is the local player: a stable ID plus the public board entry
type Profile struct {
	ID domain.PlayerID `json:"id"`
	domain.LeaderboardEntry
}

// Players manages the local player profile and mirrors it onto the board
type Players struct {
	mu          sync.Mutex
	store       storage.Store
	board       *Board
	rand        *rand.Rand
	now         func() time.Time
	defaultName string
	logger      *slog.Logger
}

// PlayerOption configures Players
type PlayerOption func(*Players)

// WithRand sets the source used for generated names and avatars
func WithRand(r *rand.Rand) PlayerOption {
	return func(p *Players) { p.rand = r }
}

// WithClock sets the clock used for join dates
func WithClock(now func() time.Time) PlayerOption {
	return func(p *Players) { p.now = now }
}

// WithDefaultName uses name instead of a generated one for a new profile
func WithDefaultName(name string) PlayerOption {
	return func(p *Players) { p.defaultName = strings.TrimSpace(name) }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) PlayerOption {
	return func(p *Players) { p.logger = logger }
}

// NewPlayers creates a profile manager. The profile is stored under
// storage.KeyPlayer in store.
func NewPlayers(store storage.Store, board *Board, opts ...PlayerOption) *Players {
	p := &Players{
		store:  store,
		board:  board,
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Players) generate() *Profile {
	name := p.defaultName
	if name == "" {
		name = adjectives[p.rand.IntN(len(adjectives))] + nouns[p.rand.IntN(len(nouns))]
	}
	joined := p.now().UTC()
	return &Profile{
		ID: domain.GeneratePlayerID(),
		LeaderboardEntry: domain.LeaderboardEntry{
			Name:     name,
			Avatar:   avatars[p.rand.IntN(len(avatars))],
			JoinDate: &joined,
		},
	}
}

// current loads or creates the profile; p.mu must be held
func (p *Players) current(ctx context.Context) *Profile {
	profile, err := storage.TryLoadJSON[*Profile](ctx, p.store, storage.KeyPlayer, nil)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		p.logger.Warn("player profile unreadable, creating a new one", "error", err)
	}
	if profile != nil && strings.TrimSpace(profile.Name) != "" {
		if profile.ID.IsZero() {
			profile.ID = domain.GeneratePlayerID()
			p.persist(ctx, profile)
		}
		return profile
	}

	profile = p.generate()
	p.persist(ctx, profile)
	p.logger.Info("created player profile", "name", profile.Name, "player_id", profile.ID)
	return profile
}

// persist saves the profile. Failures are logged; play continues.
func (p *Players) persist(ctx context.Context, profile *Profile) {
	if err := storage.SaveJSON(ctx, p.store, storage.KeyPlayer, profile); err != nil {
		p.logger.Error("failed to save player profile", "error", err)
	}
}

// Current returns the local player, creating one with a random
// AdjectiveNoun name and avatar on first use
func (p *Players) Current(ctx context.Context) *Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current(ctx)
}

// SyncStats copies the learner's numbers into the profile and the board
func (p *Players) SyncStats(ctx context.Context, snap domain.StatsSnapshot) (*Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	profile := p.current(ctx)
	profile.Score = snap.Score
	profile.Streak = snap.Streak
	profile.Accuracy = snap.Accuracy
	profile.GamesPlayed = snap.TotalQuestions

	p.persist(ctx, profile)
	if err := p.board.Upsert(ctx, profile.LeaderboardEntry); err != nil {
		return profile, err
	}
	return profile, nil
}

// Rename changes the player's name on the profile and the board
func (p *Players) Rename(ctx context.Context, newName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	profile := p.current(ctx)
	if err := p.board.Rename(ctx, profile.Name, newName); err != nil {
		return err
	}
	profile.Name = strings.TrimSpace(newName)
	p.persist(ctx, profile)
	return nil
}

// ChangeAvatar sets the avatar and re-publishes the board entry
func (p *Players) ChangeAvatar(ctx context.Context, avatar string) error {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return fmt.Errorf("%w: empty avatar", domain.ErrInvalidName)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	profile := p.current(ctx)
	profile.Avatar = avatar
	p.persist(ctx, profile)
	return p.board.Upsert(ctx, profile.LeaderboardEntry)
}

// Rank returns the player's position on the board
func (p *Players) Rank(ctx context.Context) (int, bool) {
	return p.board.RankOf(ctx, p.Current(ctx).Name)
}

// Achievements returns the badges the player has earned
func (p *Players) Achievements(ctx context.Context) []domain.Achievement {
	return domain.Achievements(p.Current(ctx).LeaderboardEntry)
}

// Export writes the profile and board as one JSON document
func (p *Players) Export(ctx context.Context) ([]byte, error) {
	profile := p.Current(ctx)
	return p.board.Export(ctx, profile, p.now())
}

// Import restores a document written by Export
func (p *Players) Import(ctx context.Context, data []byte) error {
	user, err := p.board.Import(ctx, data)
	if err != nil {
		return err
	}
	if user == nil || strings.TrimSpace(user.Name) == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = domain.GeneratePlayerID()
	}
	p.persist(ctx, user)
	return nil
}
