package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/felixgeelhaar/fortify/ratelimit"
	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/learnhub/internal/domain"
	"github.com/felixgeelhaar/learnhub/internal/game"
	"github.com/felixgeelhaar/learnhub/internal/leaderboard"
	"github.com/felixgeelhaar/learnhub/internal/storage"
)

// ErrSessionNotFound is returned for an unknown or ended session id
var ErrSessionNotFound = errors.New("session not found")

// submitKey is the rate limiter bucket shared by all answer submissions
const submitKey = "submit"

// Server wraps the MCP server with learnhub functionality
type Server struct {
	mcpServer *server.Server
	questions game.QuestionSource
	validator game.AnswerValidator
	store     storage.Store
	board     *leaderboard.Board
	publisher game.Publisher
	gameCfg   game.Config
	limiter   ratelimit.RateLimiter
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
	players  map[string]*entry
}

// entry serializes calls against one game session. A named player's entry
// is shared by every open session id of that player; refs and key are
// guarded by Server.mu.
type entry struct {
	mu      sync.Mutex
	session *game.Session
	player  string
	key     string
	refs    int
}

// Config contains configuration for the MCP server
type Config struct {
	Questions game.QuestionSource
	Validator game.AnswerValidator

	// Store holds per-player stats; each session is namespaced inside it
	Store storage.Store

	// Board is optional; named players are ranked on it after every answer
	Board *leaderboard.Board

	Publisher game.Publisher
	Game      game.Config
	Version   string

	// SubmitsPerSecond caps answer submissions across sessions (0 disables)
	SubmitsPerSecond int

	Logger *slog.Logger
}

// NewServer creates a new MCP server for learnhub
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		questions: cfg.Questions,
		validator: cfg.Validator,
		store:     cfg.Store,
		board:     cfg.Board,
		publisher: cfg.Publisher,
		gameCfg:   cfg.Game,
		logger:    cfg.Logger,
		sessions:  make(map[string]*entry),
		players:   make(map[string]*entry),
	}

	if cfg.SubmitsPerSecond > 0 {
		s.limiter = ratelimit.New(&ratelimit.Config{
			Rate:     cfg.SubmitsPerSecond,
			Burst:    cfg.SubmitsPerSecond * 3,
			Interval: time.Second,
		})
	}

	s.mcpServer = server.New(server.Info{
		Name:    "learnhub",
		Version: cfg.Version,
	}, server.WithInstructions(`
learnhub is an adaptive coding quiz. Questions get harder as the learner
answers correctly and stats persist between sessions.

Available tools:
- learnhub_start: Start a session in a category (fix-bug, flexbox, selector, html-builder, mixed)
- learnhub_next: Get the next question
- learnhub_daily: Get today's daily challenge
- learnhub_submit: Submit an answer and receive feedback
- learnhub_reveal: Reveal the solution (the next submission scores the reveal penalty)
- learnhub_hint: Get the category hint
- learnhub_stats: Show session stats
- learnhub_reset: Reset stats to defaults
- learnhub_leaderboard: Show the leaderboard
- learnhub_stop: End a session

Scoring:
- Correct answers earn the question's points plus a streak bonus
- Wrong answers score nothing and revealing a solution costs 5 points
`))

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("learnhub_start").
		Description("Start a practice session in a question category").
		Handler(s.handleStart)

	s.mcpServer.Tool("learnhub_next").
		Description("Get the next question for the session's current difficulty").
		Handler(s.handleNext)

	s.mcpServer.Tool("learnhub_daily").
		Description("Get today's daily challenge question").
		Handler(s.handleDaily)

	s.mcpServer.Tool("learnhub_submit").
		Description("Submit an answer to the current question").
		Handler(s.handleSubmit)

	s.mcpServer.Tool("learnhub_reveal").
		Description("Reveal the solution of the current question").
		Handler(s.handleReveal)

	s.mcpServer.Tool("learnhub_hint").
		Description("Get a hint for the session's category").
		Handler(s.handleHint)

	s.mcpServer.Tool("learnhub_stats").
		Description("Show score, streak, accuracy and tier progress").
		Handler(s.handleStats)

	s.mcpServer.Tool("learnhub_reset").
		Description("Reset the session's stats to defaults").
		Handler(s.handleReset)

	s.mcpServer.Tool("learnhub_leaderboard").
		Description("Show the top players").
		Handler(s.handleLeaderboard)

	s.mcpServer.Tool("learnhub_stop").
		Description("End a practice session").
		Handler(s.handleStop)
}

// Input/Output types

type StartInput struct {
	Category string `json:"category" jsonschema:"description=Question category,enum=fix-bug,enum=flexbox,enum=selector,enum=html-builder,enum=mixed"`
	Player   string `json:"player,omitempty" jsonschema:"description=Player name; stats persist per player and named players appear on the leaderboard"`
}

type StartOutput struct {
	SessionID string               `json:"session_id"`
	Category  string               `json:"category"`
	Stats     domain.StatsSnapshot `json:"stats"`
	Message   string               `json:"message"`
}

type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"description=Session ID from learnhub_start"`
}

type QuestionOutput struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Prompt     string   `json:"prompt"`
	Code       string   `json:"code,omitempty"`
	Markup     string   `json:"markup,omitempty"`
	Template   string   `json:"template,omitempty"`
	Options    []string `json:"options,omitempty"`
	Points     int      `json:"points"`
}

type SubmitInput struct {
	SessionID string `json:"session_id" jsonschema:"description=Session ID from learnhub_start"`
	Answer    string `json:"answer" jsonschema:"description=The answer: fixed code, CSS declarations, a selector option or HTML tags"`
}

type SubmitOutput struct {
	Correct      bool   `json:"correct"`
	PointsEarned int    `json:"points_earned"`
	Feedback     string `json:"feedback"`
	Solution     string `json:"solution,omitempty"`
	Explanation  string `json:"explanation,omitempty"`
	Score        int    `json:"score"`
	Streak       int    `json:"streak"`
	Difficulty   string `json:"difficulty"`
}

type RevealOutput struct {
	Solution string `json:"solution"`
	Message  string `json:"message"`
}

type HintOutput struct {
	Hint string `json:"hint"`
}

type MessageOutput struct {
	Message string `json:"message"`
}

type LeaderboardInput struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Number of entries to return (default: 10)"`
	Player string `json:"player,omitempty" jsonschema:"description=Player name to report the rank of"`
}

type LeaderboardOutput struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
	Summary leaderboard.Summary       `json:"summary"`
	Rank    int                       `json:"rank,omitempty"`
}

// Tool handlers

func (s *Server) handleStart(ctx context.Context, input StartInput) (StartOutput, error) {
	if s.questions == nil || s.validator == nil || s.store == nil {
		return StartOutput{}, fmt.Errorf("%w: server has no question bank or store", domain.ErrConfiguration)
	}

	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return StartOutput{}, err
	}

	player := strings.TrimSpace(input.Player)
	cfg := s.gameCfg
	cfg.ID = domain.GenerateSessionID()
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}

	key := namespace(player, cfg.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A named player has at most one live game.Session; further starts bind
	// new ids to it.
	e, shared := s.players[key]
	if !shared {
		sess := game.NewSession(ctx, storage.WithPrefix(s.store, key), s.questions, s.validator, cfg)
		if s.publisher != nil {
			sess.SetPublisher(s.publisher)
		}
		if player != "" && s.board != nil {
			sess.SetStatsHook(s.rankHook(player))
		}
		e = &entry{session: sess, player: player, key: key}
	}

	e.mu.Lock()
	err = e.session.SelectCategory(ctx, category)
	stats := e.session.CurrentStats()
	e.mu.Unlock()
	if err != nil {
		return StartOutput{}, fmt.Errorf("failed to start session: %w", err)
	}

	id := cfg.ID.String()
	e.refs++
	s.sessions[id] = e
	if player != "" {
		s.players[key] = e
	}

	s.logger.Info("session started", "session_id", id, "category", category, "player", player, "shared", shared)

	return StartOutput{
		SessionID: id,
		Category:  string(category),
		Stats:     stats,
		Message:   fmt.Sprintf("Session started in %s. Call learnhub_next for your first question.", category),
	}, nil
}

func (s *Server) handleNext(ctx context.Context, input SessionInput) (QuestionOutput, error) {
	e, err := s.lookup(input.SessionID)
	if err != nil {
		return QuestionOutput{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.session.NextQuestion(ctx)
	if err != nil {
		return QuestionOutput{}, err
	}
	return toQuestionOutput(q), nil
}

func (s *Server) handleDaily(ctx context.Context, input SessionInput) (QuestionOutput, error) {
	e, err := s.lookup(input.SessionID)
	if err != nil {
		return QuestionOutput{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.session.DailyChallenge(ctx)
	if err != nil {
		return QuestionOutput{}, err
	}
	return toQuestionOutput(q), nil
}

func (s *Server) handleSubmit(ctx context.Context, input SubmitInput) (SubmitOutput, error) {
	if s.limiter != nil && !s.limiter.Allow(ctx, submitKey) {
		return SubmitOutput{}, fmt.Errorf("rate limit exceeded for submissions")
	}

	e, err := s.lookup(input.SessionID)
	if err != nil {
		return SubmitOutput{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.session.SubmitAnswer(ctx, input.Answer, false)
	if err != nil {
		return SubmitOutput{}, err
	}

	stats := e.session.CurrentStats()
	return SubmitOutput{
		Correct:      res.IsCorrect,
		PointsEarned: res.PointsEarned,
		Feedback:     res.Feedback,
		Solution:     res.Solution,
		Explanation:  res.Explanation,
		Score:        stats.Score,
		Streak:       stats.Streak,
		Difficulty:   string(res.Difficulty),
	}, nil
}

func (s *Server) handleReveal(ctx context.Context, input SessionInput) (RevealOutput, error) {
	e, err := s.lookup(input.SessionID)
	if err != nil {
		return RevealOutput{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	solution, err := e.session.RevealSolution(ctx)
	if err != nil {
		return RevealOutput{}, err
	}
	return RevealOutput{
		Solution: solution,
		Message:  "Solution revealed. Submitting now scores as a revealed answer.",
	}, nil
}

func (s *Server) handleHint(ctx context.Context, input SessionInput) (HintOutput, error) {
	e, err := s.lookup(input.SessionID)
	if err != nil {
		return HintOutput{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	hint, err := e.session.Hint()
	if err != nil {
		return HintOutput{}, err
	}
	return HintOutput{Hint: hint}, nil
}

func (s *Server) handleStats(ctx context.Context, input SessionInput) (domain.StatsSnapshot, error) {
	e, err := s.lookup(input.SessionID)
	if err != nil {
		return domain.StatsSnapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.session.CurrentStats(), nil
}

func (s *Server) handleReset(ctx context.Context, input SessionInput) (MessageOutput, error) {
	e, err := s.lookup(input.SessionID)
	if err != nil {
		return MessageOutput{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.ResetStats(ctx)
	return MessageOutput{Message: "Stats reset. Difficulty is back to easy."}, nil
}

func (s *Server) handleLeaderboard(ctx context.Context, input LeaderboardInput) (LeaderboardOutput, error) {
	if s.board == nil {
		return LeaderboardOutput{}, fmt.Errorf("%w: leaderboard is not configured", domain.ErrConfiguration)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = leaderboard.DefaultTopN
	}

	out := LeaderboardOutput{
		Entries: s.board.TopN(ctx, limit),
		Summary: s.board.Summary(ctx),
	}
	if name := strings.TrimSpace(input.Player); name != "" {
		if rank, ok := s.board.RankOf(ctx, name); ok {
			out.Rank = rank
		}
	}
	return out, nil
}

func (s *Server) handleStop(ctx context.Context, input SessionInput) (MessageOutput, error) {
	s.mu.Lock()
	e, ok := s.sessions[input.SessionID]
	if ok {
		delete(s.sessions, input.SessionID)
		e.refs--
		if e.refs == 0 && s.players[e.key] == e {
			delete(s.players, e.key)
		}
	}
	s.mu.Unlock()

	if !ok {
		return MessageOutput{}, fmt.Errorf("%w: %s", ErrSessionNotFound, input.SessionID)
	}

	e.mu.Lock()
	stats := e.session.CurrentStats()
	e.mu.Unlock()

	s.logger.Info("session ended", "session_id", input.SessionID, "player", e.player, "score", stats.Score)
	return MessageOutput{
		Message: fmt.Sprintf("Session ended. Final score: %d, accuracy: %d%%.", stats.Score, stats.Accuracy),
	}, nil
}

func (s *Server) lookup(id string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e, nil
}

// rankHook mirrors a named player's stats onto the leaderboard
func (s *Server) rankHook(player string) game.StatsHook {
	return func(ctx context.Context, snap domain.StatsSnapshot) {
		err := s.board.Upsert(ctx, domain.LeaderboardEntry{
			Name:        player,
			Score:       snap.Score,
			Streak:      snap.Streak,
			Accuracy:    snap.Accuracy,
			GamesPlayed: snap.TotalQuestions,
		})
		if err != nil {
			s.logger.Warn("leaderboard update failed", "player", player, "error", err)
		}
	}
}

func toQuestionOutput(q *domain.Question) QuestionOutput {
	return QuestionOutput{
		ID:         q.ID,
		Title:      q.Title,
		Category:   string(q.Category),
		Difficulty: string(q.Difficulty),
		Prompt:     q.Prompt,
		Code:       q.Code,
		Markup:     q.Markup,
		Template:   q.Template,
		Options:    q.Options,
		Points:     q.BasePoints(),
	}
}

// namespace maps a player to a stable storage prefix. Anonymous sessions
// get a prefix of their own and start fresh.
func namespace(player string, id domain.SessionID) string {
	var b strings.Builder
	for _, r := range strings.ToLower(player) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	if slug := strings.Trim(b.String(), "-"); slug != "" {
		return "players" + storage.PrefixSeparator + slug
	}
	return "sessions" + storage.PrefixSeparator + id.String()
}

// Close releases the submission rate limiter
func (s *Server) Close() error {
	if s.limiter != nil {
		return s.limiter.Close()
	}
	return nil
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP (alternative transport)
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
