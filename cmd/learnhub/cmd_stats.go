package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// errNoHistory is returned by history commands when no attempt log is configured
var errNoHistory = errors.New("attempt history is disabled (set storage.history_path or use the sqlite backend)")

// cmdStats shows the learner's persisted stats
func cmdStats() error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.newSession(ctx)
	printStats(os.Stdout, sess.CurrentStats())

	if sess.DailyAvailable(ctx) {
		fmt.Println("\nToday's daily challenge is waiting: learnhub daily")
	}
	return nil
}

// cmdReset restores default stats
func cmdReset() error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	a.newSession(ctx).ResetStats(ctx)
	fmt.Println("Stats reset. Difficulty is back to easy.")
	return nil
}

// cmdLeaderboard shows or resets the leaderboard
func cmdLeaderboard(args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) > 0 && args[0] == "reset" {
		if err := a.board.Reset(ctx); err != nil {
			return err
		}
		fmt.Println("Leaderboard restored to the demo players.")
		return nil
	}

	limit := 0
	if len(args) > 0 {
		if limit, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("unknown leaderboard command: %s (valid: reset, or a number)", args[0])
		}
	}

	me := a.players.Current(ctx)
	fmt.Println("Leaderboard")
	fmt.Println("===========")
	for i, e := range a.board.TopN(ctx, limit) {
		marker := "  "
		if e.Name == me.Name {
			marker = "▶ "
		}
		fmt.Printf("%s%2d. %s %-20s %6d pts  streak %-3d %3d%%  %d answered\n",
			marker, i+1, e.Avatar, e.Name, e.Score, e.Streak, e.Accuracy, e.GamesPlayed)
	}

	sum := a.board.Summary(ctx)
	fmt.Printf("\n%d players · average score %d · top score %d · average accuracy %d%%\n",
		sum.TotalPlayers, sum.AverageScore, sum.HighestScore, sum.AverageAccuracy)
	if rank, ok := a.players.Rank(ctx); ok {
		fmt.Printf("Your rank: #%d\n", rank)
	}
	return nil
}

// cmdProfile shows or edits the local player
func cmdProfile(args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	subCmd := ""
	if len(args) > 0 {
		subCmd = args[0]
	}
	needArg := func() (string, error) {
		if len(args) < 2 {
			return "", fmt.Errorf("usage: learnhub profile %s <value>", subCmd)
		}
		return args[1], nil
	}

	switch subCmd {
	case "":
		p := a.players.Current(ctx)
		fmt.Printf("%s %s\n", p.Avatar, p.Name)
		if p.JoinDate != nil {
			fmt.Printf("Joined:   %s\n", p.JoinDate.Format(time.DateOnly))
		}
		fmt.Printf("Score:    %d\n", p.Score)
		fmt.Printf("Accuracy: %d%%\n", p.Accuracy)
		if rank, ok := a.players.Rank(ctx); ok {
			fmt.Printf("Rank:     #%d\n", rank)
		}
		badges := a.players.Achievements(ctx)
		if len(badges) > 0 {
			fmt.Println("\nAchievements")
			fmt.Println("------------")
			for _, b := range badges {
				fmt.Printf("%s %-16s %s\n", b.Icon, b.Name, b.Description)
			}
		}
		return nil
	case "rename":
		name, err := needArg()
		if err != nil {
			return err
		}
		if err := a.players.Rename(ctx, name); err != nil {
			return err
		}
		fmt.Printf("Renamed to %s\n", name)
		return nil
	case "avatar":
		avatar, err := needArg()
		if err != nil {
			return err
		}
		return a.players.ChangeAvatar(ctx, avatar)
	case "export":
		path, err := needArg()
		if err != nil {
			return err
		}
		data, err := a.players.Export(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	case "import":
		path, err := needArg()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read import: %w", err)
		}
		if err := a.players.Import(ctx, data); err != nil {
			return err
		}
		fmt.Printf("Imported %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown profile command: %s (valid: rename, avatar, export, import)", subCmd)
	}
}

// cmdQuestions lists the bank per category and tier
func cmdQuestions() error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("Question Bank")
	fmt.Println("=============")
	for _, cs := range a.bank.Stats() {
		fmt.Printf("%-14s %3d  (easy %d, medium %d, hard %d)\n", cs.Category, cs.Total,
			cs.ByTier[domain.DifficultyEasy], cs.ByTier[domain.DifficultyMedium], cs.ByTier[domain.DifficultyHard])
	}
	fmt.Printf("\nTotal: %d questions\n", a.bank.Len())
	return nil
}

// cmdHistory shows recent attempts or per-question totals, or prunes old ones
func cmdHistory(args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.backend.History == nil {
		return errNoHistory
	}

	if len(args) > 0 && args[0] == "questions" {
		summaries, err := a.backend.History.ByQuestion(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Attempts by Question")
		fmt.Println("====================")
		for _, s := range summaries {
			fmt.Printf("%-24s %3d attempts  %3d correct  %3d revealed\n", s.QuestionID, s.Attempts, s.Correct, s.Revealed)
		}
		return nil
	}

	if len(args) > 0 && args[0] == "prune" {
		if len(args) < 2 {
			return fmt.Errorf("usage: learnhub history prune <days>")
		}
		days, err := strconv.Atoi(args[1])
		if err != nil || days <= 0 {
			return fmt.Errorf("invalid days: %s", args[1])
		}
		n, err := a.backend.History.Prune(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d attempts older than %d days\n", n, days)
		return nil
	}

	limit := 20
	if len(args) > 0 {
		if limit, err = strconv.Atoi(args[0]); err != nil || limit <= 0 {
			return fmt.Errorf("unknown history command: %s (valid: questions, or a positive number)", args[0])
		}
	}

	attempts, err := a.backend.History.Recent(ctx, "", limit)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		fmt.Println("No attempts recorded yet. Start practicing!")
		return nil
	}

	fmt.Println("Recent Attempts")
	fmt.Println("===============")
	for _, at := range attempts {
		mark := "✗"
		switch {
		case at.Revealed:
			mark = "👁"
		case at.Correct:
			mark = "✓"
		}
		fmt.Printf("%s %s  %-24s %-12s %-6s %+4d  %s\n", mark, at.CreatedAt.Local().Format(time.DateTime),
			at.QuestionID, at.Category, at.Difficulty, at.PointsEarned, at.TimeSpent.Round(time.Second))
	}
	return nil
}
