package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/learnhub/internal/domain"
	"github.com/felixgeelhaar/learnhub/internal/game"
)

// cmdPlay runs an interactive session in one category
func cmdPlay(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: learnhub play <category> (valid: %s)", categoryList())
	}
	category, err := domain.ParseCategory(args[0])
	if err != nil {
		return fmt.Errorf("%w (valid: %s)", err, categoryList())
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.newSession(ctx)
	if err := sess.SelectCategory(ctx, category); err != nil {
		return err
	}

	return play(ctx, sess, os.Stdin, os.Stdout, false)
}

// cmdDaily plays today's daily challenge once
func cmdDaily() error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.newSession(ctx)
	if !sess.DailyAvailable(ctx) {
		fmt.Println("You already completed today's challenge. Come back tomorrow!")
		return nil
	}
	return play(ctx, sess, os.Stdin, os.Stdout, true)
}

// play asks questions until the input ends or the learner quits. With
// daily set it plays the daily challenge once.
func play(ctx context.Context, sess *game.Session, in io.Reader, out io.Writer, daily bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		var (
			q   *domain.Question
			err error
		)
		if daily {
			q, err = sess.DailyChallenge(ctx)
		} else {
			q, err = sess.NextQuestion(ctx)
		}
		if err != nil {
			return err
		}
		printQuestion(out, q)

		answer, cmd, ok := readAnswer(scanner, out)
		for ok && cmd != "" && cmd != "skip" && cmd != "quit" {
			switch cmd {
			case "hint":
				hint, _ := sess.Hint()
				fmt.Fprintf(out, "💡 %s\n", hint)
			case "reveal":
				solution, _ := sess.RevealSolution(ctx)
				fmt.Fprintf(out, "Solution:\n%s\n(Submitting now costs points.)\n", solution)
			case "stats":
				printStats(out, sess.CurrentStats())
			default:
				fmt.Fprintf(out, "Unknown command :%s\n", cmd)
			}
			answer, cmd, ok = readAnswer(scanner, out)
		}
		if !ok || cmd == "quit" {
			printStats(out, sess.CurrentStats())
			return scanner.Err()
		}
		if cmd == "skip" {
			if daily {
				fmt.Fprintln(out, "Daily challenge skipped.")
				return nil
			}
			continue
		}

		res, err := sess.SubmitAnswer(ctx, chooseOption(q, answer), false)
		if err != nil {
			return err
		}
		printResult(out, res)

		if daily {
			return nil
		}
	}
}

// chooseOption maps a bare option number to the option it labels
func chooseOption(q *domain.Question, answer string) string {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > len(q.Options) {
		return answer
	}
	return q.Options[n-1]
}

// readAnswer collects lines until an empty line. A line starting with ':'
// is returned as a command. ok is false when the input is exhausted.
func readAnswer(scanner *bufio.Scanner, out io.Writer) (answer, cmd string, ok bool) {
	fmt.Fprint(out, "> ")
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if len(lines) == 0 && strings.HasPrefix(line, ":") {
			return "", strings.ToLower(strings.TrimSpace(line[1:])), true
		}
		if strings.TrimSpace(line) == "" {
			if len(lines) == 0 {
				continue
			}
			return strings.Join(lines, "\n"), "", true
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n"), "", true
	}
	return "", "", false
}

func printQuestion(out io.Writer, q *domain.Question) {
	fmt.Fprintf(out, "\n[%s · %s · %d pts] %s\n", q.Category, q.Difficulty, q.BasePoints(), q.Title)
	fmt.Fprintln(out, strings.Repeat("-", 40))
	fmt.Fprintln(out, q.Prompt)
	if q.Code != "" {
		fmt.Fprintf(out, "\n%s\n", q.Code)
	}
	if q.Markup != "" {
		fmt.Fprintf(out, "\nHTML:\n%s\n", q.Markup)
	}
	if q.Template != "" {
		fmt.Fprintf(out, "\nCSS:\n%s\n", q.Template)
	}
	for i, opt := range q.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprintln(out, "\nAnswer, then an empty line. Commands: :hint :reveal :stats :skip :quit")
}

func printResult(out io.Writer, res domain.AttemptResult) {
	fmt.Fprintln(out, res.Feedback)
	if res.Solution != "" {
		fmt.Fprintf(out, "Solution:\n%s\n", res.Solution)
	}
	if res.Explanation != "" {
		fmt.Fprintf(out, "Why: %s\n", res.Explanation)
	}
	sign := "+"
	if res.PointsEarned < 0 {
		sign = ""
	}
	fmt.Fprintf(out, "Points: %s%d  Difficulty: %s\n", sign, res.PointsEarned, res.Difficulty)
}

func printStats(out io.Writer, s domain.StatsSnapshot) {
	fmt.Fprintln(out, "Stats")
	fmt.Fprintln(out, "=====")
	fmt.Fprintf(out, "Score:       %d\n", s.Score)
	fmt.Fprintf(out, "Streak:      %d (best %d)\n", s.Streak, s.MaxStreak)
	fmt.Fprintf(out, "Accuracy:    %d%% (%d/%d)\n", s.Accuracy, s.CorrectAnswers, s.TotalQuestions)
	fmt.Fprintf(out, "Difficulty:  %s %s %d/%d\n", s.CurrentDifficulty,
		renderProgressBar(s.ProgressToNextTier, 20), s.QuestionsInTier, s.QuestionsPerTier)
	fmt.Fprintf(out, "Games:       %d\n", s.GamesPlayed)
}

func categoryList() string {
	names := make([]string, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
