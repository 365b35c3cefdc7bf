package main

import (
	"fmt"
	"os"
	"strings"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "play":
		err = cmdPlay(os.Args[2:])
	case "daily":
		err = cmdDaily()
	case "stats":
		err = cmdStats()
	case "reset":
		err = cmdReset()
	case "leaderboard":
		err = cmdLeaderboard(os.Args[2:])
	case "profile":
		err = cmdProfile(os.Args[2:])
	case "questions":
		err = cmdQuestions()
	case "history":
		err = cmdHistory(os.Args[2:])
	case "worker":
		err = cmdWorker()
	case "config":
		err = cmdConfig(os.Args[2:])
	case "mcp":
		err = cmdMCP(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("learnhub %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`learnhub - Adaptive Coding Quiz

Usage:
  learnhub <command> [arguments]

Play Commands:
  play <category>       Play a category (fix-bug, flexbox, selector, html-builder, mixed)
  daily                 Play today's daily challenge
  stats                 Show score, streak and tier progress
  reset                 Reset stats to defaults

Leaderboard Commands:
  leaderboard           Show the top players
  leaderboard reset     Restore the demo leaderboard
  profile               Show your profile and achievements
  profile rename NAME   Change your leaderboard name
  profile avatar ICON   Change your avatar
  profile export FILE   Export profile and leaderboard as JSON
  profile import FILE   Import a previous export

Data Commands:
  questions             List the question bank by category
  history [N]           Show the last N graded attempts
  history questions     Show attempts per question
  history prune DAYS    Delete attempts older than DAYS
  worker                Record RabbitMQ game events into the attempt history

Setup Commands:
  config                Show current configuration
  config init           Write the default configuration
  config drivers        List storage backends

Integration Commands:
  mcp [--http ADDR]     Start the MCP server (stdio by default)

Other:
  help                  Show this help message
  version               Show version information

Examples:
  learnhub play flexbox        # Practice flexbox layouts
  learnhub leaderboard         # Show the top 10
  learnhub mcp                 # Start MCP server for an editor`)
}

// renderProgressBar creates a visual progress bar for a 0-100 percentage
func renderProgressBar(percent, width int) string {
	filled := percent * width / 100
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
