package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/paperdeck/internal/feed"
	"github.com/csheth/paperdeck/internal/llm"
	"github.com/csheth/paperdeck/internal/logging"
	"github.com/csheth/paperdeck/internal/tui"
)

func main() {
	apiEndpoint := flag.String("api", feed.DefaultEndpoint, "papers feed endpoint")
	llmModel := flag.String("llm-model", "", "override the chat model (default gpt-4o-mini, or OPENAI_MODEL)")
	llmBaseURL := flag.String("llm-base-url", "", "custom OpenAI-compatible base URL (or OPENAI_BASE_URL)")
	logPath := flag.String("log", "", "append diagnostics to this file (empty disables logging)")
	light := flag.Bool("light", false, "use the light color palette")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	flag.Parse()

	logger, closeLog, err := logging.New(*logPath)
	if err != nil {
		fmt.Println("failed to open log file:", err)
		os.Exit(1)
	}
	defer closeLog()

	llmClient, err := llm.NewFromEnv(llm.Config{
		Model:   *llmModel,
		BaseURL: *llmBaseURL,
		Logger:  logger,
	})
	if err != nil {
		fmt.Println("AI features disabled:", err)
		llmClient = nil
	}

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Feed:   feed.NewClient(*apiEndpoint, nil),
			LLM:    llmClient,
			Theme:  tui.Theme{Dark: !*light},
			Logger: logger,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
