package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"ai-knowledge-router-be/internal/bootstrap"
	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/internal/repository/unitofwork"
	"ai-knowledge-router-be/pkg/database"
	"ai-knowledge-router-be/pkg/rag/executor"
	"ai-knowledge-router-be/pkg/store"

	"github.com/fatih/color"
	"github.com/google/uuid"
	gormlogger "gorm.io/gorm/logger"
)

// simulate drives the routing pipeline in-process and prints every decision.
// Questions come from the arguments, or from stdin when none are given.
func main() {
	company := flag.Bool("company", true, "search company sources")
	general := flag.Bool("general", false, "allow general knowledge answers")
	browse := flag.Bool("browse", false, "allow web search")
	curated := flag.Bool("curated", false, "curated knowledge base mode")
	conversation := flag.String("conversation", "", "conversation id (random when empty)")
	flag.Parse()

	cfg := config.Load()
	sysLogger := logger.NewIsolatedLogger("logs/simulate.log")

	deps := bootstrap.PipelineDeps{Logger: sysLogger}
	if cfg.Database.Connection != "" {
		opts := database.DefaultOptions()
		opts.LogLevel = gormlogger.Error
		db, err := database.Open(cfg.Database.Connection, opts)
		if err != nil {
			color.Red("Database unavailable: %v", err)
		} else {
			deps.UowFactory = unitofwork.NewRepositoryFactory(db)
		}
	}
	if deps.UowFactory == nil {
		color.Yellow("Running without a database: attachment, knowledge base and tabular probes are off")
	}

	pipeline, err := bootstrap.BuildPipeline(cfg, deps)
	if err != nil {
		color.Red("Failed to build pipeline: %v", err)
		os.Exit(1)
	}

	conversationId := *conversation
	if conversationId == "" {
		conversationId = uuid.NewString()
	}
	sim := &simulator{
		pipeline:       pipeline,
		conversationId: conversationId,
		flags:          store.ModeFlags{Company: *company, General: *general, Browse: *browse},
		curated:        *curated,
		window:         cfg.Routing.HistoryWindow,
	}

	color.Cyan("Knowledge router simulation (conversation %s)", conversationId)
	color.Cyan("Modes: company=%t general=%t browse=%t curated=%t\n", *company, *general, *browse, *curated)

	if questions := flag.Args(); len(questions) > 0 {
		for _, q := range questions {
			sim.ask(q)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		color.New(color.FgHiWhite, color.Bold).Print("\nYOU > ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return
		}
		sim.ask(line)
	}
}

type simulator struct {
	pipeline       *executor.PipelineExecutor
	conversationId string
	flags          store.ModeFlags
	curated        bool
	window         int
	history        []store.Turn
}

func (s *simulator) ask(question string) {
	start := time.Now()
	final := s.pipeline.Execute(context.Background(), executor.Input{
		ConversationID: s.conversationId,
		Question:       question,
		Flags:          s.flags,
		Recent:         s.recent(),
		CuratedMode:    s.curated,
	})
	elapsed := time.Since(start)

	source := string(final.Source)
	if source == "" {
		source = "none"
	}
	color.Green("BOT > %s", final.Answer)
	color.HiBlack("      source=%s intent=%s confidence=%.2f took=%s", source, final.Intent, final.Confidence, elapsed.Round(time.Millisecond))
	if final.EffectiveQuestion != "" && final.EffectiveQuestion != question {
		color.HiBlack("      routed question: %s", final.EffectiveQuestion)
	}
	if final.Prompt != nil {
		color.Yellow("      waiting for %s", final.Prompt.State)
	}
	for i, c := range final.Citations {
		fmt.Printf("      [%d] %s (%s) %s\n", i+1, c.Title, c.SourceType, c.URL)
	}

	turn := store.Turn{
		ID:             uuid.NewString(),
		ConversationID: s.conversationId,
		Question:       question,
		Answer:         final.Answer,
		ModeFlags:      final.ModeFlags,
		Citations:      final.Citations,
		Confidence:     final.Confidence,
		DialogueState:  store.DialogueStateNone,
		CreatedAt:      time.Now(),
	}
	if p := final.Prompt; p != nil {
		turn.DialogueState = p.State
		turn.ProposedQuestion = p.ProposedQuestion
		turn.BaseQuestion = p.BaseQuestion
		turn.Options = p.Options
	}
	s.history = append(s.history, turn)
}

func (s *simulator) recent() []store.Turn {
	if len(s.history) <= s.window {
		return s.history
	}
	return s.history[len(s.history)-s.window:]
}
