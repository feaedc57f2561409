package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tmalunga/syllabussense/internal/api"
	"github.com/tmalunga/syllabussense/internal/config"
	"github.com/tmalunga/syllabussense/internal/genai"
	"github.com/tmalunga/syllabussense/internal/metrics"
	"github.com/tmalunga/syllabussense/internal/syllabus"
	"github.com/tmalunga/syllabussense/internal/workflow"
	"github.com/tmalunga/syllabussense/internal/writer"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath string
	envFile    string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "syllabussense",
		Short: "SyllabusSense - syllabus-driven question bank generator",
		Long: `SyllabusSense reads a syllabus document, extracts its topics and
subtopics, plans question coverage and generates multiple-choice
questions with an LLM, saving the results per topic.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the question generation pipeline",
		Long: `Run the complete question generation pipeline:
1. Extract subtopics from each syllabus topic
2. Plan question coverage across the subtopics
3. Generate questions batch by batch
4. Save questions per topic under the session directory`,
		RunE: runGeneration,
	}

	runCmd.Flags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	runCmd.Flags().StringVar(&envFile, "env-file", ".env", "Path to environment file")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	topicsCmd := &cobra.Command{
		Use:   "topics",
		Short: "List the topics found in the syllabus document",
		Long:  "Parse the configured syllabus document and list its topics without generating anything",
		RunE:  listTopics,
	}

	topicsCmd.Flags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(topicsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGeneration(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: failed to load env file: %v\n", err)
			}
		} else if verbose {
			fmt.Fprintf(os.Stderr, "Loaded env file: %s\n", envFile)
		}
	}

	cfg, secrets, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	sessionMgr, err := writer.NewSessionManager(cfg.Output.Dir, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	logger, logFile, err := writer.SetupLogger(sessionMgr, logLevel)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer func() {
		if logFile != nil {
			_ = logFile.Sync()
			_ = logFile.Close()
		}
	}()

	logger.Info("SyllabusSense starting",
		"version", Version,
		"config", configPath,
		"session_dir", sessionMgr.GetSessionDir())

	if err := sessionMgr.BackupConfig(configPath); err != nil {
		return fmt.Errorf("failed to backup config: %w", err)
	}

	modelCfg := cfg.Models["main"]
	apiClient := api.NewClient(logger)
	service := genai.NewLLMService(apiClient, modelCfg, secrets.GetAPIKey(modelCfg.BaseURL), logger)

	source, err := syllabus.Open(cfg.Source.Path, cfg.Source.Format, cfg.Generation.TopicMarker)
	if err != nil {
		return fmt.Errorf("failed to open syllabus document: %w", err)
	}

	sink, err := writer.NewFileStore(sessionMgr.GetQuestionsDir(), logger)
	if err != nil {
		return fmt.Errorf("failed to create question store: %w", err)
	}

	obs := workflow.NewCompositeObserver(
		workflow.LogObserver{Logger: logger},
		workflow.MetricsObserver{Collector: metrics.NewCollector()},
	)

	wf := workflow.NewWorkflow(cfg, service, source, sink, obs, logger, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := wf.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Generation interrupted",
				"topics_processed", stats.TopicsProcessed,
				"questions_saved", stats.QuestionsSaved)
			return fmt.Errorf("generation interrupted")
		}
		return fmt.Errorf("generation failed: %w", err)
	}

	logger.Info("Generation complete",
		"topics", stats.TopicsProcessed,
		"planned", stats.QuestionsPlanned,
		"generated", stats.QuestionsGenerated,
		"saved", stats.QuestionsSaved,
		"duration", stats.TotalDuration,
		"session_dir", sessionMgr.GetSessionDir())

	logger.Info("All done! 🎉")
	return nil
}

// listTopics parses the document and prints the topics it yields, as a quick
// check of marker and format settings before a full run.
func listTopics(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	source, err := syllabus.Open(cfg.Source.Path, cfg.Source.Format, cfg.Generation.TopicMarker)
	if err != nil {
		return fmt.Errorf("failed to open syllabus document: %w", err)
	}

	count := 0
	for {
		topic, err := source.Next()
		if errors.Is(err, syllabus.ErrExhausted) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read topic: %w", err)
		}
		count++
		fmt.Printf("%3d. %s (%d elements)\n", count, topic.Title, len(topic.Elements))
	}

	if count == 0 {
		fmt.Println("No topics found. Check source.path and generation.topic_marker in the config.")
	}
	return nil
}
