// Copyright 2025 The AinPal Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/ainpal/lawgraph"
	"github.com/ainpal/lawgraph/ai"
	"github.com/ainpal/lawgraph/ai/googleai"
	"github.com/ainpal/lawgraph/ai/openai"
	"github.com/ainpal/lawgraph/ingestion"
	"github.com/ainpal/lawgraph/pipeline"
	"github.com/ainpal/lawgraph/reindex"
	"github.com/ainpal/lawgraph/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "lawgraph",
		Usage: "Question answering over Bangladeshi legislation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest a directory of law JSON files into the store",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "corpus",
						Aliases:  []string{"c"},
						Usage:    "Path to the directory of law JSON files",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for concurrent embedding",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Maximum chunk length in characters",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed per model call",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Reembed all chunks with new embeddings",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a single question",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags:     askFlags(),
			},
			{
				Name:   "chat",
				Usage:  "Interactive chat session",
				Action: chatCommand,
				Flags:  askFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func askFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:     "embedding-model",
			Usage:    "Embedding model name",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "generative-host",
			Usage: "Generation service host URL for OpenAI-compatible backends",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "generative-model",
			Usage: "Generative model name",
			Value: "gemini-1.5-flash",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "Google API key, switches generation to the Gemini API",
			EnvVars: []string{"GOOGLE_API_KEY"},
		},
		&cli.BoolFlag{
			Name:  "no-decider",
			Usage: "Skip relevance classification and query rewriting",
		},
		&cli.BoolFlag{
			Name:  "debug-retrieval",
			Usage: "Print retrieval diagnostics after each answer",
		},
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	var opts []ingestion.Option
	if c.Int("pool-size") > 0 {
		opts = append(opts, ingestion.WithPoolSize(c.Int("pool-size")))
	}
	if c.Int("chunk-size") > 0 {
		opts = append(opts, ingestion.WithChunkSize(c.Int("chunk-size")))
	}
	if c.Int("batch-size") > 0 {
		opts = append(opts, ingestion.WithBatchSize(c.Int("batch-size")))
	}

	pipeline, err := ingestion.NewPipeline(repo, provider, opts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Corpus: %s\n", c.String("corpus"))
	fmt.Fprintln(os.Stderr)

	total, err := pipeline.IngestCorpus(ctx, c.String("corpus"))
	if err != nil {
		return fmt.Errorf("ingestion failed after %d chunks: %w", total, err)
	}

	fmt.Fprintf(os.Stderr, "Ingestion complete. Stored %d chunks.\n", total)
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer := reindex.NewReindexer(repo, embedder, reindexConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

// openAssistant builds the assistant from the shared ask/chat flags.
// With an API key generation goes through Gemini while embeddings stay
// on the local OpenAI-compatible host.
func openAssistant(ctx context.Context, c *cli.Context) (*lawgraph.Assistant, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerativeHost(c.String("generative-host")),
		ai.WithGenerativeModel(c.String("generative-model")),
		ai.WithAPIKey(c.String("api-key")),
	)

	opts := []lawgraph.AssistantOption{lawgraph.WithAIConfig(aiConfig)}

	if c.String("api-key") != "" {
		embedder, err := openai.NewEmbedder(aiConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		generator, err := googleai.NewGenerator(ctx, aiConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create generator: %w", err)
		}
		opts = append(opts, lawgraph.WithProvider(ai.ProviderFromParts(embedder, generator)))
	}

	if c.Bool("no-decider") {
		opts = append(opts, lawgraph.WithoutDecider())
	}

	return lawgraph.Open(c.String("db"), opts...)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	ctx := context.Background()
	assistant, err := openAssistant(ctx, c)
	if err != nil {
		return err
	}
	defer assistant.Close()

	resp, err := assistant.Ask(ctx, question, "")
	if err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	if c.Bool("debug-retrieval") {
		printDiagnostics(resp)
	}
	return nil
}

func chatCommand(c *cli.Context) error {
	ctx := context.Background()
	assistant, err := openAssistant(ctx, c)
	if err != nil {
		return err
	}
	defer assistant.Close()

	sessionID := uuid.NewString()
	fmt.Fprintf(os.Stderr, "Session %s. Type a question, /clear to reset history, /quit to leave.\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			if assistant.ClearSession(sessionID) {
				fmt.Fprintln(os.Stderr, "History cleared.")
			} else {
				fmt.Fprintln(os.Stderr, "No history to clear.")
			}
			continue
		}

		resp, err := assistant.Ask(ctx, line, sessionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(resp.Answer)
		if c.Bool("debug-retrieval") {
			printDiagnostics(resp)
		}
	}
	return scanner.Err()
}

func printDiagnostics(resp *pipeline.Response) {
	fmt.Fprintf(os.Stderr, "[retrieval] vector=%d keyword=%d combined=%d retrieved=%d\n",
		resp.Diagnostics.VectorHits,
		resp.Diagnostics.KeywordHits,
		resp.Diagnostics.CombinedHits,
		resp.Diagnostics.RetrievedChunks)
}

func setup(c *cli.Context) error {
	// Load .env if present, real environment wins
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "err", err)
	}

	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
