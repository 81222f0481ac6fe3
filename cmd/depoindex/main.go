package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/SamarthTiwari16/DepoIndex/constants"
	"github.com/SamarthTiwari16/DepoIndex/internal/artifact"
	"github.com/SamarthTiwari16/DepoIndex/internal/common"
	"github.com/SamarthTiwari16/DepoIndex/internal/export"
	"github.com/SamarthTiwari16/DepoIndex/internal/extractor"
	"github.com/SamarthTiwari16/DepoIndex/internal/llm"
	"github.com/SamarthTiwari16/DepoIndex/internal/llm/openai"
	"github.com/SamarthTiwari16/DepoIndex/internal/pipeline"
	"github.com/SamarthTiwari16/DepoIndex/internal/toc"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()

	inPath := flag.String("in", "", "transcript text file (required)")
	outPath := flag.String("out", "", "artifact JSON output path (default: stdout)")
	tocPath := flag.String("toc", "", "write the TOC markdown to this path")
	xlsxPath := flag.String("xlsx", "", "write a topic index workbook to this path")
	topics := flag.Int("topics", cfg.Pipeline.TopicCount, "max topics per excerpt (1..10)")
	workers := flag.Int("workers", cfg.Pipeline.Workers, "extraction worker count")
	history := flag.String("history", cfg.History.Path, "sqlite run-history database path")
	flag.Parse()

	if *inPath == "" {
		logger.Error("usage: depoindex -in transcript.txt [-out index.json] [-toc toc.md] [-xlsx index.xlsx]")
		os.Exit(2)
	}
	if *topics < constants.MinTopicCount || *topics > constants.MaxTopicCount {
		logger.Error("topics out of range", "topics", *topics,
			"min", constants.MinTopicCount, "max", constants.MaxTopicCount)
		os.Exit(2)
	}
	if *workers < 1 {
		logger.Error("workers must be positive", "workers", *workers)
		os.Exit(2)
	}

	raw, err := os.ReadFile(*inPath)
	if err != nil {
		logger.Error("read input", "path", *inPath, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// No API key means no model capability; the pipeline still runs,
	// producing deterministic fallback topics and a page-grouped TOC.
	var gen llm.TopicGenerator
	if cfg.LLM.APIKey != "" {
		gen = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set; running in fallback mode")
	}

	limiter := llm.NewLimiter(cfg.LLM.CallInterval)

	ex := extractor.New(logger, gen, limiter)
	ex.Workers = *workers
	ex.MaxTopics = *topics
	synth := toc.NewSynthesizer(logger, gen, limiter)

	p := pipeline.New(logger, ex, synth)

	start := time.Now()
	res, err := p.Run(ctx, string(raw))
	if err != nil {
		logger.Error("run failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	doc := res.Artifact(*inPath)
	data, err := artifact.Encode(doc)
	if err != nil {
		logger.Error("encode artifact", "error", err)
		os.Exit(1)
	}
	if *outPath == "" {
		fmt.Println(string(data))
	} else if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		logger.Error("write artifact", "path", *outPath, "error", err)
		os.Exit(1)
	}

	if *tocPath != "" {
		if err := os.WriteFile(*tocPath, []byte(res.TOC.Markdown()), 0o644); err != nil {
			logger.Error("write toc", "path", *tocPath, "error", err)
			os.Exit(1)
		}
	}

	if *xlsxPath != "" {
		svc := export.NewService(logger)
		book, err := svc.TopicIndexXLSX(res.Topics, doc.Metadata)
		if err != nil {
			logger.Error("export xlsx", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxPath, book, 0o644); err != nil {
			logger.Error("write xlsx", "path", *xlsxPath, "error", err)
			os.Exit(1)
		}
	}

	if *history != "" {
		store, err := artifact.OpenStore(ctx, *history)
		if err != nil {
			logger.Error("open history store", "path", *history, "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("close history store", "error", err)
			}
		}()
		if err := store.SaveRun(ctx, res.HistoryRun(*inPath)); err != nil {
			logger.Error("save run history", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("done",
		"run_id", res.RunID.String(),
		"topics", len(res.Topics),
		"invalid", len(res.Invalid),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}
