package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"github.com/xyd945/travel-ai-agent/internal/adapters/observability"
	redisad "github.com/xyd945/travel-ai-agent/internal/adapters/redis"
	"github.com/xyd945/travel-ai-agent/internal/app"
	"github.com/xyd945/travel-ai-agent/internal/domain"
	"github.com/xyd945/travel-ai-agent/internal/shared"
	mysqlrepo "github.com/xyd945/travel-ai-agent/internal/storage/mysql"
)

var (
	inputFile string
	workers   int
)

var rootCmd = &cobra.Command{
	Use:   "ingestor",
	Short: "Load hotel documents (JSON array or JSON lines) into the hotels table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := shared.Load()
		log.Logger = observability.NewLogger(cfg.AppEnv)
		if !cmd.Flags().Changed("workers") {
			workers = cfg.Workers
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		docs, err := readDocs(inputFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", inputFile, err)
		}
		log.Info().Str("file", inputFile).Int("docs", len(docs)).Int("workers", workers).Msg("ingestor starting")

		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		var cache domain.Cache
		if cfg.RedisAddr != "" {
			rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
			defer rc.Close()
			cache = rc
		}
		ing := app.NewIngestionService(mysqlrepo.New(db), cache)

		ok, failed := run(ctx, ing, docs, workers)
		log.Info().Int64("ok", ok).Int64("failed", failed).Msg("ingestion completed")
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(docs))
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&inputFile, "file", "f", "hotels.jsonl", "Hotel documents, a JSON array or one object per line; - for stdin")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 8, "Concurrent upserts")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, ing *app.IngestionService, docs []json.RawMessage, n int) (ok, failed int64) {
	if n <= 0 {
		n = 1
	}
	sem := semaphore.NewWeighted(int64(n))
	var (
		wg      sync.WaitGroup
		skipped int
	)

	for i, doc := range docs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Int("remaining", len(docs)-i).Msg("ingestion interrupted")
			skipped = len(docs) - i
			break
		}

		wg.Add(1)
		go func(line int, doc []byte) {
			defer wg.Done()
			defer sem.Release(1)

			if err := ing.IngestHotel(ctx, doc); err != nil {
				atomic.AddInt64(&failed, 1)
				log.Warn().Int("doc", line).Err(err).Msg("ingest failed")
				return
			}
			atomic.AddInt64(&ok, 1)
		}(i+1, doc)
	}

	wg.Wait()
	return ok, failed + int64(skipped)
}

func readDocs(path string) ([]json.RawMessage, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	br := bufio.NewReader(r)

	// peek past leading whitespace to tell an array from JSON lines
	for {
		b, err := br.Peek(1)
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			break
		}
		_, _ = br.ReadByte()
	}
	if b, _ := br.Peek(1); b[0] == '[' {
		var docs []json.RawMessage
		if err := json.NewDecoder(br).Decode(&docs); err != nil {
			return nil, err
		}
		return docs, nil
	}

	var docs []json.RawMessage
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		docs = append(docs, json.RawMessage(bytes.Clone(line)))
	}
	return docs, sc.Err()
}
