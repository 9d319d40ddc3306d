package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xpanvictor/liveslides/internal/app"
	"github.com/xpanvictor/liveslides/internal/database"
	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/internal/domains/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Build a deck offline from a recorded transcript",
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().String("transcript", "", "transcript file, one fragment per line")
	replayCmd.Flags().String("provider", "", "openai, gemini or ollama (default replay.provider)")
	replayCmd.Flags().String("out", "deck.html", "output file; a .docx extension writes a document")
	_ = replayCmd.MarkFlagRequired("transcript")
}

func runReplay(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	defer logger.Sync()

	transcript, _ := cmd.Flags().GetString("transcript")
	provider, _ := cmd.Flags().GetString("provider")
	out, _ := cmd.Flags().GetString("out")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rc, err := database.NewRedis(cfg.Redis)
	if err != nil {
		logger.Warnf("redis unavailable, reading preferences from %s: %v", cfg.Preferences.File, err)
		rc = nil
	}
	if rc != nil {
		defer rc.Close()
	}
	prefs, _ := app.NewPreferences(cfg, rc, logger).Get(ctx)

	a, closer, err := app.NewAssistantFactory(cfg, logger).Create(ctx, provider, prefs.APIKey)
	if err != nil {
		return err
	}
	defer closer.Close()

	f, err := os.Open(transcript)
	if err != nil {
		return err
	}
	fragments, err := replay.Fragments(f)
	f.Close()
	if err != nil {
		return err
	}

	res, err := replay.NewRunner(a, app.TuningFrom(cfg), prefs.SystemPrompt, logger.Named("replay")).Run(ctx, fragments)
	if err != nil {
		return err
	}

	deck := presentation.Deck{
		Slides:          res.Slides,
		FallbackTitle:   prefs.InitialTitle,
		FallbackContent: prefs.InitialContent,
		Theme:           prefs.Theme,
	}
	if err := writeDeck(deck, out); err != nil {
		return err
	}
	fmt.Printf("%d fragments, %d requests, %d slides (%d skipped, %d rejected) -> %s\n",
		res.Fragments, res.Requests, len(res.Slides), res.Skipped, res.Rejected, out)
	return nil
}

func writeDeck(deck presentation.Deck, out string) error {
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if strings.EqualFold(filepath.Ext(out), ".docx") {
		return presentation.WriteDocx(deck, out)
	}
	html, err := presentation.Build(deck)
	if err != nil {
		return err
	}
	return os.WriteFile(out, []byte(html), 0o644)
}
