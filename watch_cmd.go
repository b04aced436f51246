package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/azshare-go/internal/docrepo"
	"github.com/tonimelisma/azshare-go/internal/share"
	"github.com/tonimelisma/azshare-go/internal/uploader"
)

// settleDelay is how long a dropped file must sit unmodified before it
// is cataloged and uploaded. Copies into the drop directory arrive as a
// create followed by a burst of writes.
const settleDelay = 2 * time.Second

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <drop-dir>",
		Short: "Watch a directory and upload dropped files",
		Long: `Watch a local drop directory. Each new file is cataloged in the
document repository once its writes settle, then uploaded to the share.
Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	return cmd
}

// wantsUpload filters watcher events down to newly finished files.
// Hidden and partial files are skipped so half-copied drops never go out.
func wantsUpload(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}

	switch strings.ToLower(filepath.Ext(base)) {
	case ".tmp", ".part", ".partial", ".crdownload":
		return false
	}

	info, err := os.Stat(name)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	return true
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := validateShareCoords(); err != nil {
		return err
	}

	dropDir := args[0]

	info, err := os.Stat(dropDir)
	if err != nil {
		return fmt.Errorf("drop directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("drop directory %s is not a directory", dropDir)
	}

	logger := buildLogger()

	repo, err := docrepo.Open(resolvedCfg.Repo.DBPath, resolvedCfg.Repo.BlobDir, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dropDir); err != nil {
		return fmt.Errorf("watching %s: %w", dropDir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	u := uploader.New(repo, buildSecretsStore(), share.NewAzureShare, logger)

	logger.Info("watching drop directory", slog.String("path", dropDir))

	// Debounce per path. A new event on a pending path restarts its timer.
	pending := make(map[string]*time.Timer)
	settled := make(chan string, 16)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			name := event.Name
			if timer, exists := pending[name]; exists {
				timer.Reset(settleDelay)
				continue
			}

			pending[name] = time.AfterFunc(settleDelay, func() {
				settled <- name
			})

		case name := <-settled:
			delete(pending, name)

			if !wantsUpload(name) {
				continue
			}

			ingestAndUpload(ctx, logger, repo, u, name)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Error("watcher error", slog.Any("error", werr))
		}
	}
}

func ingestAndUpload(ctx context.Context, logger *slog.Logger, repo *docrepo.Repository, u *uploader.Uploader, path string) {
	f, err := os.Open(path)
	if err != nil {
		logger.Error("opening dropped file", slog.String("path", path), slog.Any("error", err))
		return
	}

	doc, err := repo.Add(ctx, filepath.Base(path), f)
	f.Close()

	if err != nil {
		logger.Error("cataloging dropped file", slog.String("path", path), slog.Any("error", err))
		return
	}

	outcome := u.Run(ctx, uploader.Request{
		AccountURL:    resolvedCfg.Share.AccountURL,
		ShareName:     resolvedCfg.Share.ShareName,
		DirectoryPath: resolvedCfg.Share.DirectoryPath,
		FileName:      doc.Name,
		DocumentID:    doc.ID,
		VaultKey:      resolvedCfg.Share.VaultKey,
		VaultField:    resolvedCfg.Share.VaultField,
	})

	if !outcome.IsSuccess {
		logger.Error("upload failed",
			slog.String("name", doc.Name),
			slog.String("error_message", outcome.ErrorMessage),
		)

		return
	}

	logger.Info("uploaded dropped file", slog.String("name", doc.Name), slog.Int64("document_id", doc.ID))

	if err := os.Remove(path); err != nil {
		logger.Warn("removing dropped file", slog.String("path", path), slog.Any("error", err))
	}
}
