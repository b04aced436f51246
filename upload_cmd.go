package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/azshare-go/internal/docrepo"
	"github.com/tonimelisma/azshare-go/internal/share"
	"github.com/tonimelisma/azshare-go/internal/uploader"
	"github.com/tonimelisma/azshare-go/internal/vault"
)

var (
	flagManualToken string
	flagFileName    string
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <document-id>...",
		Short: "Upload documents to the share",
		Long: `Upload one or more repository documents to the Azure Files share.

With a single document, --name overrides the remote file name. With
multiple documents, each is uploaded under its cataloged name, with
bounded concurrency (transfers.parallel_uploads). Distinct documents
must map to distinct target paths; same-path uploads race.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runUpload,
	}

	cmd.Flags().StringVar(&flagManualToken, "token", "", "SAS token (overrides the secrets store)")
	cmd.Flags().StringVar(&flagFileName, "name", "", "remote file name (single document only)")

	return cmd
}

// parseDocumentIDs converts command arguments to document IDs.
func parseDocumentIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))

	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid document ID %q", arg)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// validateShareCoords rejects requests with no share to talk to before
// any repository or network work happens.
func validateShareCoords() error {
	if resolvedCfg.Share.AccountURL == "" {
		return fmt.Errorf("account URL is required (--account-url, %s, or [share] account_url)", "AZSHARE_ACCOUNT_URL")
	}

	if resolvedCfg.Share.ShareName == "" {
		return fmt.Errorf("share name is required (--share, %s, or [share] share_name)", "AZSHARE_SHARE_NAME")
	}

	return nil
}

// buildSecretsStore layers environment secrets over the secrets file.
func buildSecretsStore() vault.Store {
	return vault.Layered{
		vault.EnvStore{},
		vault.NewFileStore(resolvedCfg.Vault.SecretsFile),
	}
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := validateShareCoords(); err != nil {
		return err
	}

	ids, err := parseDocumentIDs(args)
	if err != nil {
		return err
	}

	if len(ids) > 1 && flagFileName != "" {
		return fmt.Errorf("--name applies to a single document, got %d", len(ids))
	}

	logger := buildLogger()

	repo, err := docrepo.Open(resolvedCfg.Repo.DBPath, resolvedCfg.Repo.BlobDir, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	u := uploader.New(repo, buildSecretsStore(), share.NewAzureShare, logger)
	ctx := cmd.Context()

	outcomes := make([]uploader.Outcome, len(ids))
	names := make([]string, len(ids))

	var g errgroup.Group
	g.SetLimit(resolvedCfg.Transfers.ParallelUploads)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			name := flagFileName
			if name == "" {
				doc, getErr := repo.Get(ctx, id)
				if getErr != nil {
					outcomes[i] = uploader.Outcome{
						IsSuccess:    false,
						ErrorMessage: fmt.Sprintf("%s: %v", uploader.KindSourceRead, getErr),
					}
					names[i] = strconv.FormatInt(id, 10)

					return nil
				}

				name = doc.Name
			}

			names[i] = name
			outcomes[i] = u.Run(ctx, uploader.Request{
				AccountURL:    resolvedCfg.Share.AccountURL,
				ShareName:     resolvedCfg.Share.ShareName,
				DirectoryPath: resolvedCfg.Share.DirectoryPath,
				FileName:      name,
				DocumentID:    id,
				ManualToken:   flagManualToken,
				VaultKey:      resolvedCfg.Share.VaultKey,
				VaultField:    resolvedCfg.Share.VaultField,
			})

			return nil
		})
	}

	// Workers never return errors; outcomes carry per-document results.
	_ = g.Wait() //nolint:errcheck

	failed := 0

	for i, outcome := range outcomes {
		if outcome.IsSuccess {
			fmt.Printf("uploaded %s\n", names[i])
			continue
		}

		failed++
		fmt.Printf("failed %s: %s\n", names[i], outcome.ErrorMessage)
		logger.Error("upload failed",
			slog.Int64("document_id", ids[i]),
			slog.String("error_message", outcome.ErrorMessage),
		)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(ids))
	}

	return nil
}
