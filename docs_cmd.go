package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/azshare-go/internal/docrepo"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage the local document repository",
	}

	cmd.AddCommand(newDocsAddCmd())
	cmd.AddCommand(newDocsLsCmd())

	return cmd
}

func newDocsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>...",
		Short: "Catalog local files as documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := docrepo.Open(resolvedCfg.Repo.DBPath, resolvedCfg.Repo.BlobDir, buildLogger())
			if err != nil {
				return err
			}
			defer repo.Close()

			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening %s: %w", path, err)
				}

				doc, err := repo.Add(cmd.Context(), filepath.Base(path), f)
				f.Close()

				if err != nil {
					return fmt.Errorf("adding %s: %w", path, err)
				}

				fmt.Printf("added %s as document %d\n", doc.Name, doc.ID)
			}

			return nil
		},
	}
}

func newDocsLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List cataloged documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := docrepo.Open(resolvedCfg.Repo.DBPath, resolvedCfg.Repo.BlobDir, buildLogger())
			if err != nil {
				return err
			}
			defer repo.Close()

			docs, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE\tVERSION\tCREATED")

			for _, doc := range docs {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n",
					doc.ID, doc.Name, doc.Size, doc.Version,
					doc.CreatedAt.Format("2006-01-02 15:04:05"))
			}

			return w.Flush()
		},
	}
}
