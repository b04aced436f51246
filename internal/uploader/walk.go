package uploader

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tonimelisma/azshare-go/internal/share"
)

// walkDirectory positions the directory cursor at rawPath under root,
// creating missing segments left to right. A blank path returns the
// root handle with zero remote calls. Directories created before a
// later segment fails are left in place; the walk does not roll back.
func walkDirectory(ctx context.Context, root share.Directory, rawPath string) (share.Directory, error) {
	dir := root

	for _, segment := range splitSegments(rawPath) {
		dir = dir.Subdirectory(segment)

		exists, err := dir.Exists(ctx)
		if err != nil {
			return nil, wrap(KindRemoteIO, err)
		}

		if !exists {
			if err := dir.Create(ctx); err != nil {
				return nil, wrap(KindRemoteIO, err)
			}
		}
	}

	return dir, nil
}

// splitSegments normalizes a raw directory path into its non-empty
// segments. Backslashes count as separators so Windows-style paths
// behave identically, and empty segments from doubled or edge
// separators are dropped. Segments are NFC-normalized so composed and
// decomposed spellings of the same name land in the same remote
// directory.
func splitSegments(rawPath string) []string {
	normalized := strings.ReplaceAll(strings.TrimSpace(rawPath), `\`, "/")

	var segments []string

	for _, segment := range strings.Split(normalized, "/") {
		if segment == "" {
			continue
		}

		segments = append(segments, norm.NFC.String(segment))
	}

	return segments
}
