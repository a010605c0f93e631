package export

import (
	"context"

	"github.com/reposcribe/reposcribe-cli/internal/api"
)

// Downloader fetches a generated document. *api.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, sessionID, format string) (*api.Document, error)
}

// Download fetches the documentation for sessionID and saves it in dir
// without overwriting. It returns the path and the number of bytes written.
func Download(ctx context.Context, d Downloader, sessionID, format, dir string) (string, int64, error) {
	doc, err := d.Download(ctx, sessionID, format)
	if err != nil {
		return "", 0, &Error{Err: err}
	}
	path, err := Save(dir, FileName(doc.Filename, format), doc.Content)
	if err != nil {
		return "", 0, err
	}
	return path, int64(len(doc.Content)), nil
}

// Error is a failed download. It displays the server's reason or the
// standard message.
type Error struct {
	Err error
}

func (e *Error) Error() string { return api.MessageOr(e.Err, MsgDownloadFailed) }

func (e *Error) Unwrap() error { return e.Err }
