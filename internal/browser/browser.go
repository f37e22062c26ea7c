package browser

import "context"

// Automation opens fresh browser pages. Implementations own the underlying
// browser process; each page is independent and must be closed by the
// caller.
type Automation interface {
	NewPage(ctx context.Context) (Page, error)
}

// Page is one isolated browser tab. Close is safe to call more than once;
// only the first call releases the tab.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
	Text(ctx context.Context) (string, error)
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Select(ctx context.Context, selector, value string) error
	Close()
}
