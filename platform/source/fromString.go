package source

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/robbyt/go-livescript/internal/helpers"
)

// FromString serves script source held in memory.
type FromString struct {
	content   string
	sourceURL *url.URL
}

// NewFromString creates a loader from content, which must not be blank. The content is
// kept as given so diagnostic positions match what the caller holds.
func NewFromString(content string) (*FromString, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is empty", ErrSourceNotAvailable)
	}

	u, err := url.Parse("string://inline/" + helpers.ShortID(content))
	if err != nil {
		return nil, fmt.Errorf("failed to create source URL: %w", err)
	}

	return &FromString{
		content:   content,
		sourceURL: u,
	}, nil
}

func (l *FromString) String() string {
	return fmt.Sprintf("source.FromString{Chars: %d}", len(l.content))
}

func (l *FromString) GetReader() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(l.content)), nil
}

// GetSourceURL returns a string:// URL derived from the content hash.
func (l *FromString) GetSourceURL() *url.URL {
	return l.sourceURL
}
