// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/multilink/internal/models"
)

// MockService is a test double for [services.Service]
//
// Nil funcs return a fixed track and an empty result.
type MockService struct {
	Desc      models.ServiceDescriptor
	ExtractFn func(ctx context.Context, rawURL string) (models.TrackReference, error)
	SearchFn  func(ctx context.Context, title, performer string) models.CrossServiceResult

	mu       sync.Mutex
	extracts int
	searches int
}

func NewMockService(desc models.ServiceDescriptor) *MockService {
	return &MockService{Desc: desc}
}

func (m *MockService) Descriptor() models.ServiceDescriptor { return m.Desc }

func (m *MockService) Extract(ctx context.Context, rawURL string) (models.TrackReference, error) {
	m.mu.Lock()
	m.extracts++
	m.mu.Unlock()

	if m.ExtractFn != nil {
		return m.ExtractFn(ctx, rawURL)
	}
	return models.TrackReference{Origin: m.Desc.ID, SourceURL: rawURL, Title: "Mock Title", Performer: "Mock Artist"}, nil
}

func (m *MockService) Search(ctx context.Context, title, performer string) models.CrossServiceResult {
	m.mu.Lock()
	m.searches++
	m.mu.Unlock()

	if m.SearchFn != nil {
		return m.SearchFn(ctx, title, performer)
	}
	return models.CrossServiceResult{Service: m.Desc.ID}
}

// Calls returns how many times Extract and Search were invoked.
func (m *MockService) Calls() (extracts, searches int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.extracts, m.searches
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// OGPage renders a minimal HTML document carrying OpenGraph tags. Empty values are omitted.
func OGPage(title, description string, extra ...string) string {
	head := ""
	if title != "" {
		head += fmt.Sprintf(`<meta property="og:title" content="%s">`, html.EscapeString(title))
	}
	if description != "" {
		head += fmt.Sprintf(`<meta property="og:description" content="%s">`, html.EscapeString(description))
	}
	for i := 0; i+1 < len(extra); i += 2 {
		head += fmt.Sprintf(`<meta name="%s" content="%s">`, extra[i], html.EscapeString(extra[i+1]))
	}
	return "<!DOCTYPE html><html><head>" + head + "</head><body></body></html>"
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
