// ABOUTME: URI resolution for pipeline sources
// ABOUTME: Opens local files and HTTP(S) streams for the decoder
package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// AppSrcURI selects the application source instead of a URI
const AppSrcURI = "appsrc://"

var (
	// ErrNoSource is returned when a pipeline has neither a URI nor an app source
	ErrNoSource = errors.New("no source configured")

	// ErrUnsupportedURI is returned for URI schemes no source can open
	ErrUnsupportedURI = errors.New("unsupported uri scheme")
)

var httpClient = &http.Client{
	Transport: &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: 10 * time.Second,
	},
}

// openURI returns a reader for a file path, file:// or http(s):// URI.
// File readers also implement io.Seeker.
func openURI(uri string) (io.ReadCloser, bool, error) {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		resp, err := httpClient.Get(uri)
		if err != nil {
			return nil, true, fmt.Errorf("failed to fetch %s: %w", uri, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, true, fmt.Errorf("failed to fetch %s: %s", uri, resp.Status)
		}
		return resp.Body, true, nil

	case strings.HasPrefix(uri, "file://"):
		uri = strings.TrimPrefix(uri, "file://")

	case strings.Contains(uri, "://"):
		return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedURI, uri)
	}

	f, err := os.Open(uri)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s: %w", uri, err)
	}
	return f, false, nil
}
