// Package archive downloads public-domain book scans from the Internet
// Archive: per collection, the items that carry both hOCR layout data
// and JP2 page images.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const defaultBaseURL = "https://archive.org"

// Client talks to the Internet Archive search, metadata, and download
// endpoints.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

// NewClient returns a client identifying itself with the given contact
// email, as the Archive's API guidelines ask.
func NewClient(email string, timeout time.Duration) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   defaultBaseURL,
		userAgent: fmt.Sprintf("numberbook/0.1 (mailto:%s)", email),
	}
}

// searchResponse is the subset of the advancedsearch reply we consume.
type searchResponse struct {
	Response struct {
		NumFound int `json:"numFound"`
		Docs     []struct {
			Identifier string `json:"identifier"`
		} `json:"docs"`
	} `json:"response"`
}

// metadataResponse is the subset of the metadata reply we consume.
type metadataResponse struct {
	Files []struct {
		Name   string `json:"name"`
		Format string `json:"format"`
	} `json:"files"`
}

// Search returns identifiers of English public-domain texts in the
// collection that ship hOCR data, capped at maxItems (0 = no cap).
func (c *Client) Search(ctx context.Context, collection string, maxItems int) ([]string, error) {
	query := "mediatype:texts AND format:hocr AND date:[* TO 1924-12-31]" +
		" AND NOT access-restricted-item:true AND NOT identifier:*mpeg21*" +
		" AND language:eng AND collection:" + collection

	params := url.Values{}
	params.Set("q", query)
	params.Set("fl[]", "identifier")
	params.Set("output", "json")
	params.Set("start", "1")
	if maxItems > 0 {
		params.Set("rows", fmt.Sprintf("%d", maxItems))
	}

	var sr searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/advancedsearch.php?"+params.Encode(), &sr); err != nil {
		return nil, fmt.Errorf("archive search: %w", err)
	}
	slog.Info("archive search complete", "collection", collection, "found", sr.Response.NumFound)

	ids := make([]string, 0, len(sr.Response.Docs))
	for _, d := range sr.Response.Docs {
		ids = append(ids, d.Identifier)
		if maxItems > 0 && len(ids) >= maxItems {
			break
		}
	}
	return ids, nil
}

// FetchBook downloads the item's hOCR file and JP2 page archive into
// destDir/identifier, skipping files already present. It returns the
// paths of the files it wrote.
func (c *Client) FetchBook(ctx context.Context, identifier, destDir string) ([]string, error) {
	var md metadataResponse
	if err := c.getJSON(ctx, c.baseURL+"/metadata/"+identifier, &md); err != nil {
		return nil, fmt.Errorf("archive metadata for %s: %w", identifier, err)
	}

	itemDir := filepath.Join(destDir, identifier)
	if err := os.MkdirAll(itemDir, 0o750); err != nil {
		return nil, fmt.Errorf("create item dir: %w", err)
	}

	var written []string
	for _, f := range md.Files {
		if !wantedFile(f.Name) {
			continue
		}
		outPath := filepath.Join(itemDir, f.Name)
		if _, err := os.Stat(outPath); err == nil {
			slog.Debug("file already downloaded", "item", identifier, "file", f.Name)
			continue
		}
		slog.Info("downloading", "item", identifier, "file", f.Name)
		if err := c.download(ctx, identifier, f.Name, outPath); err != nil {
			return written, fmt.Errorf("download %s/%s: %w", identifier, f.Name, err)
		}
		written = append(written, outPath)
	}
	return written, nil
}

// wantedFile matches the hOCR layout file and the JP2 page image zip.
func wantedFile(name string) bool {
	return strings.HasSuffix(name, "_hocr.html") || strings.HasSuffix(name, "jp2.zip")
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	return retry.Do(
		func() error {
			body, err := c.get(ctx, rawURL)
			if err != nil {
				return err
			}
			defer func() { _ = body.Close() }()
			return json.NewDecoder(body).Decode(out)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
	)
}

func (c *Client) download(ctx context.Context, identifier, name, outPath string) error {
	rawURL := c.baseURL + "/download/" + identifier + "/" + url.PathEscape(name)
	return retry.Do(
		func() error {
			body, err := c.get(ctx, rawURL)
			if err != nil {
				return err
			}
			defer func() { _ = body.Close() }()

			tmp := outPath + ".part"
			f, err := os.Create(tmp) //nolint:gosec // G304: path under configured raw dir
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, body); err != nil {
				_ = f.Close()
				_ = os.Remove(tmp)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			return os.Rename(tmp, outPath)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
	)
}

func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}
