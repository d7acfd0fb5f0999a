package figma

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/figicons/internal/foundation/errors"
)

// GetFile reads the document tree of file key.
func (c *Client) GetFile(ctx context.Context, key string) (*File, error) {
	var query url.Values
	if c.depth > 0 {
		query = url.Values{"depth": {strconv.Itoa(c.depth)}}
	}
	req, err := c.newRequest(ctx, "files/"+url.PathEscape(key), query)
	if err != nil {
		return nil, err
	}

	var file File
	if err := c.doJSON(req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ExportImages asks the renderer for SVG exports of ids and returns id -> asset
// URL. Ids the renderer declined are absent from the result.
func (c *Client) ExportImages(ctx context.Context, key string, ids []string) (map[string]string, error) {
	query := url.Values{
		"ids":    {strings.Join(ids, ",")},
		"format": {"svg"},
	}
	req, err := c.newRequest(ctx, "images/"+url.PathEscape(key), query)
	if err != nil {
		return nil, err
	}

	var body imagesResponse
	if err := c.doJSON(req, &body); err != nil {
		return nil, err
	}

	images := make(map[string]string, len(body.Images))
	for id, u := range body.Images {
		if u == nil || *u == "" {
			continue
		}
		images[id] = *u
	}
	return images, nil
}

// Open starts a plain GET download of an exported asset. The caller closes the body.
func (c *Client) Open(ctx context.Context, assetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, http.NoBody)
	if err != nil {
		return nil, errors.From(errors.ErrAssetDownload).
			WithCause(err).
			WithContext("url", assetURL).
			Build()
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.From(errors.ErrAssetDownload).
			WithCause(err).
			WithContext("url", assetURL).
			Build()
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.From(errors.ErrAssetDownload).
			WithContext("status", resp.StatusCode).
			WithContext("url", assetURL).
			Build()
	}
	return resp.Body, nil
}
