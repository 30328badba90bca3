package ticket

import (
	"context"
	"fmt"
	"image"
	"net/http"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ImageLoader fetches and fully decodes a remote image.
type ImageLoader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

type HTTPImageLoader struct {
	hc *http.Client
}

func NewHTTPImageLoader(hc *http.Client) *HTTPImageLoader {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPImageLoader{hc: hc}
}

func (l *HTTPImageLoader) Load(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := l.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image %s: status %d", url, resp.StatusCode)
	}
	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", url, err)
	}
	return img, nil
}

var _ ImageLoader = (*HTTPImageLoader)(nil)
