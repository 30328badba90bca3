package ticket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/showtickets/internal/domain"
)

var ErrInvalidInput = errors.New("invalid ticket input")

// Artifact is a rendered ticket ready to be downloaded.
type Artifact struct {
	Filename string
	OrderID  string
	Token    string
	PDF      []byte
}

type Generator struct {
	images       ImageLoader
	imageTimeout time.Duration
	canvases     sync.Pool
}

func NewGenerator(images ImageLoader, imageTimeout time.Duration) *Generator {
	return &Generator{
		images:       images,
		imageTimeout: imageTimeout,
		canvases: sync.Pool{
			New: func() interface{} {
				return image.NewRGBA(image.Rect(0, 0, px(layoutWidth), px(layoutHeight)))
			},
		},
	}
}

// Generate renders the ticket of a validated order. The caller is responsible for having
// checked the payment status; only the fields printed on the ticket are checked here.
func (g *Generator) Generate(ctx context.Context, order domain.Order, event domain.Event) (*Artifact, error) {
	if err := checkInput(order, event); err != nil {
		return nil, err
	}
	c := buildContent(order, event)

	qr, err := QRCode(c.QRPayload, qrModulePixels*scale)
	if err != nil {
		return nil, err
	}

	img := g.loadImage(ctx, c.ImageURL)

	canvas := g.canvases.Get().(*image.RGBA)
	defer g.canvases.Put(canvas)

	r, err := newRenderer(canvas)
	if err != nil {
		return nil, err
	}
	defer r.close()

	if err := r.compose(c, img, qr); err != nil {
		return nil, fmt.Errorf("rasterize ticket: %w", err)
	}

	var bitmap bytes.Buffer
	if err := png.Encode(&bitmap, canvas); err != nil {
		return nil, fmt.Errorf("encode ticket bitmap: %w", err)
	}

	b := canvas.Bounds()
	doc, err := packagePDF(bitmap.Bytes(), b.Dx(), b.Dy(), "Billet "+event.Title)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Filename: Filename(event.Title, order.Token),
		OrderID:  order.ID,
		Token:    order.Token,
		PDF:      doc,
	}, nil
}

// loadImage waits for the event image to decode, bounded by the configured timeout.
// A missing image degrades the ticket instead of failing it.
func (g *Generator) loadImage(ctx context.Context, url string) image.Image {
	if g.images == nil || url == "" {
		return nil
	}
	loadCtx := ctx
	if g.imageTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, g.imageTimeout)
		defer cancel()
	}

	img, err := g.images.Load(loadCtx, url)
	if err != nil {
		log.Printf("ticket: rendering without event image: %v", err)
		return nil
	}
	return img
}

func checkInput(order domain.Order, event domain.Event) error {
	switch {
	case order.ID == "":
		return fmt.Errorf("%w: order id is required", ErrInvalidInput)
	case order.Token == "":
		return fmt.Errorf("%w: order %s has no token", ErrInvalidInput, order.ID)
	case strings.TrimSpace(event.Title) == "":
		return fmt.Errorf("%w: event title is required", ErrInvalidInput)
	case event.Date.IsZero():
		return fmt.Errorf("%w: event date is required", ErrInvalidInput)
	}
	return nil
}

// DirSink saves artifacts into a directory.
type DirSink struct {
	dir string
}

func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

func (s *DirSink) Save(a *Artifact) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create ticket dir: %w", err)
	}
	name := strings.NewReplacer("/", "-", "\\", "-").Replace(a.Filename)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, a.PDF, 0o644); err != nil {
		return "", fmt.Errorf("write ticket: %w", err)
	}
	return path, nil
}
