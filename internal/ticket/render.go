package ticket

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Layout size in CSS-like pixels, before supersampling.
const (
	layoutWidth  = 800
	layoutHeight = 350
	visualWidth  = 360 // left 45%
	scale        = 2
)

var (
	colBackground = rgb(0x09090b)
	colPanel      = rgb(0x18181b)
	colBorder     = rgb(0x27272a)
	colDash       = rgb(0x3f3f46)
	colAccent     = rgb(0xdc2626)
	colWhite      = rgb(0xffffff)
	colLight      = rgb(0xe4e4e7)
	colMuted      = rgb(0xa1a1aa)
	colDim        = rgb(0x71717a)
	colFaint      = rgb(0x52525b)
)

const notice = "Présentez ce QR Code ou ce Token à l'entrée. Billet unique non remboursable."

func rgb(hex uint32) color.RGBA {
	return color.RGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

type fontSet struct {
	regular, bold, mono *opentype.Font
}

var loadFonts = sync.OnceValues(func() (*fontSet, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	mono, err := opentype.Parse(gomonobold.TTF)
	if err != nil {
		return nil, err
	}
	return &fontSet{regular: regular, bold: bold, mono: mono}, nil
})

type faceKey struct {
	f    *opentype.Font
	size float64
}

// renderer draws one ticket onto a borrowed canvas.
type renderer struct {
	canvas *image.RGBA
	fonts  *fontSet
	faces  map[faceKey]font.Face
}

func newRenderer(canvas *image.RGBA) (*renderer, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	return &renderer{canvas: canvas, fonts: fonts, faces: make(map[faceKey]font.Face)}, nil
}

func (r *renderer) close() {
	for _, f := range r.faces {
		_ = f.Close()
	}
}

func px(v int) int { return v * scale }

func (r *renderer) face(f *opentype.Font, size float64) (font.Face, error) {
	key := faceKey{f: f, size: size}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size * scale, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	r.faces[key] = face
	return face, nil
}

func (r *renderer) text(f *opentype.Font, size float64, col color.Color, x, baseline int, s string) (int, error) {
	face, err := r.face(f, size)
	if err != nil {
		return 0, err
	}
	d := &font.Drawer{Dst: r.canvas, Src: image.NewUniform(col), Face: face, Dot: fixed.P(px(x), px(baseline))}
	d.DrawString(s)
	return font.MeasureString(face, s).Ceil(), nil
}

// textRight draws s so that it ends at x.
func (r *renderer) textRight(f *opentype.Font, size float64, col color.Color, x, baseline int, s string) (int, error) {
	face, err := r.face(f, size)
	if err != nil {
		return 0, err
	}
	w := font.MeasureString(face, s).Ceil()
	d := &font.Drawer{Dst: r.canvas, Src: image.NewUniform(col), Face: face, Dot: fixed.P(px(x)-w, px(baseline))}
	d.DrawString(s)
	return w, nil
}

func (r *renderer) wrap(f *opentype.Font, size float64, s string, maxWidth int) ([]string, error) {
	face, err := r.face(f, size)
	if err != nil {
		return nil, err
	}
	var lines []string
	current := ""
	for _, word := range strings.Fields(s) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && font.MeasureString(face, candidate).Ceil() > px(maxWidth) {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines, nil
}

func (r *renderer) fill(rect image.Rectangle, col color.Color) {
	draw.Draw(r.canvas, rect, image.NewUniform(col), image.Point{}, draw.Over)
}

// rect takes layout coordinates.
func rect(x0, y0, x1, y1 int) image.Rectangle {
	return image.Rect(px(x0), px(y0), px(x1), px(y1))
}

func (r *renderer) hDash(x0, x1, y int, col color.Color) {
	for x := x0; x < x1; x += 6 {
		end := x + 3
		if end > x1 {
			end = x1
		}
		r.fill(image.Rect(px(x), px(y), px(end), px(y)+scale), col)
	}
}

func (r *renderer) vDash(x, y0, y1 int, col color.Color) {
	for y := y0; y < y1; y += 8 {
		end := y + 4
		if end > y1 {
			end = y1
		}
		r.fill(rect(x, y, x+2, end), col)
	}
}

func (r *renderer) dot(cx, cy, radius int, col color.Color) {
	cx, cy, radius = px(cx), px(cy), px(radius)
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				r.canvas.Set(cx+x, cy+y, col)
			}
		}
	}
}

// compose draws the whole ticket. img may be nil when the event image could not be loaded.
func (r *renderer) compose(c content, img image.Image, qr image.Image) error {
	r.fill(r.canvas.Bounds(), colBackground)
	if err := r.drawVisual(c, img); err != nil {
		return err
	}
	return r.drawDetails(c, qr)
}

func (r *renderer) drawVisual(c content, img image.Image) error {
	panel := rect(0, 0, visualWidth, layoutHeight)
	r.fill(panel, color.Black)

	if img != nil {
		fitted := imaging.Fill(img, panel.Dx(), panel.Dy(), imaging.Center, imaging.Lanczos)
		draw.DrawMask(r.canvas, panel, fitted, image.Point{}, image.NewUniform(color.Alpha{A: 204}), image.Point{}, draw.Over)
	} else {
		r.fill(panel, colPanel)
	}

	// black from the bottom edge fading out at 60% of the height
	for y := 0; y < panel.Dy(); y++ {
		fromBottom := float64(panel.Dy()-y) / float64(panel.Dy())
		var a float64
		switch {
		case fromBottom <= 0.1:
			a = 1
		case fromBottom >= 0.6:
			a = 0
		default:
			a = (0.6 - fromBottom) / 0.5
		}
		if a > 0 {
			r.fill(image.Rect(0, y, panel.Dx(), y+1), color.NRGBA{A: uint8(a * 255)})
		}
	}
	r.vDash(visualWidth-2, 0, layoutHeight, colDash)

	const pad = 25
	dateBaseline := layoutHeight - pad - 4 - 2*22
	meta := []string{c.Date, c.Time, c.Place}
	for i, line := range meta {
		baseline := dateBaseline + i*22
		r.dot(pad+5, baseline-5, 3, colAccent)
		if _, err := r.text(r.fonts.regular, 14, colLight, pad+20, baseline, line); err != nil {
			return err
		}
	}

	title, err := r.wrap(r.fonts.bold, 28, c.Title, visualWidth-2*pad)
	if err != nil {
		return err
	}
	if len(title) > 3 {
		title = append(title[:2], strings.Join(title[2:], " "))
	}
	baseline := dateBaseline - 14 - 15 - 31*(len(title)-1)
	for _, line := range title {
		if _, err := r.text(r.fonts.bold, 28, colWhite, pad, baseline, line); err != nil {
			return err
		}
		baseline += 31
	}
	return nil
}

func (r *renderer) drawDetails(c content, qr image.Image) error {
	const (
		left  = visualWidth + 30
		right = layoutWidth - 30
	)

	steps := []func() error{
		func() error {
			_, err := r.text(r.fonts.bold, 10, colAccent, left, 35, "BILLET ÉLECTRONIQUE")
			return err
		},
		func() error {
			_, err := r.text(r.fonts.regular, 12, colDim, left, 54, c.Ref)
			return err
		},
		func() error {
			_, err := r.textRight(r.fonts.bold, 16, colWhite, right, 41, c.Customer)
			return err
		},
		func() error {
			_, err := r.textRight(r.fonts.regular, 12, colDim, right, 58, c.Phone)
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	const boxTop, rowHeight = 85, 21
	sep := boxTop + 15 + rowHeight*len(c.Lines) + 2
	boxBottom := sep + 28 + 15
	r.fill(rect(left, boxTop, right, boxBottom), colBorder)
	r.fill(rect(left+1, boxTop+1, right-1, boxBottom-1), colPanel)

	for i, l := range c.Lines {
		baseline := boxTop + 15 + 12 + rowHeight*i
		w, err := r.text(r.fonts.regular, 13, colLight, left+15, baseline, l.Quantity+" ")
		if err != nil {
			return err
		}
		if _, err := r.text(r.fonts.regular, 13, colWhite, left+15+w/scale, baseline, l.Type); err != nil {
			return err
		}
		if _, err := r.textRight(r.fonts.bold, 13, colAccent, right-15, baseline, l.Amount); err != nil {
			return err
		}
	}

	r.hDash(left+15, right-15, sep, colDash)
	totalBaseline := sep + 28
	if _, err := r.text(r.fonts.bold, 12, colMuted, left+15, totalBaseline, "TOTAL"); err != nil {
		return err
	}
	amount := strings.TrimSuffix(c.Total, " "+Currency)
	w, err := r.textRight(r.fonts.bold, 12, colAccent, right-15, totalBaseline, " "+Currency)
	if err != nil {
		return err
	}
	if _, err := r.textRight(r.fonts.bold, 18, colWhite, right-15-w/scale, totalBaseline, amount); err != nil {
		return err
	}

	return r.drawFooter(c, qr, left, right)
}

func (r *renderer) drawFooter(c content, qr image.Image, left, right int) error {
	const pad = 5
	qb := qr.Bounds()
	box := image.Rect(px(left), px(layoutHeight-25)-qb.Dy()-px(2*pad), px(left)+qb.Dx()+px(2*pad), px(layoutHeight-25))
	r.fill(box, colWhite)
	draw.Draw(r.canvas, image.Rect(box.Min.X+px(pad), box.Min.Y+px(pad), box.Max.X-px(pad), box.Max.Y-px(pad)), qr, qb.Min, draw.Src)

	textLeft := box.Max.X/scale + 20
	top := box.Min.Y / scale
	if _, err := r.text(r.fonts.bold, 10, colDim, textLeft, top+14, "TOKEN DE VALIDATION"); err != nil {
		return err
	}
	if _, err := r.text(r.fonts.mono, 22, colAccent, textLeft, top+14+26, c.Token); err != nil {
		return err
	}
	lines, err := r.wrap(r.fonts.regular, 9, notice, right-textLeft)
	if err != nil {
		return err
	}
	baseline := top + 14 + 26 + 16
	for _, line := range lines {
		if _, err := r.text(r.fonts.regular, 9, colFaint, textLeft, baseline, line); err != nil {
			return err
		}
		baseline += 12
	}
	return nil
}
