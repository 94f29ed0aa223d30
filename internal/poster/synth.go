package poster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	cberrors "github.com/lepinkainen/cinemabot/internal/errors"
)

const (
	Width  = 500
	Height = 750

	lineWidth    = 20 // characters per title line
	maxLines     = 8
	titleTop     = 250
	lineStep     = 40
	captionY     = 650
	fallbackWord = "Movie"
	caption      = "Информация о фильме"
)

var (
	background = color.NRGBA{R: 15, G: 30, B: 60, A: 255}
	stripFill  = color.NRGBA{R: 20, G: 40, B: 80, A: 255}
	perfFill   = color.NRGBA{R: 40, G: 60, B: 100, A: 255}
	textColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	yearColor  = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	capColor   = color.NRGBA{R: 180, G: 180, B: 180, A: 255}
)

type faces struct {
	title   font.Face
	year    font.Face
	caption font.Face
}

var (
	facesOnce sync.Once
	loaded    *faces
	facesErr  error
)

func loadFaces() (*faces, error) {
	facesOnce.Do(func() {
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			facesErr = fmt.Errorf("parse bold font: %w", err)
			return
		}
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			facesErr = fmt.Errorf("parse regular font: %w", err)
			return
		}

		newFace := func(f *opentype.Font, size float64) (font.Face, error) {
			return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		}

		var fs faces
		if fs.title, err = newFace(bold, 32); err != nil {
			facesErr = err
			return
		}
		if fs.year, err = newFace(regular, 26); err != nil {
			facesErr = err
			return
		}
		if fs.caption, err = newFace(regular, 20); err != nil {
			facesErr = err
			return
		}
		loaded = &fs
	})
	return loaded, facesErr
}

// Synthesize renders a placeholder poster as JPEG bytes. It never fails: when
// the full layout cannot be produced it returns a minimal one-word poster.
func Synthesize(title string, year int) []byte {
	data, err := render(title, year)
	if err == nil {
		return data
	}
	slog.Warn("Failed to render placeholder poster, using minimal one", "title", title, "error", err)
	return minimal()
}

func render(title string, year int) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()

	fs, err := loadFaces()
	if err != nil {
		return nil, err
	}

	img := imaging.New(Width, Height, background)
	paintGradient(img)
	paintFilmStrip(img)

	title = strings.TrimSpace(title)
	if title == "" {
		title = fallbackWord
	}
	y := titleTop
	for _, line := range wrapTitle(title, lineWidth, maxLines) {
		drawCentered(img, fs.title, line, y, textColor)
		y += lineStep
	}
	if year > 0 {
		drawCentered(img, fs.year, strconv.Itoa(year), y+20, yearColor)
	}
	drawCentered(img, fs.caption, caption, captionY, capColor)

	return encode(img)
}

// minimal renders the innermost placeholder using the built-in bitmap face.
func minimal() []byte {
	img := imaging.New(Width, Height, background)
	drawCentered(img, basicfont.Face7x13, fallbackWord, Height/2, textColor)
	data, err := encode(img)
	if err != nil {
		slog.Error("Failed to encode minimal poster", "error", err)
		return nil
	}
	return data
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// paintGradient fades the background from dark blue at the top towards black.
func paintGradient(img *image.NRGBA) {
	for y := 0; y < Height; y++ {
		frac := float64(y) / Height
		r := uint8(max(0, 15-int(frac*15)))
		g := uint8(max(0, 30-int(frac*30)))
		b := uint8(min(255, int(r)*4))
		row := image.Rect(0, y, Width, y+1)
		draw.Draw(img, row, image.NewUniform(color.NRGBA{R: r, G: g, B: b, A: 255}), image.Point{}, draw.Src)
	}
}

// paintFilmStrip draws the outlined film strip with its perforations near the top.
func paintFilmStrip(img *image.NRGBA) {
	outline := image.NewUniform(textColor)
	draw.Draw(img, image.Rect(48, 48, 452, 102), outline, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(50, 50, 450, 100), image.NewUniform(stripFill), image.Point{}, draw.Src)
	for x := 70; x < 450; x += 40 {
		draw.Draw(img, image.Rect(x, 60, min(x+20, 450), 90), image.NewUniform(perfFill), image.Point{}, draw.Src)
	}
}

func drawCentered(img draw.Image, face font.Face, text string, y int, c color.Color) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	width := d.MeasureString(text).Ceil()
	metrics := face.Metrics()
	baseline := y + (metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	d.Dot = fixed.P((Width-width)/2, baseline)
	d.DrawString(text)
}

// wrapTitle breaks title into lines of at most width characters, splitting
// overlong words and marking truncation with an ellipsis.
func wrapTitle(title string, width, limit int) []string {
	var lines []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, string(current))
			current = current[:0]
		}
	}

	for _, word := range strings.Fields(title) {
		w := []rune(word)
		for len(w) > width {
			flush()
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = append(current, w...)
		case len(current)+1+len(w) <= width:
			current = append(current, ' ')
			current = append(current, w...)
		default:
			flush()
			current = append(current, w...)
		}
	}
	flush()

	if len(lines) > limit {
		lines = lines[:limit]
		last := []rune(lines[limit-1])
		if len(last) >= width {
			last = last[:width-1]
		}
		lines[limit-1] = string(last) + "…"
	}
	return lines
}

// WriteTemp writes data to a new temporary file with extension ext and returns
// its path. The caller owns the file and must delete it after use.
func WriteTemp(data []byte, ext string) (string, error) {
	if ext = strings.TrimPrefix(ext, "."); ext == "" {
		ext = "jpg"
	}
	f, err := os.CreateTemp("", "cinemabot-poster-*."+ext)
	if err != nil {
		return "", cberrors.NewPosterIOError("", "temp", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(data); err != nil {
		_ = os.Remove(f.Name())
		return "", cberrors.NewPosterIOError("", "temp", err)
	}
	return f.Name(), nil
}

// SynthesizeFile renders a placeholder poster and writes it to a temporary file.
func SynthesizeFile(title string, year int) (string, error) {
	return WriteTemp(Synthesize(title, year), "jpg")
}
