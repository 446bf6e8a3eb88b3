package courseengine

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxFigureWidth = 800
	jpegQuality    = 80
	maxUploadSize  = 10 << 20 // 10MB
	uploadsSubdir  = "uploads"
)

// processFigure decodes an image from src, optionally resizes it to
// maxFigureWidth, and encodes it as JPEG. Returns metadata and the encoded bytes.
func processFigure(src io.Reader, originalName string) (Figure, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Figure{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Resize if wider than max
	if w > maxFigureWidth {
		newH := h * maxFigureWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxFigureWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxFigureWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Figure{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	filename := slugifyFilename(originalName) + ".jpg"

	return Figure{
		Filename:     filename,
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return Slugify(base)
}

// ensureUniqueFilename appends a counter if filename already exists in the
// directory or database.
func (a *App) ensureUniqueFilename(fig *Figure) {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	base := strings.TrimSuffix(fig.Filename, ".jpg")
	candidate := fig.Filename
	counter := 1
	for {
		// Check filesystem
		if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
			counter++
			candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
			continue
		}
		// Check database
		existing, _ := a.Store.ListFigures()
		found := false
		for _, ex := range existing {
			if ex.Filename == candidate {
				found = true
				break
			}
		}
		if found {
			counter++
			candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
			continue
		}
		break
	}
	fig.Filename = candidate
}

func (a *App) handleFigureList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	figures, err := a.Store.ListFigures()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminFigures(figures, CsrfToken(c)))
}

func (a *App) handleFigureUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("figure")
	if err != nil {
		return c.String(http.StatusBadRequest, "No figure file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	fig, encoded, err := processFigure(src, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Could not process image")
	}
	a.ensureUniqueFilename(&fig)

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, fig.Filename), encoded, 0o644); err != nil {
		return err
	}
	if err := a.Store.SaveFigure(fig); err != nil {
		return err
	}

	figures, err := a.Store.ListFigures()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminFigures(figures, CsrfToken(c)))
}

func (a *App) handleFigureDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	filename := c.Param("filename")
	// Refuse path traversal; stored filenames are always flat slugs.
	if filename == "" || strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return c.NoContent(http.StatusBadRequest)
	}
	if err := os.Remove(filepath.Join(a.staticDir, uploadsSubdir, filename)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := a.Store.DeleteFigure(filename); err != nil {
		return err
	}
	figures, err := a.Store.ListFigures()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminFigures(figures, CsrfToken(c)))
}
