package sitepress

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

const (
	// FaviconWidth is the width favicons are scaled to.
	FaviconWidth   = 32
	maxFaviconSize = 2 << 20 // 2MB
	// maxFaviconPixels bounds the decoded source image.
	maxFaviconPixels = 4096 * 4096
	faviconSubdir  = "assets"
)

// ProcessFavicon decodes an image from src, scales it to FaviconWidth
// keeping the aspect ratio, and encodes it as PNG. The height is capped at
// FaviconWidth, so taller images end up square.
func ProcessFavicon(src io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(src, maxFaviconSize))
	if err != nil {
		return nil, fmt.Errorf("read favicon: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode favicon: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxFaviconPixels {
		return nil, fmt.Errorf("favicon too large: %dx%d", cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode favicon: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w != FaviconWidth || h > FaviconWidth {
		newH := min(max(1, h*FaviconWidth/w), FaviconWidth)
		dst := image.NewRGBA(image.Rect(0, 0, FaviconWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode favicon: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveFavicon processes src and writes it under staticDir. It returns the
// public URL path of the written file.
func SaveFavicon(staticDir string, src io.Reader) (string, error) {
	data, err := ProcessFavicon(src)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(staticDir, faviconSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create favicon dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "favicon.png"), data, 0o644); err != nil {
		return "", fmt.Errorf("write favicon: %w", err)
	}
	return "/public/" + faviconSubdir + "/favicon.png", nil
}
