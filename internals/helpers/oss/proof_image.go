// internals/helpers/oss/proof_image.go
package helper

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// batas ukuran bukti bayar (foto kuitansi / screenshot transfer)
const MaxProofSize = int64(5 * 1024 * 1024)

var ErrUnsupportedImage = errors.New("format tidak didukung (pakai jpg/png/webp)")

func getEnv(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func envInt(key string, def int) int {
	if v := getEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float32) float32 {
	if v := getEnv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 && f <= 100 {
			return float32(f)
		}
	}
	return def
}

/* =======================================================================
   Opsi WebP (ENV-driven)
======================================================================= */

type WebPOptions struct {
	MaxW    int     // batas lebar (resize keep-aspect)
	MaxH    int     // batas tinggi
	Quality float32 // 1..100
}

func ProofWebPOptionsFromEnv() WebPOptions {
	return WebPOptions{
		MaxW:    envInt("IMAGE_WEBP_MAX_W", 1600),
		MaxH:    envInt("IMAGE_WEBP_MAX_H", 1600),
		Quality: envFloat("IMAGE_WEBP_QUALITY", 80),
	}
}

/* =======================================================================
   Decode (jpeg/png/webp) dengan sniff MIME, fallback ekstensi
======================================================================= */

func decodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	kind := ""
	switch {
	case strings.Contains(ct, "jpeg"):
		kind = "jpeg"
	case strings.Contains(ct, "png"):
		kind = "png"
	case strings.Contains(ct, "webp"):
		kind = "webp"
	default:
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".jpg", ".jpeg":
			kind = "jpeg"
		case ".png":
			kind = "png"
		case ".webp":
			kind = "webp"
		}
	}

	switch kind {
	case "jpeg":
		return jpeg.Decode(bytes.NewReader(all))
	case "png":
		return png.Decode(bytes.NewReader(all))
	case "webp":
		return webp.Decode(bytes.NewReader(all))
	default:
		return nil, ErrUnsupportedImage
	}
}

/* =======================================================================
   Convert → WebP
======================================================================= */

// ConvertProofToWebP membaca gambar, memperkecil bila melebihi batas, lalu
// encode WebP lossy.
func ConvertProofToWebP(r io.Reader, filename string, opt WebPOptions) ([]byte, error) {
	all, err := io.ReadAll(io.LimitReader(r, MaxProofSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(all)) > MaxProofSize {
		return nil, fmt.Errorf("file too large (max %d bytes)", MaxProofSize)
	}

	img, err := decodeImage(all, filename)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if opt.MaxW > 0 && opt.MaxH > 0 && (b.Dx() > opt.MaxW || b.Dy() > opt.MaxH) {
		img = imaging.Fit(img, opt.MaxW, opt.MaxH, imaging.CatmullRom)
	}

	q := opt.Quality
	if q <= 0 {
		q = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: q}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
