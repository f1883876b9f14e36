package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"

	"postergeist/internal/location"
	"postergeist/internal/logging"
	"postergeist/internal/textutil"
)

// DefaultSquareSize is the edge length posts are normalized to.
const DefaultSquareSize = 1080

const jpegQuality = 90

// ExtractHint reads GPS coordinates from the image's EXIF block. Missing or
// malformed metadata yields the zero Hint; this is a normal outcome, never
// an error.
func ExtractHint(path string) location.Hint {
	file, err := os.Open(path)
	if err != nil {
		return location.Hint{}
	}
	defer file.Close()

	meta, err := exif.Decode(file)
	if err != nil {
		return location.Hint{}
	}
	lat, lng, err := meta.LatLong()
	if err != nil {
		return location.Hint{}
	}
	return location.Hint{Lat: lat, HasLat: true, Lng: lng, HasLng: true}
}

// PrepareSquare produces the transient working copy of the image at path:
// EXIF orientation applied, center square-crop, resized to size×size, and
// encoded as JPEG under destDir. The caller owns removal of the returned
// file.
func PrepareSquare(path, destDir string, size int) (string, error) {
	if size <= 0 {
		size = DefaultSquareSize
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	img = applyOrientation(img, readOrientation(data))

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w != h {
		side := w
		if h < side {
			side = h
		}
		crop := image.Rect(0, 0, side, side).Add(image.Point{
			X: bounds.Min.X + (w-side)/2,
			Y: bounds.Min.Y + (h-side)/2,
		})
		cropped := image.NewRGBA(image.Rect(0, 0, side, side))
		draw.Draw(cropped, cropped.Bounds(), img, crop.Min, draw.Src)
		img = cropped
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create working directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(destDir, "temp_"+textutil.SanitizeFileName(base)+".jpg")

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create working copy: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("flush working copy: %w", err)
	}
	return outPath, nil
}

// Cleanup removes a transient working copy. Failures are logged and
// swallowed; they never affect the post outcome.
func Cleanup(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.NewComponentLogger(logger, "imaging").Warn("failed to remove working copy",
			logging.String("path", path),
			logging.Error(err))
	}
}

func readOrientation(data []byte) int {
	meta, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation bakes the EXIF orientation into pixel data. Only the
// rotation cases the upstream handled (3, 6, 8) are applied; mirrored
// orientations pass through.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 3:
		return rotate180(img)
	case 6:
		return rotate90(img)
	case 8:
		return rotate270(img)
	default:
		return img
	}
}

func rotate90(src image.Image) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(h-1-y, x, src.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return dst
}

func rotate180(src image.Image) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(w-1-x, h-1-y, src.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return dst
}

func rotate270(src image.Image) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(y, w-1-x, src.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return dst
}
