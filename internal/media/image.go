package media

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"
)

// Images larger than this box are downscaled to fit it.
const (
	MaxImageWidth  = 1280
	MaxImageHeight = 1280
)

// NormalizeImage rewrites the image at path so it fits MaxImageWidth x
// MaxImageHeight, keeping the aspect ratio. Smaller images are left alone.
func NormalizeImage(path string) error {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("media: %w: %v", ErrNotImage, err)
	}

	b := img.Bounds()
	if b.Dx() <= MaxImageWidth && b.Dy() <= MaxImageHeight {
		return nil
	}

	img = imaging.Fit(img, MaxImageWidth, MaxImageHeight, imaging.Lanczos)

	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		format = imaging.JPEG
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("media: rewrite image: %w", err)
	}
	defer f.Close()

	if err := imaging.Encode(f, img, format); err != nil {
		return fmt.Errorf("media: encode image: %w", err)
	}
	return nil
}
