package engine

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"

	"github.com/namuan/dev-boost-sub001/pkg/models"
	"github.com/namuan/dev-boost-sub001/pkg/settings"

	// Decode-only support for webp inputs.
	_ "golang.org/x/image/webp"
)

// nativeFormats are the formats the in-process path can encode.
var nativeFormats = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".tif":  "tiff",
	".tiff": "tiff",
	".bmp":  "bmp",
}

// runNative re-encodes the image in process with no external tools. It
// handles orientation, optional downscaling and alpha flattening for
// JPEG output. Re-encoding never carries metadata over, so any EXIF in
// the source is reported as stripped.
func (e *ImageEngine) runNative(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(outputPath))
	format, ok := nativeFormats[ext]
	if !ok {
		return nil, fmt.Errorf("cannot encode %s output in process", ext)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hadExif := hasExif(inputPath)

	img, err := imaging.Open(inputPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", inputPath, err)
	}

	if w, h, resize := resizeBounds(s); resize {
		bounds := img.Bounds()
		if bounds.Dx() > w || bounds.Dy() > h {
			img = imaging.Fit(img, w, h, imaging.Lanczos)
		}
	}

	if format == "jpeg" {
		img = flattenAlpha(img)
	}

	q := s.EffectiveQuality(models.CategoryImage)
	err = imaging.Save(img, outputPath,
		imaging.JPEGQuality(q),
		imaging.PNGCompressionLevel(png.BestCompression),
	)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", outputPath, err)
	}

	return &Result{
		Method:           "imaging",
		Format:           format,
		Converted:        !sameExt(inputPath, outputPath),
		MetadataStripped: hadExif,
	}, nil
}

// flattenAlpha composites the image over a white background. JPEG has no
// alpha channel and would otherwise render transparency as black.
func flattenAlpha(img image.Image) image.Image {
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return img
	}
	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)
	return flat
}

func hasExif(path string) bool {
	raw, err := exif.SearchFileAndExtractExif(path)
	return err == nil && len(raw) > 0
}
