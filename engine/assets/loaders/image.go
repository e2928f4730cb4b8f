package loaders

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	// decoders registered with image.Decode
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/** @brief Parameters for the image loader. */
type ImageResourceParams struct {
	/** @brief Flip rows so the first row is the bottom of the image, as GL expects. */
	FlipY bool
}

type ImageLoader struct{}

// Load decodes the image at path into tightly packed RGBA8.
func (il *ImageLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	flip := false
	if p, ok := params.(*ImageResourceParams); ok && p != nil {
		flip = p.FlipY
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	data := DecodeRGBA(img, flip)
	return &metadata.Resource{
		Type:     metadata.ResourceTypeImage,
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (il *ImageLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	r.DataSize = 0
	return nil
}

// DecodeRGBA converts any image to RGBA8, optionally flipping it vertically.
func DecodeRGBA(img image.Image, flip bool) *metadata.ImageResourceData {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	if flip {
		stride := rgba.Stride
		row := make([]uint8, stride)
		for top, bottom := 0, b.Dy()-1; top < bottom; top, bottom = top+1, bottom-1 {
			t := rgba.Pix[top*stride : (top+1)*stride]
			u := rgba.Pix[bottom*stride : (bottom+1)*stride]
			copy(row, t)
			copy(t, u)
			copy(u, row)
		}
	}
	return &metadata.ImageResourceData{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Pixels: rgba.Pix,
	}
}
