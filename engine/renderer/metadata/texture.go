package metadata

/** @brief The name of the fallback texture used when an image cannot be loaded. */
const DEFAULT_TEXTURE_NAME string = "default"

/** @brief Side of the default checkerboard texture, in pixels. */
const DEFAULT_TEXTURE_DIMENSION uint32 = 64

/**
 * @brief A 2D texture uploaded to the backend.
 */
type Texture struct {
	/** @brief Asset path of the source image, or DEFAULT_TEXTURE_NAME. */
	Name   string
	Width  uint32
	Height uint32
	/** @brief The backend texture handle. */
	Handle uint32
	/** @brief Incremented every time the pixels are reloaded. */
	Generation uint32
}

/**
 * @brief Builds the pixels of the default texture: a blue and white
 * checkerboard of 8x8 cells.
 */
func DefaultTexturePixels() []uint8 {
	dim := DEFAULT_TEXTURE_DIMENSION
	pixels := make([]uint8, dim*dim*4)
	for row := uint32(0); row < dim; row++ {
		for col := uint32(0); col < dim; col++ {
			i := (row*dim + col) * 4
			// default is white
			pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = 255, 255, 255, 255
			if (row/8)%2 == (col/8)%2 {
				pixels[i] = 0
				pixels[i+1] = 0
			}
		}
	}
	return pixels
}
