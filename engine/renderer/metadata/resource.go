package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Text resource type. */
	ResourceTypeText ResourceType = iota
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Shader stage source. */
	ResourceTypeShader
	/** @brief Custom resource type. Used by loaders outside the core engine. */
	ResourceTypeCustom
)

func (r ResourceType) String() string {
	switch r {
	case ResourceTypeText:
		return "text"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeShader:
		return "shader"
	}
	return "custom"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	Type ResourceType
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/**
 * @brief Decoded image pixels, tightly packed RGBA8.
 */
type ImageResourceData struct {
	Width  uint32
	Height uint32
	Pixels []uint8
}
