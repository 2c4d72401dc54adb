package metadata

import "github.com/google/uuid"

/** @brief The name used when a texture has no asset behind it. */
const DefaultTextureName string = "default"

/**
 * @brief Represents a sampled texture owned by the backend.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uuid.UUID
	/** @brief The texture Name. */
	Name string
	/** @brief The texture Width in pixels. */
	Width uint32
	/** @brief The texture Height in pixels. */
	Height uint32
	/** @brief The number of channels per pixel. */
	ChannelCount uint8
	/** @brief The texture generation, incremented on every reload. */
	Generation uint32
	/** @brief The backend-specific texture data. */
	InternalData interface{}
}
