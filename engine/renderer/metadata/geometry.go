package metadata

import "github.com/google/uuid"

/**
 * @brief Represents geometry uploaded to the device, renderable by a
 * single indexed draw.
 */
type Geometry struct {
	/** @brief The unique geometry identifier. */
	ID uuid.UUID
	/** @brief The geometry Name. */
	Name string
	/** @brief The number of vertices in the vertex buffer. */
	VertexCount uint32
	/** @brief The number of indices in the index buffer. */
	IndexCount uint32
	/** @brief The backend-specific geometry data. */
	InternalData interface{}
}
