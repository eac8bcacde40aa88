//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// quadVertexStride is the byte stride per quad vertex:
//
//	position (vec2<f32>) = 8 bytes (location 0)
//	texCoord (vec2<f32>) = 8 bytes (location 1)
const quadVertexStride = 16

// quadVertexCount is the number of vertices drawn as a triangle strip.
const quadVertexCount = 4

// quadVertices covers the viewport in NDC. The v axis points down the image
// so that a bottom-up upload read with flipY=1 lands upright.
var quadVertices = [quadVertexCount][4]float32{
	{-1, -1, 0, 1},
	{1, -1, 1, 1},
	{-1, 1, 0, 0},
	{1, 1, 1, 0},
}

// quadBytes returns the interleaved little-endian vertex data.
func quadBytes() []byte {
	buf := make([]byte, quadVertexCount*quadVertexStride)
	for i, v := range quadVertices {
		for j, f := range v {
			binary.LittleEndian.PutUint32(buf[i*quadVertexStride+j*4:], math.Float32bits(f))
		}
	}
	return buf
}

// UploadQuad creates the static full-screen quad shared by both passes.
func UploadQuad(device hal.Device, queue hal.Queue) (hal.Buffer, error) {
	data := quadBytes()
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blur_quad",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create quad buffer: %w", err)
	}
	if err := queue.WriteBuffer(buf, 0, data); err != nil {
		device.DestroyBuffer(buf)
		return nil, fmt.Errorf("upload quad: %w", err)
	}
	return buf, nil
}
