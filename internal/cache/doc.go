// Package cache provides a small generic cache with least-recently-used
// eviction.
//
// The blur filters key their Gaussian kernels by quantized radius. A session
// blurs with one strength, so the working set is tiny and a single mutex is
// enough:
//
//	kernels := cache.New[int, []float32](64)
//	k := kernels.GetOrCreate(1500, func() []float32 { return build(15) })
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
