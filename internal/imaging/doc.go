// Package imaging normalizes captured photos for bandwidth-constrained
// upload: decode, downscale to a bounded width, and recompress as JPEG at
// a fixed quality. The pipeline is deterministic for identical input and
// configuration.
package imaging
