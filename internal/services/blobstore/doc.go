// Package blobstore uploads normalized attachment blobs to S3-compatible
// object storage and mints presigned download URLs for them.
package blobstore
