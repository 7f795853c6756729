// Package assets defines the contract for the external object store that
// holds images extracted during OCR. The production implementation (S3) lives
// outside this repository; the core only consumes the interface.
package assets

import "context"

// Store persists image assets extracted as OCR byproducts and serves them
// back by public URL.
type Store interface {
	// UploadImage stores one image for the given book/page and returns its
	// public URL. data is either raw image bytes or a base64 data URL,
	// whichever the producing backend emitted.
	UploadImage(ctx context.Context, bookID, pageID string, data string) (string, error)

	// Delete removes previously uploaded assets by URL. Unknown URLs are
	// ignored.
	Delete(ctx context.Context, urls []string) error
}
