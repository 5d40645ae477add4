// Package download streams fetched response bodies to disk with optional
// checksum validation and progress reporting.
//
// # Saving a Body
//
// [Save] writes the body to a temporary file alongside the destination
// path, then atomically renames it on success:
//
//	err := download.Save(ctx, body, contentLength, destPath, logger,
//		download.WithChecksum(sha256.New(), expectedHex),
//		download.WithProgress(),
//	)
//
// Most callers should use client.Client.Download, which decodes the
// response's Content-Encoding before handing the stream to Save.
package download
