// Package minio implements the "minio" storage driver on top of the MinIO
// Go client, for MinIO and other S3-compatible services.
//
// # Endpoint
//
// The endpoint names the server and the bucket:
//
//	http://localhost:9000/assets
//	https://play.min.io/assets
//
// Without a scheme, Config.UseSSL decides between http and https.
//
// # Client Interface
//
// The Client interface abstracts the MinIO client so the driver can be
// tested with the mock in minio/mocks.
//
// # Semantics
//
//   - Put streams through a multipart upload of unknown size; the object
//     becomes visible only when the upload completes.
//   - Get uses ranged requests for offset/limit reads.
//   - Delete is idempotent on the server, so a missing key is not reported.
//     Engines configured with StrictRemove check existence first.
package minio
