// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client with a small interface covering the
// operations the report exporter needs: bucket checks, uploads, and
// downloads. The abstraction supports both AWS S3 and self-hosted MinIO.
//
// # Client Interface
//
// The Client interface makes storage interactions easy to mock for unit
// testing (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "count-reports")
package storage
