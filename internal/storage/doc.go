// Package storage provides the durable asset store behind the upload
// pipeline and the streaming endpoints.
//
// Two backends exist: a local filesystem store (the default) and an
// S3-compatible MinIO store selected with STORAGE_BACKEND=minio. Both are
// append-mostly: an asset is written exactly once per processed upload and
// read many times afterwards.
package storage
