// Package upload parses incoming multipart uploads and enforces the
// per-purpose validation constraints: exact form field name, MIME prefix,
// per-file and aggregate size ceilings, and file count.
//
// Accepted files are staged in a scratch directory under fresh unique
// names; rejected requests never leave partial files behind. Validation
// failures are reported as *Error values carrying a stable code that maps
// to an HTTP status.
package upload
