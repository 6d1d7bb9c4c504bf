// Package assets defines the published media asset model shared by the
// upload pipeline and the streaming endpoints, together with the
// extension and content-type tables used to classify files.
package assets
