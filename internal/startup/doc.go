// Package startup handles process configuration and environment validation.
//
// LoadConfig reads all settings from environment variables, resolves and
// creates the scratch, media, and database directories, probes for ffmpeg,
// and returns a Config consumed by the rest of the application. Structured
// startup logging lives here so main stays small.
package startup
