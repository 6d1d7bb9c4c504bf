// Package logging provides leveled logging helpers on top of the standard
// library log package.
//
// The level is read once from the environment: DEBUG=true forces debug
// output, otherwise LOG_LEVEL selects debug, info, warn, or error. The
// default level is info.
package logging
