// Package api defines the public types of the hsmq engine: the message
// envelope and its wire format, the Engine interface, the Action boundary
// for externally supplied operations, and the Observer seam for logging
// and metrics.
//
// Application code normally imports the root hsmq package, which
// re-exports everything here.
package api
