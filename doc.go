// Package auth implements the core of the BrightPath authentication
// gateway: token issuance and verification, the role hierarchy, and the
// orchestration of the external identity store and user repository into
// the operations exposed over HTTP.
//
// The package is transport agnostic. The gateway package adapts API
// Gateway proxy events onto it, and cmd/server runs the same surface on
// a local HTTP listener for development.
package auth
