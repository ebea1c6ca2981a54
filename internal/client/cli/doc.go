// Package cli provides the interactive CareerCompass terminal client.
//
// It wires configuration, the local token store, the HTTP client and the
// services, then runs a REPL. Typical flow: restore the previous session from
// the token store, log in when a protected command needs it, and run
// commands against the API.
//
// Key features:
//   - Register / Login / Google login / Logout
//   - Chat with the career assistant and browse its history
//   - Job and college search
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
