// Package cli provides the pharmsim command-line client.
//
// It wires configuration, local storage, the API clients and the session
// guards, then either runs a one-shot cobra command or the interactive shell.
// Every run starts with the bootstrap guard, so a trusted device silently
// restores its session the way a browser tab does on reload.
//
// Key features:
//   - Login / Logout / Logout everywhere / Forget device
//   - whoami and the "trust this device" toggle
//   - Guarded views (home, scenarios, transcripts, models, voices, issues,
//     users) gated on the roles in the access token
//
// The shell is started via App.Shell(ctx), which blocks until the user exits.
// See Execute, App and runREPL for details.
package cli
