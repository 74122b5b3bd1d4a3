// Package cli provides the interactive gym platform terminal client.
//
// It wires configuration, the local token database, the authenticated API
// client and the realtime channels into a REPL. Typical flow: log in (or
// paste tokens from a social-login redirect), list chat rooms, open one and
// chat; notifications stream in the background while a session exists.
//
// Key features:
//   - Login / Logout / token landing / whoami / status
//   - Chat room directory and live rooms (/leave returns to the prompt)
//   - Notification inbox with mark-as-read
//   - Session follows the token file, so a refresh or logout in another
//     process is picked up
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, runREPL and startSessionWatcher for details.
package cli
