// Package models defines client-side data models shared by the gymclient
// components: identity, tokens, chat rooms and messages, notifications.
package models
