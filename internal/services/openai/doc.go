// Package openai generates post captions through the chat completion API,
// with a networked client and a noop variant selected by configuration.
package openai
