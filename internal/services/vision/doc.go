// Package vision provides image label detection for tag generation, with a
// networked client and a noop variant selected by configuration.
package vision
