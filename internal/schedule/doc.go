// Package schedule implements the posting time-window gate and the
// randomized inter-post delay. The scheduler only answers "is now inside a
// window" and "how long to wait"; the posting loop owns the actual sleeps.
package schedule
