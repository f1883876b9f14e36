// Package poster orchestrates a posting pass: image selection, schedule
// gating, location resolution, tagging, captioning, upload, and history
// recording.
package poster
