// Package imaging prepares candidate images for upload: EXIF GPS hint
// extraction, orientation-corrected square cropping, and transient working
// copies sized for posting.
package imaging
