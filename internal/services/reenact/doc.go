// Package reenact adapts the visual reenactment stage (X-Nemo). The stage
// consumes the user's video as motion source and an identity face image as
// reference, producing a reenacted video.
package reenact
