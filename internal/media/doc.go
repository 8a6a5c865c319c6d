// Package media wraps the ffmpeg plumbing around the two model stages:
// extracting the source audio track in the sample format the voice stage
// expects, and muxing the reenacted video with the converted audio into the
// final artifact.
package media
