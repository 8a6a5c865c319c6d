// Package voiceconv adapts the voice conversion stage (Seed-VC). The stage
// consumes audio extracted from the user's video and an identity voice sample
// as reference, producing converted audio.
package voiceconv
