//go:build !espeak

package main

import "voxroute/internal/tts"

// localSpeaker is used when no bus is configured.
func localSpeaker() tts.Speaker {
	return tts.LogSpeaker{}
}
