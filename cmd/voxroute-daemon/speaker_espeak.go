//go:build espeak

package main

import "voxroute/internal/tts"

func localSpeaker() tts.Speaker {
	return tts.NewEspeakSpeaker("en")
}
