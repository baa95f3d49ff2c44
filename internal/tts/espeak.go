//go:build espeak

package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <espeak-ng/speak_lib.h>

int
espeak_say(const char *text, const char *lang)
{
	if (!text)
	{ return -1; }

	espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0);
	espeak_VOICE specs = { .languages = lang };
	espeak_SetVoiceByProperties(&specs);

	espeak_Synth(text, 500, 0, 0, 0, espeakCHARS_AUTO, NULL, NULL);
	espeak_Synchronize();
	espeak_Terminate();

	return 0;
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"
)

// EspeakSpeaker plays replies on the local sound card. Useful for trying the
// router from voxroute-ctl without a voice agent.
type EspeakSpeaker struct {
	mu   sync.Mutex
	lang string
}

func NewEspeakSpeaker(lang string) *EspeakSpeaker {
	if lang == "" {
		lang = "en"
	}
	return &EspeakSpeaker{lang: lang}
}

func (s *EspeakSpeaker) Say(_ context.Context, sp Speech) error {
	if sp.Text == "" {
		return nil
	}

	// espeak-ng keeps global state
	s.mu.Lock()
	defer s.mu.Unlock()

	ctext := C.CString(sp.Text)
	defer C.free(unsafe.Pointer(ctext))
	clang := C.CString(s.lang)
	defer C.free(unsafe.Pointer(clang))

	rc := C.espeak_say(ctext, clang)
	if rc != 0 {
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}

	return nil
}
