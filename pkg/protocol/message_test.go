package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	m, err := Parse([]byte(`{"from":"agent-1","to":"voxroute","kind":"transcript","session":"room_42","content":"Where exactly?"}`))
	require.NoError(t, err)
	assert.Equal(t, &Message{
		From:    "agent-1",
		To:      "voxroute",
		Kind:    KindTranscript,
		Session: "room_42",
		Content: "Where exactly?",
	}, m)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"not json":      `hello`,
		"bad to":        `{"from":"a","to":"x y","kind":"transcript","session":"s"}`,
		"missing from":  `{"to":"voxroute","kind":"transcript","session":"s"}`,
		"unknown kind":  `{"from":"a","to":"voxroute","kind":"audio","session":"s"}`,
		"no session":    `{"from":"a","to":"voxroute","kind":"transcript","content":"hi"}`,
		"wrong type":    `{"from":"a","to":"voxroute","kind":"transcript","session":7}`,
		"empty payload": ``,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestEncode(t *testing.T) {
	m := Message{From: "voxroute", To: "agent", Kind: KindSpeak, Session: "room", Content: "Hello!", AllowInterruptions: true}

	data, err := m.Encode()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"from":"voxroute","to":"agent","kind":"speak","session":"room","content":"Hello!","allow_interruptions":true}`,
		string(data))

	_, err = (&Message{From: "voxroute", To: "agent", Kind: KindSpeak}).Encode()
	assert.Error(t, err)
}
