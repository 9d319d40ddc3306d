package realtime

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// ClientEvent is a message sent to the service. Only the field matching Type is set.
type ClientEvent struct {
	Type     string          `json:"type"`
	EventID  string          `json:"event_id,omitempty"`
	Session  *SessionConfig  `json:"session,omitempty"`
	Audio    string          `json:"audio,omitempty"`
	Response *ResponseConfig `json:"response,omitempty"`
}

type SessionConfig struct {
	Modalities              []string                 `json:"modalities,omitempty"`
	Instructions            string                   `json:"instructions,omitempty"`
	InputAudioFormat        string                   `json:"input_audio_format,omitempty"`
	InputAudioTranscription *InputAudioTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection           `json:"turn_detection,omitempty"`
}

type InputAudioTranscription struct {
	Model string `json:"model"`
}

type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitempty"`
	CreateResponse    *bool   `json:"create_response,omitempty"`
}

type ResponseConfig struct {
	Modalities   []string    `json:"modalities,omitempty"`
	Instructions string      `json:"instructions,omitempty"`
	Conversation string      `json:"conversation,omitempty"`
	Input        []InputItem `json:"input,omitempty"`
}

type InputItem struct {
	Type    string         `json:"type"`
	Role    string         `json:"role,omitempty"`
	Content []InputContent `json:"content,omitempty"`
}

type InputContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// SessionUpdate configures a text-only session that transcribes input audio with
// server VAD but never answers on its own: slides are requested explicitly.
func SessionUpdate(transcriptionModel string) ClientEvent {
	createResponse := false
	return ClientEvent{
		Type:    "session.update",
		EventID: newEventID(),
		Session: &SessionConfig{
			Modalities:       []string{"text"},
			InputAudioFormat: "pcm16",
			InputAudioTranscription: &InputAudioTranscription{
				Model: transcriptionModel,
			},
			TurnDetection: &TurnDetection{
				Type:              "server_vad",
				Threshold:         0.5,
				PrefixPaddingMs:   300,
				SilenceDurationMs: 1000,
				CreateResponse:    &createResponse,
			},
		},
	}
}

// AppendAudio carries raw PCM16 audio, base64 encoded as the protocol requires.
func AppendAudio(pcm []byte) ClientEvent {
	return ClientEvent{
		Type:  "input_audio_buffer.append",
		Audio: base64.StdEncoding.EncodeToString(pcm),
	}
}

// AnalysisInput is the user turn that accompanies the synthesis instructions.
const AnalysisInput = "Analyze the transcript as instructed and answer with the JSON object only."

// AnalysisRequest asks for a one-shot, out-of-band text response driven entirely by
// instructions. It does not join the default conversation.
func AnalysisRequest(instructions string) ClientEvent {
	return ClientEvent{
		Type:    "response.create",
		EventID: newEventID(),
		Response: &ResponseConfig{
			Modalities:   []string{"text"},
			Instructions: instructions,
			Conversation: "none",
			Input: []InputItem{{
				Type: "message",
				Role: "user",
				Content: []InputContent{{
					Type: "input_text",
					Text: AnalysisInput,
				}},
			}},
		},
	}
}

func newEventID() string {
	return "evt_" + uuid.NewString()
}
