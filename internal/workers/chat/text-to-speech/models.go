// internal/workers/chat/text-to-speech/models.go
package texttospeech

type Input struct {
	Text   string `json:"reply"`
	Voice  string `json:"voice,omitempty"`
	Format string `json:"format,omitempty"`
}

type Output struct {
	AudioBase64 string `json:"audioBase64"`
	Format      string `json:"audioFormat"`
	DurationMs  int64  `json:"durationMs,omitempty"`
}
