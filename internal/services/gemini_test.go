package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestGeminiAudio(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{Data: []byte{1, 2}, MIMEType: "audio/L16;codec=pcm;rate=24000"}},
				{Text: "ignored"},
				{InlineData: &genai.Blob{Data: []byte{3}}},
			}},
		}},
	}

	assert.Equal(t, []byte{1, 2, 3}, geminiAudio(resp))
}

func TestGeminiAudioEmpty(t *testing.T) {
	assert.Nil(t, geminiAudio(nil))
	assert.Nil(t, geminiAudio(&genai.GenerateContentResponse{}))
	assert.Nil(t, geminiAudio(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}
