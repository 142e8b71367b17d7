package llm

import (
	"encoding/base64"
	"strings"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// maxUserLength mirrors the renderer's cap; the builder enforces it
// again so ad-hoc callers cannot bypass it
const maxUserLength = 40000

// OpenAIMessages builds the message list for an OpenAI-compatible chat
// completion. Without images it is a plain system/user pair; with
// images the user content becomes one text part plus one image part
// per image, annotated low-detail unless lowRes is false. Image order
// follows the caller-supplied order.
func OpenAIMessages(system, user string, images []string, lowRes bool) []openai.ChatCompletionMessageParamUnion {
	user = truncate(user, maxUserLength)

	if len(images) == 0 {
		return []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		}
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(images)+1)
	parts = append(parts, openai.TextContentPart(user))
	for _, image := range images {
		imageURL := openai.ChatCompletionContentPartImageImageURLParam{URL: image}
		if lowRes {
			imageURL.Detail = "low"
		}
		parts = append(parts, openai.ImageContentPart(imageURL))
	}

	return []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(parts),
	}
}

// GeminiParts builds the content list for a Gemini generation: system
// text (when present), user text, then one inline jpeg part per image
// in caller order.
func GeminiParts(system, user string, images []string) []*genai.Part {
	parts := make([]*genai.Part, 0, len(images)+2)
	if system != "" {
		parts = append(parts, &genai.Part{Text: system})
	}
	parts = append(parts, &genai.Part{Text: truncate(user, maxUserLength)})

	for _, image := range images {
		data, err := base64.StdEncoding.DecodeString(stripDataHeader(image))
		if err != nil {
			// payloads come from the encoder and are already valid
			// base64; a bad one is skipped rather than aborting
			continue
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: data},
		})
	}
	return parts
}

// FlattenText joins system, user and image placeholders into a single
// prompt for providers without structured messages. Capped at 30000
// characters.
func FlattenText(system, user string) string {
	var parts []string
	if system != "" {
		parts = append(parts, system)
	}
	parts = append(parts, user)
	return truncate(strings.Join(parts, "\n"), 30000)
}

func stripDataHeader(image string) string {
	if _, payload, found := strings.Cut(image, ","); found && strings.HasPrefix(image, "data:") {
		return payload
	}
	return image
}

// truncate caps s at n characters without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if runes := []rune(s); len(runes) > n {
		return string(runes[:n])
	}
	return s
}
