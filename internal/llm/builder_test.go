package llm

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIMessagesTextOnly(t *testing.T) {
	messages := OpenAIMessages("be brief", "summarize this", nil, true)
	require.Len(t, messages, 2)

	raw, err := json.Marshal(messages)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "system", decoded[0]["role"])
	assert.Equal(t, "be brief", decoded[0]["content"])
	assert.Equal(t, "user", decoded[1]["role"])
	assert.Equal(t, "summarize this", decoded[1]["content"])
}

func TestOpenAIMessagesWithImages(t *testing.T) {
	images := []string{"data:image/jpeg;base64,aaaa", "data:image/jpeg;base64,bbbb"}
	messages := OpenAIMessages("sys", "look at these", images, true)
	require.Len(t, messages, 2)

	raw, err := json.Marshal(messages[1])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	parts, ok := decoded["content"].([]interface{})
	require.True(t, ok)
	require.Len(t, parts, 3)

	text := parts[0].(map[string]interface{})
	assert.Equal(t, "text", text["type"])
	assert.Equal(t, "look at these", text["text"])

	// image order must follow caller order
	first := parts[1].(map[string]interface{})["image_url"].(map[string]interface{})
	second := parts[2].(map[string]interface{})["image_url"].(map[string]interface{})
	assert.Equal(t, images[0], first["url"])
	assert.Equal(t, images[1], second["url"])
	assert.Equal(t, "low", first["detail"])
}

func TestOpenAIMessagesHighRes(t *testing.T) {
	messages := OpenAIMessages("", "u", []string{"data:image/jpeg;base64,aaaa"}, false)

	raw, err := json.Marshal(messages[1])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"detail":"low"`)
}

func TestOpenAIMessagesTruncatesUser(t *testing.T) {
	messages := OpenAIMessages("", strings.Repeat("y", 50000), nil, true)

	raw, err := json.Marshal(messages[1])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded["content"], 40000)
}

func TestOpenAIMessagesTruncatesByCharacters(t *testing.T) {
	messages := OpenAIMessages("", strings.Repeat("م", 50000), nil, true)

	raw, err := json.Marshal(messages[1])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	content := decoded["content"].(string)
	assert.Equal(t, 40000, utf8.RuneCountInString(content))
	assert.True(t, utf8.ValidString(content))
}

func TestGeminiParts(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("jpegbytes"))
	parts := GeminiParts("sys", "user", []string{payload})
	require.Len(t, parts, 3)

	assert.Equal(t, "sys", parts[0].Text)
	assert.Equal(t, "user", parts[1].Text)
	require.NotNil(t, parts[2].InlineData)
	assert.Equal(t, "image/jpeg", parts[2].InlineData.MIMEType)
	assert.Equal(t, []byte("jpegbytes"), parts[2].InlineData.Data)
}

func TestGeminiPartsNoSystem(t *testing.T) {
	parts := GeminiParts("", "user only", nil)
	require.Len(t, parts, 1)
	assert.Equal(t, "user only", parts[0].Text)
}

func TestFlattenText(t *testing.T) {
	assert.Equal(t, "sys\nuser", FlattenText("sys", "user"))
	assert.Equal(t, "user", FlattenText("", "user"))

	long := FlattenText("", strings.Repeat("z", 40000))
	assert.Len(t, long, 30000)

	persian := FlattenText("", strings.Repeat("م", 40000))
	assert.Equal(t, 30000, utf8.RuneCountInString(persian))
	assert.True(t, utf8.ValidString(persian))
}
