package models

// AnswerRequest is the body of POST /ai/:key
type AnswerRequest struct {
	Data        map[string]string `json:"data,omitempty"`
	Engine      string            `json:"engine,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
}

// VisionRequest is the body of POST /ai/vision/:key
type VisionRequest struct {
	Data        map[string]string `json:"data,omitempty"`
	ImageURLs   []string          `json:"image_urls" binding:"required"`
	Engine      string            `json:"engine,omitempty"`
	HighRes     bool              `json:"high_res,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
}

// TranslateRequest is the body of POST /ai/translate
type TranslateRequest struct {
	Text           string            `json:"text" binding:"required"`
	TargetLanguage string            `json:"target_language,omitempty"`
	Data           map[string]string `json:"data,omitempty"`
}

// TranslateResponse carries either the untouched text (when the input
// already is in the target language) or the provider's answer
type TranslateResponse struct {
	Text       string                 `json:"text,omitempty"`
	Translated bool                   `json:"translated"`
	Answer     map[string]interface{} `json:"answer,omitempty"`
}

// SearchRequest is the body of POST /ai/search
type SearchRequest struct {
	Keys []string `json:"keys" binding:"required"`
}

// TemplateSummary is a single search hit
type TemplateSummary struct {
	Key       string `json:"key"`
	ModelName string `json:"model_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// RawRequest is the body of POST /ai/raw
type RawRequest struct {
	System      string   `json:"system,omitempty"`
	User        string   `json:"user" binding:"required"`
	Engine      string   `json:"engine,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// FieldsResponse lists the placeholder names of a template
type FieldsResponse struct {
	Key    string   `json:"key"`
	Fields []string `json:"fields"`
}
