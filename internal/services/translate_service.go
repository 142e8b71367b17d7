package services

import (
	"context"

	"github.com/abadojack/whatlanggo"

	"github.com/ufilesorg/promptly/internal/llm"
	"github.com/ufilesorg/promptly/internal/logger"
)

// Language is a supported translation target
type Language string

const (
	LanguageEnglish Language = "English"
	LanguagePersian Language = "Persian"
)

// translateKey is the reserved template key for the translation prompt
const translateKey = "translate"

// valid reports whether the language is a supported target
func (l Language) valid() bool {
	return l == LanguageEnglish || l == LanguagePersian
}

// TranslateService is a thin policy layer over the answer pipeline
type TranslateService struct {
	answers *AnswerService
}

// NewTranslateService creates a new translation service
func NewTranslateService(answers *AnswerService) *TranslateService {
	return &TranslateService{answers: answers}
}

// Translate detects the source language of text and, when it already
// matches the target, returns the text unchanged without touching any
// provider. Otherwise it runs the pipeline with the reserved translate
// template. The second return value is nil on the short-circuit path.
func (s *TranslateService) Translate(ctx context.Context, text string, target Language, vars map[string]string) (string, llm.Answer, error) {
	if !target.valid() {
		target = LanguageEnglish
	}

	if detectLanguage(text) == target {
		return text, nil, nil
	}

	variables := make(map[string]string, len(vars)+2)
	for k, v := range vars {
		variables[k] = v
	}
	variables["text"] = text
	variables["target_language"] = string(target)

	answer, err := s.answers.AnswerWithAI(ctx, translateKey, AnswerOptions{Variables: variables})
	if err != nil {
		return "", nil, err
	}
	return "", answer, nil
}

// detectLanguage maps detection output onto the supported enumeration,
// assuming English when detection fails
func detectLanguage(text string) Language {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return LanguageEnglish
	}

	switch info.Lang {
	case whatlanggo.Pes:
		return LanguagePersian
	case whatlanggo.Eng:
		return LanguageEnglish
	default:
		// neither supported language; report the detection verbatim so
		// the equality check against the target fails and we translate
		logger.Debug("detected language %s for translation input", whatlanggo.LangToString(info.Lang))
		return Language(whatlanggo.LangToString(info.Lang))
	}
}
