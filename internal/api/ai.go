package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ufilesorg/promptly/internal/engine"
	"github.com/ufilesorg/promptly/internal/imaging"
	"github.com/ufilesorg/promptly/internal/llm"
	"github.com/ufilesorg/promptly/internal/models"
	"github.com/ufilesorg/promptly/internal/prompt"
	"github.com/ufilesorg/promptly/internal/services"
	"github.com/ufilesorg/promptly/internal/strapi"
)

// answer handles POST /ai/:key
func (s *Server) answer(c *gin.Context) {
	key := c.Param("key")

	var req models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	answer, err := s.answers.AnswerWithAI(c.Request.Context(), key, services.AnswerOptions{
		Engine:      req.Engine,
		Variables:   req.Data,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		s.answerError(c, err)
		return
	}

	s.successResponse(c, answer)
}

// visionAnswer handles POST /ai/vision/:key
func (s *Server) visionAnswer(c *gin.Context) {
	key := c.Param("key")

	var req models.VisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if len(req.ImageURLs) == 0 {
		s.errorResponse(c, http.StatusBadRequest, "image_urls must not be empty")
		return
	}

	answer, err := s.answers.AnswerWithAI(c.Request.Context(), key, services.AnswerOptions{
		Engine:      req.Engine,
		ImageURLs:   req.ImageURLs,
		Variables:   req.Data,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		HighRes:     req.HighRes,
	})
	if err != nil {
		s.answerError(c, err)
		return
	}

	s.successResponse(c, answer)
}

// translate handles POST /ai/translate
func (s *Server) translate(c *gin.Context) {
	var req models.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	text, answer, err := s.translator.Translate(c.Request.Context(),
		req.Text, services.Language(req.TargetLanguage), req.Data)
	if err != nil {
		s.answerError(c, err)
		return
	}

	if answer == nil {
		s.successResponse(c, models.TranslateResponse{Text: text, Translated: false})
		return
	}
	s.successResponse(c, models.TranslateResponse{Translated: true, Answer: answer})
}

// search handles POST /ai/search
func (s *Server) search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if len(req.Keys) == 0 {
		s.errorResponse(c, http.StatusBadRequest, "keys must not be empty")
		return
	}

	templates, err := s.answers.ListTemplates(c.Request.Context(), req.Keys)
	if err != nil {
		s.errorResponse(c, http.StatusBadGateway, "Failed to search templates: "+err.Error())
		return
	}

	summaries := make([]models.TemplateSummary, len(templates))
	for i, tpl := range templates {
		summaries[i] = models.TemplateSummary{
			Key:       tpl.Key,
			ModelName: tpl.ModelName,
			ImageURL:  tpl.ImageURL,
		}
	}

	s.successResponse(c, summaries)
}

// templateFields handles GET /ai/:key/fields
func (s *Server) templateFields(c *gin.Context) {
	key := c.Param("key")

	fields, err := s.answers.TemplateFields(c.Request.Context(), key)
	if err != nil {
		s.answerError(c, err)
		return
	}

	s.successResponse(c, models.FieldsResponse{Key: key, Fields: fields})
}

// rawAnswer handles POST /ai/raw
func (s *Server) rawAnswer(c *gin.Context) {
	var req models.RawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	answer, err := s.answers.RawAnswer(c.Request.Context(), req.System, req.User, services.AnswerOptions{
		Engine:      req.Engine,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		s.answerError(c, err)
		return
	}

	s.successResponse(c, answer)
}

// answerError maps pipeline errors onto HTTP statuses. Provider failures
// stay opaque to callers; the full detail is already logged.
func (s *Server) answerError(c *gin.Context, err error) {
	var notFound *strapi.TemplateNotFoundError
	if errors.As(err, &notFound) {
		s.errorResponse(c, http.StatusNotFound, "Template not found: "+notFound.Key)
		return
	}

	var missing *prompt.MissingVariableError
	if errors.As(err, &missing) {
		s.errorResponse(c, http.StatusUnprocessableEntity, "Missing variable: "+missing.Variable)
		return
	}

	var unknown *engine.UnknownEngineError
	if errors.As(err, &unknown) {
		s.errorResponse(c, http.StatusBadRequest, "Unknown engine: "+unknown.Name)
		return
	}

	var fetch *imaging.FetchError
	if errors.As(err, &fetch) {
		s.errorResponse(c, http.StatusBadRequest, "Failed to fetch image: "+fetch.URL)
		return
	}

	var provider *llm.ProviderCallError
	if errors.As(err, &provider) {
		s.errorResponse(c, http.StatusBadGateway, "Provider is unavailable, please try again later")
		return
	}

	s.errorResponse(c, http.StatusBadGateway, "Failed to answer: "+err.Error())
}
