package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/ufilesorg/promptly/internal/api"
	"github.com/ufilesorg/promptly/internal/cache"
	"github.com/ufilesorg/promptly/internal/config"
	"github.com/ufilesorg/promptly/internal/engine"
	"github.com/ufilesorg/promptly/internal/imaging"
	"github.com/ufilesorg/promptly/internal/llm"
	"github.com/ufilesorg/promptly/internal/llm/gemini"
	"github.com/ufilesorg/promptly/internal/llm/metisbot"
	"github.com/ufilesorg/promptly/internal/llm/openai"
	"github.com/ufilesorg/promptly/internal/llm/perplexity"
	"github.com/ufilesorg/promptly/internal/prompt"
	"github.com/ufilesorg/promptly/internal/services"
	"github.com/ufilesorg/promptly/internal/strapi"
)

var (
	apiPort    string
	apiHost    string
	corsOrigin string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the Promptly REST API server",
	Long: `Start the Promptly REST API server:
- POST /ai/:key            - Answer with a stored template
- POST /ai/vision/:key     - Answer with images attached
- POST /ai/translate       - Translate between English and Persian
- POST /ai/search          - Search stored templates by key substring
- GET  /ai/:key/fields     - List a template's placeholder names
- POST /ai/raw             - Answer an ad-hoc system/user prompt
- GET  /health             - Health check

The API runs on HTTP (no authentication required for now).`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVarP(&apiPort, "port", "p", "", "Port to run the API server on (overrides config file)")
	apiCmd.Flags().StringVarP(&apiHost, "host", "H", "", "Host to bind the API server to (overrides config file)")
	apiCmd.Flags().StringVarP(&corsOrigin, "cors-origin", "c", "", "CORS origin to allow (overrides config file, use '*' for all origins)")
}

func runAPI(cmd *cobra.Command, args []string) error {
	if apiHost != "" {
		cfg.Server.Host = apiHost
	}
	if apiPort != "" {
		cfg.Server.Port = apiPort
	}
	if corsOrigin != "" {
		cfg.Server.CORSOrigin = corsOrigin
	}

	if cfg.Strapi.URL == "" {
		return fmt.Errorf("no template store configured: set strapi.url in the config file or the STRAPI_URL environment variable")
	}
	if config.StrapiToken() == "" {
		return fmt.Errorf("STRAPI_TOKEN environment variable is not set")
	}

	store := strapi.New(cfg.Strapi.URL, config.StrapiToken(), cfg.Strapi.TemplateTTL.Std())

	dispatcher := llm.NewDispatcher(map[engine.Family]llm.Provider{
		engine.FamilyOpenAI:     openai.New(),
		engine.FamilyGemini:     gemini.New(),
		engine.FamilyPerplexity: perplexity.New(),
		engine.FamilyMetisBot:   metisbot.New(),
	})

	answers := cache.NewAnswers()
	answerService := services.NewAnswerService(
		prompt.New(store), store, imaging.NewEncoder(), dispatcher, answers, cfg.Cache.AnswerTTL.Std())
	translateService := services.NewTranslateService(answerService)

	// Sweep expired answers in the background so the map does not grow
	// without bound between restarts.
	janitor := cron.New()
	if _, err := janitor.AddFunc(cfg.Cache.SweepSchedule, func() {
		answers.Sweep()
	}); err != nil {
		return fmt.Errorf("invalid cache sweep schedule %q: %w", cfg.Cache.SweepSchedule, err)
	}
	janitor.Start()
	defer janitor.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cfg, answerService, translateService)

	fmt.Printf("Starting Promptly API server on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
	return server.Run(ctx)
}
