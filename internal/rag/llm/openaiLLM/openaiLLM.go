package openaiLLM

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/llm"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config of an OpenAI compatible chat endpoint (OpenAI itself, Groq, ...).
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// StrictSchema sends the schema as a json_schema response format. Endpoints
	// without structured output support get json_object mode instead and rely on
	// the schema described in the prompt.
	StrictSchema bool
}

type llmClient struct {
	api    openai.Client
	conf   Config
	logger *logger_i.Logger
}

func NewOpenAIClient(conf Config, httpClient *http.Client) llm.Provider {
	opts := []option.RequestOption{option.WithAPIKey(conf.APIKey)}
	if conf.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(conf.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &llmClient{
		api:    openai.NewClient(opts...),
		conf:   conf,
		logger: logger_i.NewLogger("llm_openai").With("model", conf.Model),
	}
}

func (c *llmClient) Invoke(ctx context.Context, prompt string, opts llm.InvokeOptions) (llm.Response, error) {
	log := c.logger.ForContext(ctx)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_openai", time.Since(start)) }()

	completion, err := c.api.Chat.Completions.New(ctx, c.params(prompt, opts))
	if err != nil {
		log.Error("Chat completion failed", "error", err)
		return llm.Response{}, err
	}
	if len(completion.Choices) == 0 {
		return llm.Response{}, errors.New("chat completion returned no choices")
	}
	return llm.Response{Content: completion.Choices[0].Message.Content}, nil
}

func (c *llmClient) params(prompt string, opts llm.InvokeOptions) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.conf.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(opts.Temperature)),
	}
	if opts.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(opts.MaxOutputTokens))
	}

	if opts.Schema == nil {
		return params
	}
	if c.conf.StrictSchema {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   opts.Schema.Name,
					Schema: opts.Schema.JSONSchema(),
					Strict: openai.Bool(true),
				},
			},
		}
	} else {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}
