package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ayushsingh08-ds/Zephra/internal/logger"
	"github.com/ayushsingh08-ds/Zephra/internal/models"
)

const systemPrompt = `You are an air quality analyst writing a short public advisory.
You receive a 24-hour AQI forecast with its category band and recent pollutant readings.
Write 2-3 plain-language paragraphs: what the forecast means, who should take care,
and any practical advice for the day. Do not invent numbers that are not in the input.`

// OpenAIClient produces a narrative summary of a forecast via the chat
// completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

// NewOpenAIClient creates a narrative client. An empty API key returns
// nil, which callers treat as narrative generation disabled.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if apiKey == "" {
		return nil
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    logger.GetGlobalLogger().WithComponent("llm"),
	}
}

// GenerateNarrative asks the model for an advisory paragraph for the
// given forecast and recent measurements.
func (c *OpenAIClient) GenerateNarrative(ctx context.Context, location string, forecast *models.Forecast, recent []models.Measurement) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("narrative client not configured")
	}

	prompt := buildPrompt(location, forecast, recent)

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   800,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	narrative := resp.Choices[0].Message.Content
	c.log.Infof("generated narrative with %d characters", len(narrative))
	return narrative, nil
}

func buildPrompt(location string, forecast *models.Forecast, recent []models.Measurement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s\n", location)
	fmt.Fprintf(&b, "Forecast for %s: AQI %.0f (%s)\n",
		forecast.ForecastTimestamp.Format("Jan 2 15:04 MST"), forecast.PredictedAQI, forecast.Category)
	fmt.Fprintf(&b, "Standing guidance for this band: %s\n", forecast.HealthMessage)
	if ci := forecast.ConfidenceInterval; ci != nil {
		fmt.Fprintf(&b, "95%% confidence interval: %.0f to %.0f\n", ci.Lower, ci.Upper)
	}

	if len(recent) > 0 {
		latest := recent[len(recent)-1]
		b.WriteString("Most recent readings:\n")
		for _, field := range []string{models.FieldAQI, models.FieldPM25, models.FieldPM10, models.FieldNO2, models.FieldO3} {
			if v, ok := latest.Value(field); ok {
				fmt.Fprintf(&b, "  %s: %.1f\n", field, v)
			}
		}
	}
	return b.String()
}
