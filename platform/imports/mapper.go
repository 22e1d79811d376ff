package imports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// RowMappingAttempts caps how many times one row's mapping call is tried
var RowMappingAttempts = 3

const mapperSystemPrompt = "You are an AI that transforms user data from CSV into a " +
	"structured JSON format for an employee import system."

// RowMapper represents a fallback that can map a raw CSV row to an Employee
type RowMapper interface {
	MapRow(ctx context.Context, row map[string]string) (Employee, error)
}

// completionAPI covers the chat completion operation used by this package
type completionAPI interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

func buildMappingPrompt(row map[string]string) string {
	data, _ := json.Marshal(row)
	return "Transform the following user data to JSON format with 'name' and 'email' as " +
		"mandatory fields. Combine 'firstname' and 'lastname' into 'name' if necessary. " +
		"Include any additional fields as well. The returned JSON MUST follow this structure: " +
		"{'name': 'string', 'role': 'string', 'email': 'user@example.com', 'phoneNumber': 'string'}. " +
		"Transform the provided user data accordingly: " + string(data)
}

// OpenAIRowMapper implements RowMapper on the OpenAI chat completions API
type OpenAIRowMapper struct {
	api   completionAPI
	model openai.ChatModel
}

func NewOpenAIRowMapper(apiKey string, model string) *OpenAIRowMapper {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = openai.ChatModelGPT3_5Turbo
	}

	return &OpenAIRowMapper{
		api:   &client.Chat.Completions,
		model: openai.ChatModel(model),
	}
}

/*
MapRow asks the model to restructure one raw row. Call failures are retried
up to RowMappingAttempts; a completion that is not the demanded JSON shape
fails the row immediately since retrying buys nothing there
*/
func (m *OpenAIRowMapper) MapRow(ctx context.Context, row map[string]string) (Employee, error) {
	var lastErr error
	for attempt := 0; attempt < RowMappingAttempts; attempt++ {
		completion, err := m.api.New(ctx, openai.ChatCompletionNewParams{
			Model: m.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(mapperSystemPrompt),
				openai.UserMessage(buildMappingPrompt(row)),
			},
			MaxTokens:   openai.Int(512),
			Temperature: openai.Float(0.7),
			TopP:        openai.Float(0.9),
		})
		if err != nil {
			lastErr = fmt.Errorf("Failed to call mapping model: %w", err)
			continue
		}

		if len(completion.Choices) == 0 {
			return Employee{}, fmt.Errorf("Invalid data format returned from the model")
		}

		var employee Employee
		if err = json.Unmarshal([]byte(completion.Choices[0].Message.Content), &employee); err != nil {
			return Employee{}, fmt.Errorf("Invalid data format returned from the model")
		}
		return employee, nil
	}
	return Employee{}, lastErr
}
