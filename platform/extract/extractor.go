package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is used when no model is configured
const DefaultModel = openai.ChatModelGPT3_5Turbo

/*
ExpenseFields holds the structured values the model pulls out of one receipt.
JSON tags use the capitalized wire names the extraction prompt asks for
*/
type ExpenseFields struct {
	Profile                    string `json:"Profile"`
	BusinessPurposeDescription string `json:"Business_purpose_description"`
	ExpenseCountry             string `json:"Expense_country"`
	ReceiptsCurrency           string `json:"Receipts_currency"`
	TotalAmount                string `json:"Total_amount"`
	PaymentDate                string `json:"Payment_date"`
	PaymentMethod              string `json:"Payment_method"`
	NumberOfParticipants       string `json:"Number_of_participants"`
	Category                   string `json:"Category"`
}

// FieldExtractor represents anything that can turn receipt text into expense fields
type FieldExtractor interface {
	ExtractFields(ctx context.Context, fileName string, receiptText string) (ExpenseFields, error)
}

// completionAPI covers the chat completion operation used by this package
type completionAPI interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIExtractor implements FieldExtractor on the OpenAI chat completions API
type OpenAIExtractor struct {
	api   completionAPI
	model openai.ChatModel
}

func NewOpenAIExtractor(apiKey string, model string) *OpenAIExtractor {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIExtractor{
		api:   &client.Chat.Completions,
		model: openai.ChatModel(model),
	}
}

func (e *OpenAIExtractor) ExtractFields(ctx context.Context, fileName string, receiptText string) (ExpenseFields, error) {
	completion, err := e.api.New(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildExtractionPrompt(fileName, receiptText)),
		},
		MaxTokens:   openai.Int(4096),
		Temperature: openai.Float(0.7),
		TopP:        openai.Float(0.9),
	})
	if err != nil {
		return ExpenseFields{}, fmt.Errorf("Failed to generate expense fields: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return ExpenseFields{}, fmt.Errorf("The model's response was empty")
	}
	return decodeFields(completion.Choices[0].Message.Content)
}

func decodeFields(completion string) (ExpenseFields, error) {
	raw, err := salvageJSON(completion)
	if err != nil {
		return ExpenseFields{}, err
	}

	var fields ExpenseFields
	if err = json.Unmarshal([]byte(raw), &fields); err != nil {
		return ExpenseFields{}, fmt.Errorf("The model's response could not be parsed as JSON: %w", err)
	}
	return fields, nil
}
