package imports

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
)

// mockCompletionAPI is a testing mock for completionAPI scripting one reply per call
type mockCompletionAPI struct {
	replies    []string
	errs       []error
	calls      int
	lastParams openai.ChatCompletionNewParams
}

func (m *mockCompletionAPI) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.lastParams = body
	call := m.calls
	m.calls++

	if call < len(m.errs) && m.errs[call] != nil {
		return nil, m.errs[call]
	}

	reply := ""
	if call < len(m.replies) {
		reply = m.replies[call]
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: reply}},
		},
	}, nil
}

func TestBuildMappingPrompt(t *testing.T) {
	prompt := buildMappingPrompt(map[string]string{"contact": "Bob Jones"})

	assert.Contains(t, prompt, "'name': 'string'", "prompt is missing the demanded structure")
	assert.Contains(t, prompt, "\"contact\":\"Bob Jones\"", "prompt does not carry the raw row")
	if !strings.Contains(prompt, "mandatory fields") {
		t.Fatal("prompt is missing the mandatory field instruction")
	}
}

func TestOpenAIRowMapperMapsRow(t *testing.T) {
	api := &mockCompletionAPI{
		replies: []string{`{"name": "Test User", "email": "test@example.com", "role": "employee", "phoneNumber": "123456789"}`},
	}
	mapper := &OpenAIRowMapper{api: api, model: openai.ChatModelGPT3_5Turbo}

	employee, err := mapper.MapRow(context.Background(), map[string]string{"raw_field1": "value1"})
	if err != nil {
		t.Fatalf("failed to map row: %v", err)
	}

	assert.Equal(t, employee.Name, "Test User", "wrong name mapped")
	assert.Equal(t, employee.Email, "test@example.com", "wrong email mapped")
	assert.Equal(t, api.lastParams.MaxTokens.Value, int64(512), "wrong token limit requested")
	assert.Equal(t, api.calls, 1, "successful mapping should take one call")
}

func TestOpenAIRowMapperInvalidJSONFailsFast(t *testing.T) {
	api := &mockCompletionAPI{replies: []string{"Not JSON"}}
	mapper := &OpenAIRowMapper{api: api, model: openai.ChatModelGPT3_5Turbo}

	if _, err := mapper.MapRow(context.Background(), map[string]string{"a": "b"}); err == nil {
		t.Fatal("expected an error for a non-JSON completion")
	}
	assert.Equal(t, api.calls, 1, "a malformed completion must not be retried")
}

func TestOpenAIRowMapperRetriesCallFailures(t *testing.T) {
	api := &mockCompletionAPI{
		errs:    []error{fmt.Errorf("throttled"), fmt.Errorf("throttled"), nil},
		replies: []string{"", "", `{"name": "Late Arrival", "email": "late@example.com"}`},
	}
	mapper := &OpenAIRowMapper{api: api, model: openai.ChatModelGPT3_5Turbo}

	employee, err := mapper.MapRow(context.Background(), map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("mapping should succeed within the retry budget: %v", err)
	}
	assert.Equal(t, employee.Name, "Late Arrival", "wrong employee mapped after retries")
	assert.Equal(t, api.calls, 3, "expected two retries before success")
}

func TestOpenAIRowMapperExhaustsRetries(t *testing.T) {
	api := &mockCompletionAPI{
		errs: []error{fmt.Errorf("down"), fmt.Errorf("down"), fmt.Errorf("down")},
	}
	mapper := &OpenAIRowMapper{api: api, model: openai.ChatModelGPT3_5Turbo}

	if _, err := mapper.MapRow(context.Background(), map[string]string{"a": "b"}); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	assert.Equal(t, api.calls, RowMappingAttempts, "wrong number of attempts made")
}
