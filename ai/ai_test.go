package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/magi/ai/aitest"
	"github.com/NethermindEth/magi/core"
)

const approveReply = `{
  "isValid": true,
  "votes": {
    "melchior": {"vote": true, "reason": "과학적으로 타당함"},
    "balthasar": {"vote": true, "reason": "인류에게 안전함"},
    "casper": {"vote": false, "reason": "마음에 들지 않음"}
  }
}`

func fastPolicy(retryIf func(error) bool) RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond, RetryIf: retryIf}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare", `{"isValid":false}`, `{"isValid":false}`},
		{"code fence", "```json\n{\"isValid\":false}\n```", `{"isValid":false}`},
		{"prose", "Here is my answer: {\"a\":{\"b\":1}} hope this helps", `{"a":{"b":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, input := range []string{"", "no json here", "} backwards {"} {
		_, err := ExtractJSON(input)
		assert.ErrorIs(t, err, ErrInvalidFormat, "input %q", input)
	}
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict("```json\n" + approveReply + "\n```")
	require.NoError(t, err)
	require.True(t, v.IsValid)
	assert.True(t, v.Votes.Melchior.Vote)
	assert.False(t, v.Votes.Casper.Vote)
	assert.Equal(t, "마음에 들지 않음", v.Votes.Casper.Reason)

	v, err = ParseVerdict(`{"isValid": false, "errorMessage": "단순 인사입니다", "votes": {}}`)
	require.NoError(t, err)
	assert.False(t, v.IsValid)
	assert.Nil(t, v.Votes)
	assert.Equal(t, "단순 인사입니다", v.ErrorMessage)

	_, err = ParseVerdict(`{"isValid": true}`)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ParseVerdict(`{"isValid": "yes"}`)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestRetryOverloadThenSuccess(t *testing.T) {
	llm := aitest.NewMockLLM(
		aitest.Fail(ErrOverloaded),
		aitest.Fail(fmt.Errorf("%w: try later", ErrOverloaded)),
		aitest.Text(approveReply),
	)

	var retries []int
	policy := fastPolicy(IsOverloaded)
	policy.OnRetry = func(attempt, maxAttempts int, err error) {
		assert.Equal(t, 3, maxAttempts)
		retries = append(retries, attempt)
	}

	v, err := Deliberate(context.Background(), llm, "deploy unit 01", policy)
	require.NoError(t, err)
	assert.True(t, v.IsValid)
	assert.Equal(t, 3, llm.Calls())
	assert.Equal(t, []int{1, 2}, retries)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	llm := aitest.NewMockLLM(aitest.Fail(ErrOverloaded))

	_, err := Deliberate(context.Background(), llm, "deploy unit 01", fastPolicy(IsOverloaded))
	assert.ErrorIs(t, err, ErrOverloaded)
	assert.Equal(t, 3, llm.Calls())
}

func TestRetrySkipsOtherErrors(t *testing.T) {
	boom := errors.New("API ERROR: 400 bad request")
	llm := aitest.NewMockLLM(aitest.Fail(boom), aitest.Text(approveReply))

	_, err := Deliberate(context.Background(), llm, "deploy unit 01", fastPolicy(IsOverloaded))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, llm.Calls())
}

func TestRetryDoesNotRepeatMalformedReplies(t *testing.T) {
	llm := aitest.NewMockLLM(aitest.Text("I cannot decide"), aitest.Text(approveReply))

	_, err := Deliberate(context.Background(), llm, "deploy unit 01", fastPolicy(IsOverloaded))
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Equal(t, 1, llm.Calls())
}

func TestRetryAlways(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(Always), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("REPORT GENERATION FAILED")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryLinearBackoffHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Hour, RetryIf: Always}
	calls := 0
	err := Retry(ctx, policy, func(context.Context) error {
		calls++
		return ErrOverloaded
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestDeliberationPrompt(t *testing.T) {
	llm := aitest.NewMockLLM(aitest.Text(approveReply))
	d := NewDecider(llm, fastPolicy(IsOverloaded))

	_, err := d.Decide(context.Background(), "should we evacuate tokyo-3")
	require.NoError(t, err)

	prompts := llm.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "You are the MAGI System supercomputer.")
	assert.Contains(t, prompts[0], "\n\nUser Input: should we evacuate tokyo-3")
}

func TestReportPrompt(t *testing.T) {
	p := ReportPrompt("should we evacuate tokyo-3", "UNANIMOUS APPROVAL")
	assert.Contains(t, p, `Proposal: "should we evacuate tokyo-3"`)
	assert.Contains(t, p, `Decision: "UNANIMOUS APPROVAL"`)
	assert.Contains(t, p, "MISSION OBJECTIVE")
}

func TestNewLLMWithoutKey(t *testing.T) {
	llm, source, err := NewLLM(context.Background(), LLMConfig{Provider: ProviderGemini})
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.Nil(t, llm)
	assert.Equal(t, core.SourceSimulation, source)
}

func TestNewLLMProviders(t *testing.T) {
	llm, source, err := NewLLM(context.Background(), LLMConfig{Provider: ProviderOpenAI, APIKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, llm)
	assert.Equal(t, core.SourceOpenAI, source)

	_, _, err = NewLLM(context.Background(), LLMConfig{Provider: "eliza", APIKey: "k"})
	assert.Error(t, err)
}

func TestOpenAIErrorMapping(t *testing.T) {
	err := openAIError(&openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "overloaded"})
	assert.ErrorIs(t, err, ErrOverloaded)
	assert.True(t, IsOverloaded(err))

	err = openAIError(&openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"})
	assert.False(t, IsOverloaded(err))
	assert.Contains(t, err.Error(), "401")
}
