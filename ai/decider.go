package ai

import (
	"context"

	"github.com/NethermindEth/magi/core"
)

// Decider asks a language model to play the council.
type Decider struct {
	llm    LLM
	policy RetryPolicy
}

// NewDecider wraps llm with the given retry policy.
func NewDecider(llm LLM, policy RetryPolicy) *Decider {
	return &Decider{llm: llm, policy: policy}
}

// Decide returns the model's verdict on proposal.
func (d *Decider) Decide(ctx context.Context, proposal string) (core.Verdict, error) {
	return Deliberate(ctx, d.llm, proposal, d.policy)
}

// Deliberate prompts llm with the council instructions and parses its reply.
// Malformed replies are not retried; only errors accepted by the policy are.
func Deliberate(ctx context.Context, llm LLM, proposal string, policy RetryPolicy) (core.Verdict, error) {
	var verdict core.Verdict
	err := Retry(ctx, policy, func(ctx context.Context) error {
		text, err := llm.Generate(ctx, DeliberationPrompt(proposal))
		if err != nil {
			return err
		}
		verdict, err = ParseVerdict(text)
		return err
	})
	if err != nil {
		return core.Verdict{}, err
	}
	return verdict, nil
}
