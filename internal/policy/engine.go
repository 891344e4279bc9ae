// Package policy evaluates request policies with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

const (
	DecisionAllow = "allow"
	DecisionBlock = "block"

	MinAdvisorItems = 1
	MaxAdvisorItems = 10
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares the advisor_policy module for evaluation.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.advisor_policy.result"),
		rego.Module("advisor_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate runs the policy and returns the decision and its reason.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "", "", fmt.Errorf("policy produced no result")
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return "", "", fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}
	decision, _ := obj["decision"].(string)
	reason, _ := obj["reason"].(string)
	if decision == "" {
		return "", "", fmt.Errorf("policy result has no decision")
	}
	return decision, reason, nil
}

// CheckAdvisorRequest returns a domain.ErrInvalidInput error when the policy blocks the request.
func (e *Engine) CheckAdvisorRequest(ctx context.Context, patientID string, maxItems, textLen int) error {
	decision, reason, err := e.Evaluate(ctx, map[string]interface{}{
		"patient_id":  patientID,
		"max_items":   maxItems,
		"text_length": textLen,
		"limits": map[string]int{
			"min": MinAdvisorItems,
			"max": MaxAdvisorItems,
		},
	})
	if err != nil {
		return err
	}
	if decision == DecisionBlock {
		return domain.InvalidInputf("%s", reason)
	}
	return nil
}

// DefaultPolicy is the default advisor policy.
const DefaultPolicy = `
package advisor_policy

import rego.v1

default decision := "allow"

default reason := ""

within_limits if {
	input.max_items >= input.limits.min
	input.max_items <= input.limits.max
}

decision := "block" if not within_limits

reason := sprintf("max_items must be between %v and %v", [input.limits.min, input.limits.max]) if not within_limits

result := {"decision": decision, "reason": reason}
`
