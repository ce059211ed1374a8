package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wfmodel "scholar-rec-api/internal/workflow/model"
)

type stubChatModel struct {
	reply string
	err   error
	calls int
}

func (m *stubChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *stubChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("not implemented")
}

type stubFactory struct {
	model *stubChatModel
	err   error
}

func (f *stubFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

func pipelineWith(reply string) *DecisionPipeline {
	return NewDecisionPipeline(&stubFactory{model: &stubChatModel{reply: reply}})
}

func TestCheckScope_ParsesDecision(t *testing.T) {
	p := pipelineWith(`{"in_scope": true, "keywords": ["transformer", "attention"], "reason": "literature request"}`)

	decision, err := p.CheckScope(context.Background(), &wfmodel.DecisionInput{Query: "papers on transformers"})
	require.NoError(t, err)

	assert.True(t, decision.InScope)
	assert.Equal(t, []string{"transformer", "attention"}, decision.Keywords)
	assert.Equal(t, "literature request", decision.Reason)
}

func TestCheckScope_ToleratesWrappedList(t *testing.T) {
	p := pipelineWith(`[{"in_scope": false, "reason": "shopping request"}]`)

	decision, err := p.CheckScope(context.Background(), &wfmodel.DecisionInput{Query: "buy me shoes"})
	require.NoError(t, err)

	assert.False(t, decision.InScope)
	assert.Equal(t, "shopping request", decision.Reason)
}

func TestCheckScope_ToleratesProseAroundJSON(t *testing.T) {
	p := pipelineWith("Sure, here is the decision:\n```json\n{\"in_scope\": true, \"keywords\": [\"crispr\"]}\n```")

	decision, err := p.CheckScope(context.Background(), &wfmodel.DecisionInput{Query: "crispr delivery"})
	require.NoError(t, err)

	assert.True(t, decision.InScope)
	assert.Equal(t, []string{"crispr"}, decision.Keywords)
}

func TestCheckScope_MalformedOutputFailsClosed(t *testing.T) {
	p := pipelineWith("I could not decide, sorry!")

	decision, err := p.CheckScope(context.Background(), &wfmodel.DecisionInput{Query: "anything"})
	require.NoError(t, err)

	assert.False(t, decision.InScope)
	assert.Contains(t, decision.Reason, "not parseable")
}

func TestCheckScope_PropagatesModelError(t *testing.T) {
	p := NewDecisionPipeline(&stubFactory{model: &stubChatModel{err: fmt.Errorf("connection refused")}})

	_, err := p.CheckScope(context.Background(), &wfmodel.DecisionInput{Query: "anything"})
	require.Error(t, err)
}

func TestCheckScope_NilFactory(t *testing.T) {
	_, err := NewDecisionPipeline(nil).CheckScope(context.Background(), &wfmodel.DecisionInput{Query: "q"})
	require.Error(t, err)
}

func TestUnwrapSingletonList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"wrapped object", `[{"a": 1}]`, `{"a": 1}`},
		{"padded", "  [{\"a\": 1}]  ", `{"a": 1}`},
		{"empty list", `[]`, `[]`},
		{"broken list", `[oops`, `[oops`},
		{"not json", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unwrapSingletonList(tt.in))
		})
	}
}

func TestJoinKeywords(t *testing.T) {
	assert.Equal(t, "a, b", joinKeywords([]string{" a ", "", "b"}))
	assert.Equal(t, "", joinKeywords(nil))
}
