package oracle

import (
	"context"
	"encoding/json"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"mindgraph-backend/application/ports"
	"mindgraph-backend/application/reconciler"
	pkgerrors "mindgraph-backend/pkg/errors"
)

const systemPrompt = `You extract a knowledge graph from conversation fragments.
Respond with ONLY a JSON object of this exact shape, no prose:
{"nodes":[{"label":"...","category":"input|system|action|output|decision","importance":"small|medium|large","excerpt":"..."}],"edges":[{"source":"<label>","target":"<label>","relationship":"..."}]}
Reference existing concepts by their label instead of re-proposing them.
Propose only concepts and connections actually grounded in the transcript.`

// OpenAIOracle proposes graph deltas via the OpenAI chat completion API.
// The model's output is untrusted: anything that does not parse into the
// expected shape is reported as an external failure, never applied.
type OpenAIOracle struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIOracle creates an OpenAI-backed delta oracle
func NewOpenAIOracle(apiKey, model string, logger *zap.Logger) *OpenAIOracle {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIOracle{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// ProposeDelta implements ports.DeltaOracle
func (o *OpenAIOracle) ProposeDelta(ctx context.Context, transcript []string, summary ports.GraphSummary) (*reconciler.ProposedDelta, error) {
	var prompt strings.Builder
	prompt.WriteString("Transcript so far:\n")
	for _, fragment := range transcript {
		prompt.WriteString("- ")
		prompt.WriteString(fragment)
		prompt.WriteString("\n")
	}
	if len(summary.Labels) > 0 {
		prompt.WriteString("\nExisting concepts:\n")
		for _, label := range summary.Labels {
			prompt.WriteString("- ")
			prompt.WriteString(label)
			prompt.WriteString("\n")
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt.String()},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewExternalError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return nil, pkgerrors.NewExternalError("openai", nil).WithCode("EMPTY_RESPONSE")
	}

	delta, err := parseDelta(resp.Choices[0].Message.Content)
	if err != nil {
		o.logger.Warn("Oracle returned unparseable payload", zap.Error(err))
		return nil, pkgerrors.NewExternalError("openai", err).WithCode("MALFORMED_PAYLOAD")
	}
	return delta, nil
}

// parseDelta unmarshals the model output, tolerating markdown code fences
// around the JSON body.
func parseDelta(content string) (*reconciler.ProposedDelta, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var delta reconciler.ProposedDelta
	if err := json.Unmarshal([]byte(content), &delta); err != nil {
		return nil, err
	}
	if delta.Nodes == nil {
		delta.Nodes = []reconciler.NodeProposal{}
	}
	return &delta, nil
}
