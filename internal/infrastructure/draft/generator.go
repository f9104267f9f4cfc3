package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"candidatevet/internal/bootstrap/config"
	"candidatevet/internal/bootstrap/logging"
	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

// SectionDraft is the shape every generated section draft follows.
type SectionDraft struct {
	Summary     string   `json:"summary" jsonschema:"description=Two to four sentence overview for the committee"`
	KeyFindings []string `json:"key_findings" jsonschema:"description=Verifiable findings with one per entry"`
	Concerns    []string `json:"concerns,omitempty" jsonschema:"description=Items the committee should probe further"`
	Sources     []string `json:"sources,omitempty" jsonschema:"description=URLs or documents the findings rely on"`
}

var sectionFocus = map[domainvetting.SectionType]string{
	domainvetting.SectionExecutiveSummary:    "a concise overall assessment of the candidate for the endorsement committee",
	domainvetting.SectionCandidateBackground: "the candidate's professional, civic, and political background",
	domainvetting.SectionOpponentResearch:    "the opponents in the race, their records, and how the candidate compares",
	domainvetting.SectionDistrictData:        "the district's demographics and electoral history",
	domainvetting.SectionVotingRules:         "registration deadlines, voting methods, and election dates that apply to the race",
	domainvetting.SectionDigitalPresence:     "the candidate's online presence, reach, and consistency",
	domainvetting.SectionInterviewSummary:    "the committee interview, the candidate's answers, and open follow-ups",
}

const defaultTimeout = 60 * time.Second

type Generator struct {
	client openai.Client
	model  string
	schema string
}

var _ ports.DraftGenerator = (*Generator)(nil)

func NewGenerator(cfg config.DraftConfig) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ports.ErrDraftNotConfigured
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	// A failed completion is reported to the caller, never retried here.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	schema, err := draftSchema()
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		schema: schema,
	}, nil
}

func (g *Generator) GenerateDraft(ctx context.Context, request ports.DraftRequest) (map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	focus, ok := sectionFocus[request.SectionType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domainvetting.ErrInvalidSectionType, request.SectionType)
	}

	contextJSON, err := json.MarshalIndent(request.Context, "", "  ")
	if err != nil {
		return nil, errs.Wrap(err, "encode draft context")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "infrastructure.draft"),
		slog.String("section_type", string(request.SectionType)),
	)
	logging.Info(logCtx, "requesting section draft", slog.String("model", g.model))

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(g.schema)),
			openai.UserMessage(fmt.Sprintf("Write the %s section covering %s.\n\nCase file:\n%s", request.SectionType, focus, contextJSON)),
		},
		Model: openai.ChatModel(g.model),
	})
	if err != nil {
		return nil, errs.Dependency(err, "draft completion")
	}
	if len(completion.Choices) == 0 {
		return nil, errs.Dependency(errors.New("no choices returned"), "draft completion")
	}

	return ParseDraft(completion.Choices[0].Message.Content)
}

// ParseDraft decodes a model reply into a JSON object, tolerating fenced code blocks.
func ParseDraft(content string) (map[string]any, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}

	var draft map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &draft); err != nil {
		return nil, errs.Dependency(err, "decode draft json")
	}
	if draft == nil {
		return nil, errs.Dependency(errors.New("draft is not an object"), "decode draft json")
	}
	return draft, nil
}

func draftSchema() (string, error) {
	reflector := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	schema := reflector.Reflect(&SectionDraft{})
	encoded, err := json.Marshal(schema)
	if err != nil {
		return "", errs.Wrap(err, "encode draft schema")
	}
	return string(encoded), nil
}

func systemPrompt(schema string) string {
	return "You draft research report sections for a candidate endorsement committee. " +
		"Use only facts present in the case file and say so when information is missing. " +
		"Reply with a single JSON object matching this JSON Schema and nothing else:\n" + schema
}

// Disabled stands in when no draft model is configured.
type Disabled struct{}

var _ ports.DraftGenerator = Disabled{}

func (Disabled) GenerateDraft(context.Context, ports.DraftRequest) (map[string]any, error) {
	return nil, ports.ErrDraftNotConfigured
}

// New returns the configured generator, or Disabled when no API key is set.
func New(cfg config.DraftConfig) (ports.DraftGenerator, error) {
	generator, err := NewGenerator(cfg)
	if errors.Is(err, ports.ErrDraftNotConfigured) {
		return Disabled{}, nil
	}
	if err != nil {
		return nil, err
	}
	return generator, nil
}
