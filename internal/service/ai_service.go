package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"

	"github.com/santhosh-tekuri/jsonschema/v6"
	openai "github.com/sashabaranov/go-openai"
)

const evaluationSchemaURL = "schema://answer-evaluation.json"

// evaluationSchema 只强制 score 为数字，取值范围在 BuildRecord 中校验
const evaluationSchema = `{
	"type": "object",
	"required": ["score"],
	"properties": {
		"score": {"type": "number"},
		"feedback": {"type": "string"},
		"strengths": {"type": "array", "items": {"type": "string"}},
		"suggestions": {"type": "array", "items": {"type": "string"}},
		"sentiment": {"type": "string"},
		"confidenceLevel": {"type": "string"},
		"categories": {
			"type": "object",
			"properties": {
				"technical": {"type": "number"},
				"communication": {"type": "number"},
				"behavioral": {"type": "number"},
				"problemSolving": {"type": "number"},
				"confidence": {"type": "number"}
			}
		}
	}
}`

const evaluatorSystemPrompt = "You are an experienced interviewer. Evaluate the candidate's answer and reply with a single JSON object only."

// chatEvaluation 模型返回的 JSON 结构
type chatEvaluation struct {
	Score           *float64 `json:"score"`
	Feedback        string   `json:"feedback"`
	Strengths       []string `json:"strengths"`
	Suggestions     []string `json:"suggestions"`
	Sentiment       string   `json:"sentiment"`
	ConfidenceLevel string   `json:"confidenceLevel"`
	Categories      struct {
		Technical      *float64 `json:"technical"`
		Communication  *float64 `json:"communication"`
		Behavioral     *float64 `json:"behavioral"`
		ProblemSolving *float64 `json:"problemSolving"`
		Confidence     *float64 `json:"confidence"`
	} `json:"categories"`
}

// ChatEvaluator 通过 OpenAI 兼容的 chat completions 接口评估回答
type ChatEvaluator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	schema  *jsonschema.Schema
}

func NewChatEvaluator(cfg config.AIConfig) (*ChatEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai.api_key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	schema, err := compileEvaluationSchema()
	if err != nil {
		return nil, err
	}

	return &ChatEvaluator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		schema:  schema,
	}, nil
}

func compileEvaluationSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(evaluationSchema))
	if err != nil {
		return nil, fmt.Errorf("parse evaluation schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(evaluationSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add evaluation schema: %w", err)
	}
	return c.Compile(evaluationSchemaURL)
}

func (e *ChatEvaluator) Evaluate(ctx context.Context, req EvaluationRequest) (*model.Evaluation, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: evaluatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildEvaluationPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrEvaluatorUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", util.ErrEvaluatorUnavailable)
	}

	return e.parse(resp.Choices[0].Message.Content)
}

func (e *ChatEvaluator) parse(content string) (*model.Evaluation, error) {
	content = stripCodeFence(content)

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(content))
	if err != nil {
		return nil, util.IncompleteRecord(fmt.Sprintf("evaluator returned invalid JSON: %v", err))
	}
	if err := e.schema.Validate(doc); err != nil {
		return nil, util.IncompleteRecord(fmt.Sprintf("evaluator response failed validation: %v", err))
	}

	var out chatEvaluation
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, util.IncompleteRecord(err.Error())
	}

	behavioral := out.Categories.Behavioral
	if behavioral == nil {
		behavioral = out.Categories.ProblemSolving
	}

	return &model.Evaluation{
		Score:           out.Score,
		Communication:   out.Categories.Communication,
		Technical:       out.Categories.Technical,
		Behavioral:      behavioral,
		Confidence:      out.Categories.Confidence,
		ConfidenceLevel: model.ConfidenceLevel(strings.ToLower(out.ConfidenceLevel)),
		Strengths:       out.Strengths,
		Improvements:    out.Suggestions,
		Sentiment:       model.Sentiment(strings.ToLower(out.Sentiment)),
		Feedback:        out.Feedback,
	}, nil
}

func buildEvaluationPrompt(req EvaluationRequest) string {
	jobTitle := req.JobTitle
	if jobTitle == "" {
		jobTitle = "Software Engineer"
	}
	category := req.Category
	if category == "" {
		category = model.CategoryGeneral
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate this interview answer for a %s position.\n\n", jobTitle)
	fmt.Fprintf(&b, "Question: %s\n", req.Question)
	fmt.Fprintf(&b, "Question Category: %s\n", category)
	fmt.Fprintf(&b, "Candidate's Answer: %s\n\n", req.Answer)
	b.WriteString(`Respond with JSON of this shape:
{
  "score": 0-100,
  "feedback": "detailed feedback on the answer",
  "strengths": ["what the candidate did well"],
  "suggestions": ["specific improvement suggestions"],
  "sentiment": "positive|neutral|negative",
  "confidenceLevel": "low|medium|high",
  "categories": {
    "technical": 0-100,
    "communication": 0-100,
    "behavioral": 0-100,
    "confidence": 0-100
  }
}

Consider technical accuracy for technical questions, communication clarity and structure,
problem-solving approach, confidence, relevance and completeness.`)
	return b.String()
}

// stripCodeFence 部分模型会把 JSON 包在 ``` 中
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
