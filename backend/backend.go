package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"meshassist/config"
	"meshassist/metrics"
)

// ConverseAPI is the part of the Bedrock runtime client the assistant uses.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Settings are the per-call parameters sent with every request.
type Settings struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
	Timeout     time.Duration
}

// SettingsFromConfig extracts call settings from the loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		ModelID:     cfg.Bedrock.ModelID,
		MaxTokens:   cfg.Inference.MaxTokens,
		Temperature: cfg.Inference.Temperature,
		TopP:        cfg.Inference.TopP,
		Timeout:     cfg.Bedrock.Timeout,
	}
}

// Client sends single-turn conversations to the inference service.
// It is built once per process and is safe for concurrent use.
type Client struct {
	api      ConverseAPI
	settings Settings
}

// NewClient creates a Client around an existing Converse implementation.
func NewClient(api ConverseAPI, settings Settings) *Client {
	return &Client{
		api:      api,
		settings: settings,
	}
}

// NewBedrockClient creates a Client backed by the AWS SDK, resolving
// credentials from the default chain.
func NewBedrockClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Bedrock.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Bedrock.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	runtime := bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
		if cfg.Bedrock.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Bedrock.Endpoint)
		}
	})
	return NewClient(runtime, SettingsFromConfig(cfg)), nil
}

// ModelID returns the model every call is sent to.
func (c *Client) ModelID() string {
	return c.settings.ModelID
}

// Complete sends the system instruction and one user message and returns the
// text of the first content block of the reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, *ServiceError) {
	ctx, cancel := context.WithTimeout(ctx, c.settings.Timeout)
	defer cancel()

	start := time.Now()
	out, err := c.api.Converse(ctx, c.input(system, user))
	metrics.InferenceLatency.WithLabelValues(c.settings.ModelID).Observe(time.Since(start).Seconds())

	if err != nil {
		svcErr := classify(err)
		c.record(string(svcErr.Kind))
		return "", svcErr
	}

	text, svcErr := firstText(out)
	if svcErr != nil {
		c.record(string(svcErr.Kind))
		return "", svcErr
	}

	if out.Usage != nil {
		if out.Usage.InputTokens != nil {
			metrics.InferenceTokensTotal.WithLabelValues(c.settings.ModelID, "input").Add(float64(*out.Usage.InputTokens))
		}
		if out.Usage.OutputTokens != nil {
			metrics.InferenceTokensTotal.WithLabelValues(c.settings.ModelID, "output").Add(float64(*out.Usage.OutputTokens))
		}
	}
	c.record("success")
	return text, nil
}

func (c *Client) input(system, user string) *bedrockruntime.ConverseInput {
	return &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.settings.ModelID),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: system},
		},
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: user},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.settings.MaxTokens),
			Temperature: aws.Float32(c.settings.Temperature),
			TopP:        aws.Float32(c.settings.TopP),
		},
	}
}

func (c *Client) record(result string) {
	metrics.InferenceRequestsTotal.WithLabelValues(c.settings.ModelID, result).Inc()
}

// firstText pulls the first text block out of a Converse reply.
func firstText(out *bedrockruntime.ConverseOutput) (string, *ServiceError) {
	if out == nil {
		return "", NewServiceError(ErrorKindMalformedReply, errors.New("empty converse output"))
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", NewServiceError(ErrorKindMalformedReply, fmt.Errorf("unexpected output type %T", out.Output))
	}
	if len(msg.Value.Content) == 0 {
		return "", NewServiceError(ErrorKindMalformedReply, errors.New("reply message has no content"))
	}
	block, ok := msg.Value.Content[0].(*types.ContentBlockMemberText)
	if !ok {
		return "", NewServiceError(ErrorKindMalformedReply, fmt.Errorf("first content block is %T, not text", msg.Value.Content[0]))
	}
	return block.Value, nil
}
