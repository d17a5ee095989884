// Where: internal/infra/awsdeploy/client.go
// What: AWS client for function deployment and trigger reconciliation.
// Why: Encapsulate SDK configuration so regions and credentials stay caller-chosen.
package awsdeploy

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options carries the credential and code-upload settings shared by every
// regional client of one invocation.
type Options struct {
	Profile   string
	AccessKey string
	SecretKey string
	S3Bucket  string
	S3Key     string
}

// lambdaAPI defines the subset of Lambda SDK methods used by this package.
// This interface enables mocking the client in tests.
type lambdaAPI interface {
	GetFunction(ctx context.Context, in *lambdasdk.GetFunctionInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.GetFunctionOutput, error)
	CreateFunction(ctx context.Context, in *lambdasdk.CreateFunctionInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.CreateFunctionOutput, error)
	UpdateFunctionCode(ctx context.Context, in *lambdasdk.UpdateFunctionCodeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.UpdateFunctionCodeOutput, error)
	UpdateFunctionConfiguration(ctx context.Context, in *lambdasdk.UpdateFunctionConfigurationInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.UpdateFunctionConfigurationOutput, error)
	ListEventSourceMappings(ctx context.Context, in *lambdasdk.ListEventSourceMappingsInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.ListEventSourceMappingsOutput, error)
	CreateEventSourceMapping(ctx context.Context, in *lambdasdk.CreateEventSourceMappingInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.CreateEventSourceMappingOutput, error)
	UpdateEventSourceMapping(ctx context.Context, in *lambdasdk.UpdateEventSourceMappingInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.UpdateEventSourceMappingOutput, error)
	DeleteEventSourceMapping(ctx context.Context, in *lambdasdk.DeleteEventSourceMappingInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.DeleteEventSourceMappingOutput, error)
	AddPermission(ctx context.Context, in *lambdasdk.AddPermissionInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.AddPermissionOutput, error)
}

// eventsAPI defines the subset of EventBridge SDK methods used by this package.
type eventsAPI interface {
	PutRule(ctx context.Context, in *eventbridge.PutRuleInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutRuleOutput, error)
	PutTargets(ctx context.Context, in *eventbridge.PutTargetsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutTargetsOutput, error)
}

// s3API defines the subset of S3 SDK methods used for assisted code upload.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client performs the remote deployment operations for one region.
type Client struct {
	lambda lambdaAPI
	events eventsAPI
	s3     s3API
	opts   Options
}

// New constructs a regional deployment client.
func New(ctx context.Context, region string, opts Options) (*Client, error) {
	cfg, err := loadConfig(ctx, region, opts)
	if err != nil {
		return nil, fmt.Errorf("load aws config for %s: %w", region, err)
	}
	return &Client{
		lambda: lambdasdk.NewFromConfig(cfg),
		events: eventbridge.NewFromConfig(cfg),
		s3:     s3.NewFromConfig(cfg),
		opts:   opts,
	}, nil
}

func loadConfig(ctx context.Context, region string, opts Options) (aws.Config, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")
		loadOpts = append(loadOpts, config.WithCredentialsProvider(creds))
	}
	return config.LoadDefaultConfig(ctx, loadOpts...)
}
