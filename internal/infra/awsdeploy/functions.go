// Where: internal/infra/awsdeploy/functions.go
// What: Function create/update operations.
// Why: Map the synthesized configuration to SDK calls without losing field absence.
package awsdeploy

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/skiffhq/skiff-cli/internal/domain/function"
)

// FunctionExists probes for the function in the region. A not-found
// response is a regular answer, not an error.
func (c *Client) FunctionExists(ctx context.Context, name string) (bool, error) {
	_, err := c.lambda.GetFunction(ctx, &lambdasdk.GetFunctionInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get function %s: %w", name, err)
	}
	return true, nil
}

// CreateFunction creates the function with its full configuration and code
// in one call and returns the new function arn.
func (c *Client) CreateFunction(ctx context.Context, cfg function.Config, payload []byte) (string, error) {
	code, err := c.codeSource(ctx, cfg.Name, payload)
	if err != nil {
		return "", err
	}

	out, err := c.lambda.CreateFunction(ctx, &lambdasdk.CreateFunctionInput{
		FunctionName:     aws.String(cfg.Name),
		Role:             aws.String(cfg.Role),
		Handler:          aws.String(cfg.Handler),
		Runtime:          lambdatypes.Runtime(cfg.Runtime),
		MemorySize:       aws.Int32(cfg.MemorySize),
		Timeout:          aws.Int32(cfg.Timeout),
		Code:             code,
		PackageType:      lambdatypes.PackageTypeZip,
		Publish:          cfg.Publish,
		Description:      mapDescription(cfg),
		Environment:      mapEnvironment(cfg),
		VpcConfig:        mapVpcConfig(cfg),
		DeadLetterConfig: mapDeadLetterConfig(cfg),
		TracingConfig:    mapTracingConfig(cfg),
	})
	if err != nil {
		return "", fmt.Errorf("create function %s: %w", cfg.Name, err)
	}
	return aws.ToString(out.FunctionArn), nil
}

// UpdateFunctionCode replaces the function's code and returns the function
// arn, publishing a version when requested.
func (c *Client) UpdateFunctionCode(ctx context.Context, name string, payload []byte, publish bool) (string, error) {
	in := &lambdasdk.UpdateFunctionCodeInput{
		FunctionName: aws.String(name),
		Publish:      publish,
	}
	if c.opts.S3Bucket == "" {
		in.ZipFile = payload
	} else {
		bucket, key, err := c.uploadPayload(ctx, name, payload)
		if err != nil {
			return "", err
		}
		in.S3Bucket = aws.String(bucket)
		in.S3Key = aws.String(key)
	}

	out, err := c.lambda.UpdateFunctionCode(ctx, in)
	if err != nil {
		return "", fmt.Errorf("update function code %s: %w", name, err)
	}
	return aws.ToString(out.FunctionArn), nil
}

// UpdateFunctionConfiguration pushes the synthesized settings. Fields the
// caller never set map to nil and are omitted from the call, so their
// remote values stay untouched.
func (c *Client) UpdateFunctionConfiguration(ctx context.Context, cfg function.Config) error {
	_, err := c.lambda.UpdateFunctionConfiguration(ctx, &lambdasdk.UpdateFunctionConfigurationInput{
		FunctionName:     aws.String(cfg.Name),
		Role:             aws.String(cfg.Role),
		Handler:          aws.String(cfg.Handler),
		Runtime:          lambdatypes.Runtime(cfg.Runtime),
		MemorySize:       aws.Int32(cfg.MemorySize),
		Timeout:          aws.Int32(cfg.Timeout),
		Description:      mapDescription(cfg),
		Environment:      mapEnvironment(cfg),
		VpcConfig:        mapVpcConfig(cfg),
		DeadLetterConfig: mapDeadLetterConfig(cfg),
		TracingConfig:    mapTracingConfig(cfg),
	})
	if err != nil {
		return fmt.Errorf("update function configuration %s: %w", cfg.Name, err)
	}
	return nil
}

func mapDescription(cfg function.Config) *string {
	if cfg.Description == "" {
		return nil
	}
	return aws.String(cfg.Description)
}

func mapEnvironment(cfg function.Config) *lambdatypes.Environment {
	if cfg.Environment == nil {
		return nil
	}
	return &lambdatypes.Environment{Variables: cfg.Environment}
}

func mapVpcConfig(cfg function.Config) *lambdatypes.VpcConfig {
	if !cfg.HasVPC() {
		return nil
	}
	return &lambdatypes.VpcConfig{
		SubnetIds:        cfg.SubnetIDs,
		SecurityGroupIds: cfg.SecurityGroupIDs,
	}
}

// mapDeadLetterConfig keeps the three states apart: unset is omitted,
// set-to-empty clears the remote target, set-to-value points at it.
func mapDeadLetterConfig(cfg function.Config) *lambdatypes.DeadLetterConfig {
	arn, set := cfg.DeadLetterArn.Get()
	if !set {
		return nil
	}
	return &lambdatypes.DeadLetterConfig{TargetArn: aws.String(arn)}
}

func mapTracingConfig(cfg function.Config) *lambdatypes.TracingConfig {
	if cfg.TracingMode == "" {
		return nil
	}
	return &lambdatypes.TracingConfig{Mode: lambdatypes.TracingMode(cfg.TracingMode)}
}

// codeSource picks between inline bytes and the S3-assisted route.
func (c *Client) codeSource(ctx context.Context, name string, payload []byte) (*lambdatypes.FunctionCode, error) {
	if c.opts.S3Bucket == "" {
		return &lambdatypes.FunctionCode{ZipFile: payload}, nil
	}
	bucket, key, err := c.uploadPayload(ctx, name, payload)
	if err != nil {
		return nil, err
	}
	return &lambdatypes.FunctionCode{
		S3Bucket: aws.String(bucket),
		S3Key:    aws.String(key),
	}, nil
}

// uploadPayload puts the archive into the configured bucket and returns
// the object location. The key defaults to <function-name>.zip.
func (c *Client) uploadPayload(ctx context.Context, name string, payload []byte) (string, string, error) {
	key := c.opts.S3Key
	if key == "" {
		key = name + ".zip"
	}
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.opts.S3Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(payload),
	})
	if err != nil {
		return "", "", fmt.Errorf("upload payload to s3://%s/%s: %w", c.opts.S3Bucket, key, err)
	}
	return c.opts.S3Bucket, key, nil
}
