// Where: internal/infra/awsdeploy/errors.go
// What: Remote error classification.
// Why: Not-found drives the create-vs-update split; conflict marks idempotent re-grants.
package awsdeploy

import (
	"errors"

	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
)

// IsNotFound reports whether err says the resource does not exist.
func IsNotFound(err error) bool {
	var notFound *lambdatypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return true
	}
	return isAPIErrorCode(err, "ResourceNotFoundException")
}

// IsConflict reports whether err says the resource already exists or is
// mid-mutation.
func IsConflict(err error) bool {
	var conflict *lambdatypes.ResourceConflictException
	if errors.As(err, &conflict) {
		return true
	}
	return isAPIErrorCode(err, "ResourceConflictException")
}

func isAPIErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == code
	}
	return false
}
