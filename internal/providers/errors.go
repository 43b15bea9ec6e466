package providers

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/systmms/cloudsec/pkg/provider"
)

// gcpError maps a Secret Manager RPC failure onto the provider error types.
func gcpError(op, id string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return provider.NotFoundError{Provider: gcpProviderName, Key: id}
	case codes.Unauthenticated, codes.PermissionDenied:
		return &provider.Error{
			Provider:   gcpProviderName,
			Op:         op,
			Name:       id,
			Suggestion: gcpErrorSuggestion(err),
			Err: provider.AuthError{
				Provider: gcpProviderName,
				Message:  status.Convert(err).Message(),
				Err:      err,
			},
		}
	default:
		return &provider.Error{
			Provider:   gcpProviderName,
			Op:         op,
			Name:       id,
			Suggestion: gcpErrorSuggestion(err),
			Err:        err,
		}
	}
}

// gcpErrorSuggestion provides helpful suggestions based on GCP errors
func gcpErrorSuggestion(err error) string {
	switch status.Code(err) {
	case codes.PermissionDenied:
		return "Check IAM permissions: secretmanager.secrets.get, secretmanager.secrets.create, secretmanager.versions.add, secretmanager.versions.access"
	case codes.Unauthenticated:
		return "Check authentication: set GOOGLE_APPLICATION_CREDENTIALS or run 'gcloud auth application-default login'"
	case codes.NotFound:
		return "Verify the secret name and project ID. Check that the secret exists"
	case codes.InvalidArgument:
		return "Check the project ID and secret name format"
	case codes.ResourceExhausted:
		return "Request was throttled. Wait a moment and run the command again"
	case codes.Unavailable, codes.DeadlineExceeded:
		return "Unable to reach Secret Manager. Check your network connection"
	case codes.FailedPrecondition:
		return "The secret has no enabled version. Enable or add one in the cloud console"
	default:
		return "Check GCP credentials, project ID, and IAM permissions for Secret Manager"
	}
}
