package providers

import (
	"context"

	"github.com/systmms/cloudsec/internal/logging"
	"github.com/systmms/cloudsec/pkg/provider"
)

const awsProviderName = "aws"

// awsNotImplementedMessage is returned verbatim by every AWS operation.
const awsNotImplementedMessage = "AWS provider support is not yet implemented. Please use 'gcp' as the provider for now."

// AWSSecretsManagerProvider is a placeholder backend. Every data operation
// fails with provider.ErrNotImplemented and TestConnection reports false.
type AWSSecretsManagerProvider struct {
	env    provider.Environment
	logger *logging.Logger
}

// NewAWSSecretsManagerProvider creates the AWS placeholder for env
func NewAWSSecretsManagerProvider(env provider.Environment, logger *logging.Logger) *AWSSecretsManagerProvider {
	if logger == nil {
		logger = logging.New(false, false)
	}
	return &AWSSecretsManagerProvider{env: env, logger: logger}
}

func awsNotImplemented() error {
	return provider.NotImplementedError{Provider: awsProviderName, Message: awsNotImplementedMessage}
}

// Environment returns the environment the provider is bound to
func (p *AWSSecretsManagerProvider) Environment() provider.Environment {
	return p.env
}

func (p *AWSSecretsManagerProvider) ListSecrets(ctx context.Context) ([]provider.SecretMetadata, error) {
	return nil, awsNotImplemented()
}

func (p *AWSSecretsManagerProvider) GetSecret(ctx context.Context, name string) (string, error) {
	return "", awsNotImplemented()
}

func (p *AWSSecretsManagerProvider) SetSecret(ctx context.Context, name, value string, labels map[string]string) error {
	return awsNotImplemented()
}

func (p *AWSSecretsManagerProvider) DeleteSecret(ctx context.Context, name string, allVersions bool) error {
	return awsNotImplemented()
}

func (p *AWSSecretsManagerProvider) SecretExists(ctx context.Context, name string) (bool, error) {
	return false, awsNotImplemented()
}

func (p *AWSSecretsManagerProvider) SecretVersions(ctx context.Context, name string) ([]provider.SecretVersion, error) {
	return nil, awsNotImplemented()
}

// TestConnection always fails; the message tells the user what to do instead.
func (p *AWSSecretsManagerProvider) TestConnection(ctx context.Context) bool {
	p.logger.Error("Connection test failed: %s", awsNotImplementedMessage)
	return false
}
