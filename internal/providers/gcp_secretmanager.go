package providers

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/logging"
	"github.com/systmms/cloudsec/pkg/provider"
)

const gcpProviderName = "gcp"

// GCPSecretManagerAPI is the subset of the Secret Manager client used by the
// provider. *secretmanager.Client satisfies it through gcpClient.
type GCPSecretManagerAPI interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	GetSecret(ctx context.Context, req *secretmanagerpb.GetSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
	CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
	AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error)
	DeleteSecret(ctx context.Context, req *secretmanagerpb.DeleteSecretRequest, opts ...gax.CallOption) error
	DestroySecretVersion(ctx context.Context, req *secretmanagerpb.DestroySecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error)
	ListSecrets(ctx context.Context, req *secretmanagerpb.ListSecretsRequest, opts ...gax.CallOption) GCPSecretIterator
	ListSecretVersions(ctx context.Context, req *secretmanagerpb.ListSecretVersionsRequest, opts ...gax.CallOption) GCPSecretVersionIterator
	Close() error
}

// GCPSecretIterator yields secrets until iterator.Done.
type GCPSecretIterator interface {
	Next() (*secretmanagerpb.Secret, error)
}

// GCPSecretVersionIterator yields secret versions until iterator.Done.
type GCPSecretVersionIterator interface {
	Next() (*secretmanagerpb.SecretVersion, error)
}

// gcpClient adapts the generated client's concrete iterator types.
type gcpClient struct {
	*secretmanager.Client
}

func (c gcpClient) ListSecrets(ctx context.Context, req *secretmanagerpb.ListSecretsRequest, opts ...gax.CallOption) GCPSecretIterator {
	return c.Client.ListSecrets(ctx, req, opts...)
}

func (c gcpClient) ListSecretVersions(ctx context.Context, req *secretmanagerpb.ListSecretVersionsRequest, opts ...gax.CallOption) GCPSecretVersionIterator {
	return c.Client.ListSecretVersions(ctx, req, opts...)
}

// GCPSecretManagerProvider implements provider.Provider on Google Cloud Secret Manager
type GCPSecretManagerProvider struct {
	env      provider.Environment
	client   GCPSecretManagerAPI
	logger   *logging.Logger
	callOpts []gax.CallOption
	now      func() time.Time
}

// GCPOption configures a GCPSecretManagerProvider.
type GCPOption func(*GCPSecretManagerProvider)

// WithGCPClient injects the Secret Manager client, bypassing credential lookup.
func WithGCPClient(client GCPSecretManagerAPI) GCPOption {
	return func(p *GCPSecretManagerProvider) {
		p.client = client
	}
}

// WithGCPLogger sets the logger used for connection diagnostics.
func WithGCPLogger(logger *logging.Logger) GCPOption {
	return func(p *GCPSecretManagerProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewGCPSecretManagerProvider creates a provider bound to env
func NewGCPSecretManagerProvider(ctx context.Context, env provider.Environment, opts ...GCPOption) (*GCPSecretManagerProvider, error) {
	if env.ProjectID == "" {
		return nil, dserrors.ConfigError{
			Field:      "projectId",
			Value:      env.Name,
			Message:    "projectId is required for GCP Secret Manager",
			Suggestion: "Set projectId on the environment or pass --project",
		}
	}

	p := &GCPSecretManagerProvider{
		env:    env,
		logger: logging.New(false, false),
		// No automatic retries: a failed call surfaces immediately.
		callOpts: []gax.CallOption{gax.WithRetry(func() gax.Retryer { return nil })},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		client, err := createGCPSecretManagerClient(ctx, env)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCP Secret Manager client: %w", err)
		}
		p.client = gcpClient{client}
	}

	return p, nil
}

// createGCPSecretManagerClient creates a GCP Secret Manager client
func createGCPSecretManagerClient(ctx context.Context, env provider.Environment) (*secretmanager.Client, error) {
	var clientOptions []option.ClientOption

	if keyPath := env.CredentialsFile; keyPath != "" {
		if strings.HasPrefix(keyPath, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			keyPath = filepath.Join(home, keyPath[2:])
		}
		clientOptions = append(clientOptions, option.WithCredentialsFile(keyPath))
	}

	if env.ImpersonateServiceAccount != "" {
		ts, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
			TargetPrincipal: env.ImpersonateServiceAccount,
			Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
		}, clientOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to create impersonated credentials: %w", err)
		}
		clientOptions = []option.ClientOption{option.WithTokenSource(ts)}
	}

	return secretmanager.NewClient(ctx, clientOptions...)
}

// Environment returns the environment the provider is bound to
func (p *GCPSecretManagerProvider) Environment() provider.Environment {
	return p.env
}

// Close releases the underlying gRPC connection.
func (p *GCPSecretManagerProvider) Close() error {
	return p.client.Close()
}

// ListSecrets lists prefixed secrets with their version summary
func (p *GCPSecretManagerProvider) ListSecrets(ctx context.Context) ([]provider.SecretMetadata, error) {
	start := p.now()
	it := p.client.ListSecrets(ctx, &secretmanagerpb.ListSecretsRequest{
		Parent: p.env.ProjectPath(),
	}, p.callOpts...)

	var secrets []*secretmanagerpb.Secret
	for {
		s, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			ObserveAPICall(gcpProviderName, CallListSecrets, start, err)
			return nil, gcpError("list", p.env.ProjectPath(), err)
		}
		if p.env.Prefix != "" && !strings.HasPrefix(path.Base(s.GetName()), p.env.Prefix) {
			continue
		}
		secrets = append(secrets, s)
	}
	ObserveAPICall(gcpProviderName, CallListSecrets, start, nil)

	result := make([]provider.SecretMetadata, 0, len(secrets))
	for _, s := range secrets {
		versions, err := p.listVersions(ctx, s.GetName())
		if err != nil {
			return nil, err
		}

		meta := provider.SecretMetadata{
			Name:         path.Base(s.GetName()),
			Labels:       s.GetLabels(),
			VersionCount: len(versions),
		}
		if s.GetCreateTime() != nil {
			meta.CreateTime = s.GetCreateTime().AsTime()
			meta.UpdateTime = meta.CreateTime
		}
		for _, v := range versions {
			if v.State == provider.VersionEnabled {
				meta.LatestVersion = v.Version
				break
			}
		}
		result = append(result, meta)
	}

	return result, nil
}

// GetSecret returns the latest version's payload
func (p *GCPSecretManagerProvider) GetSecret(ctx context.Context, name string) (string, error) {
	id := p.env.SecretID(name)
	p.logger.Debug("Accessing GCP secret: %s/versions/latest", p.env.SecretPath(name))

	start := p.now()
	resp, err := p.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: p.env.SecretPath(name) + "/versions/latest",
	}, p.callOpts...)
	ObserveAPICall(gcpProviderName, CallAccessSecretVersion, start, err)
	if err != nil {
		// No enabled version reads the same as no secret at all.
		if status.Code(err) == codes.FailedPrecondition {
			return "", provider.NotFoundError{Provider: gcpProviderName, Key: id}
		}
		return "", gcpError("access", id, err)
	}

	payload := resp.GetPayload()
	if payload == nil {
		return "", nil
	}
	if payload.DataCrc32C != nil {
		sum := int64(crc32.Checksum(payload.GetData(), crc32cTable))
		if sum != payload.GetDataCrc32C() {
			return "", &provider.Error{
				Provider:   gcpProviderName,
				Op:         "access",
				Name:       id,
				Err:        fmt.Errorf("payload checksum mismatch"),
				Suggestion: "The payload was corrupted in transit. Run the command again",
			}
		}
	}

	return string(payload.GetData()), nil
}

// SetSecret creates the secret when missing and appends a version
func (p *GCPSecretManagerProvider) SetSecret(ctx context.Context, name, value string, labels map[string]string) error {
	id := p.env.SecretID(name)
	secretPath := p.env.SecretPath(name)

	exists, err := p.SecretExists(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		p.logger.Debug("Creating GCP secret %s", secretPath)
		start := p.now()
		_, err := p.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   p.env.ProjectPath(),
			SecretId: id,
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{
						Automatic: &secretmanagerpb.Replication_Automatic{},
					},
				},
				Labels: p.env.MergedLabels(labels),
			},
		}, p.callOpts...)
		ObserveAPICall(gcpProviderName, CallCreateSecret, start, err)
		if err != nil {
			return gcpError("create", id, err)
		}
	}

	data := []byte(value)
	checksum := int64(crc32.Checksum(data, crc32cTable))

	start := p.now()
	_, err = p.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: secretPath,
		Payload: &secretmanagerpb.SecretPayload{
			Data:       data,
			DataCrc32C: &checksum,
		},
	}, p.callOpts...)
	ObserveAPICall(gcpProviderName, CallAddSecretVersion, start, err)
	if err != nil {
		return gcpError("add version to", id, err)
	}

	return nil
}

// DeleteSecret deletes the secret, optionally destroying its versions first
func (p *GCPSecretManagerProvider) DeleteSecret(ctx context.Context, name string, allVersions bool) error {
	id := p.env.SecretID(name)
	secretPath := p.env.SecretPath(name)

	if allVersions {
		versions, err := p.listVersions(ctx, secretPath)
		if err != nil {
			return err
		}
		for _, v := range versions {
			if v.State == provider.VersionDestroyed {
				continue
			}
			start := p.now()
			_, err := p.client.DestroySecretVersion(ctx, &secretmanagerpb.DestroySecretVersionRequest{
				Name: v.Name,
			}, p.callOpts...)
			ObserveAPICall(gcpProviderName, CallDestroySecretVersion, start, err)
			if err != nil {
				return gcpError("destroy version of", id, err)
			}
		}
	}

	start := p.now()
	err := p.client.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
		Name: secretPath,
	}, p.callOpts...)
	ObserveAPICall(gcpProviderName, CallDeleteSecret, start, err)
	if err != nil {
		return gcpError("delete", id, err)
	}

	return nil
}

// SecretExists reports whether the secret resource exists
func (p *GCPSecretManagerProvider) SecretExists(ctx context.Context, name string) (bool, error) {
	id := p.env.SecretID(name)

	start := p.now()
	_, err := p.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{
		Name: p.env.SecretPath(name),
	}, p.callOpts...)
	ObserveAPICall(gcpProviderName, CallGetSecret, start, err)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, gcpError("get", id, err)
	}

	return true, nil
}

// SecretVersions lists versions in the order the API returns them
func (p *GCPSecretManagerProvider) SecretVersions(ctx context.Context, name string) ([]provider.SecretVersion, error) {
	return p.listVersions(ctx, p.env.SecretPath(name))
}

func (p *GCPSecretManagerProvider) listVersions(ctx context.Context, secretPath string) ([]provider.SecretVersion, error) {
	start := p.now()
	it := p.client.ListSecretVersions(ctx, &secretmanagerpb.ListSecretVersionsRequest{
		Parent: secretPath,
	}, p.callOpts...)

	var versions []provider.SecretVersion
	for {
		v, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			ObserveAPICall(gcpProviderName, CallListSecretVersions, start, err)
			return nil, gcpError("list versions of", path.Base(secretPath), err)
		}
		versions = append(versions, toSecretVersion(v))
	}
	ObserveAPICall(gcpProviderName, CallListSecretVersions, start, nil)

	return versions, nil
}

// TestConnection lists a single secret to prove credentials and project access
func (p *GCPSecretManagerProvider) TestConnection(ctx context.Context) bool {
	start := p.now()
	it := p.client.ListSecrets(ctx, &secretmanagerpb.ListSecretsRequest{
		Parent:   p.env.ProjectPath(),
		PageSize: 1,
	}, p.callOpts...)

	_, err := it.Next()
	if err == iterator.Done {
		err = nil
	}
	ObserveAPICall(gcpProviderName, CallTestConnection, start, err)
	if err != nil {
		p.logger.Error("Connection test failed: %v", gcpError("list", p.env.ProjectPath(), err))
		return false
	}

	return true
}

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

func toSecretVersion(v *secretmanagerpb.SecretVersion) provider.SecretVersion {
	sv := provider.SecretVersion{
		Name:    v.GetName(),
		Version: path.Base(v.GetName()),
		State:   toVersionState(v.GetState()),
	}
	if v.GetCreateTime() != nil {
		sv.CreateTime = v.GetCreateTime().AsTime()
	}
	return sv
}

func toVersionState(s secretmanagerpb.SecretVersion_State) provider.VersionState {
	switch s {
	case secretmanagerpb.SecretVersion_ENABLED:
		return provider.VersionEnabled
	case secretmanagerpb.SecretVersion_DISABLED:
		return provider.VersionDisabled
	case secretmanagerpb.SecretVersion_DESTROYED:
		return provider.VersionDestroyed
	default:
		return provider.VersionUnknown
	}
}
