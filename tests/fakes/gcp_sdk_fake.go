package fakes

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/systmms/cloudsec/internal/providers"
)

var _ providers.GCPSecretManagerAPI = (*FakeGCPSecretManagerClient)(nil)

// FakeGCPSecretManagerClient is an in-memory Secret Manager speaking the same
// gRPC status codes as the real service.
type FakeGCPSecretManagerClient struct {
	mu sync.Mutex

	// Secrets maps full resource names (projects/X/secrets/Y) to their data
	Secrets map[string]*GCPSecretData

	// Errors maps "<Method>" or "<Method>:<resource name>" to an error that
	// is returned instead of performing the call.
	Errors map[string]error

	// Calls counts invocations per method name.
	Calls map[string]int

	// LastListSecrets is the most recent ListSecrets request.
	LastListSecrets *secretmanagerpb.ListSecretsRequest

	// Clock stamps create times; successive calls must not go backwards.
	Clock func() time.Time

	closed bool
}

// GCPSecretData holds the data for a fake GCP secret
type GCPSecretData struct {
	Name        string
	CreateTime  *timestamppb.Timestamp
	Labels      map[string]string
	Replication *secretmanagerpb.Replication

	// Versions are stored oldest first.
	Versions []*GCPSecretVersionData
}

// GCPSecretVersionData holds version-specific data for a GCP secret
type GCPSecretVersionData struct {
	Name       string
	State      secretmanagerpb.SecretVersion_State
	CreateTime *timestamppb.Timestamp
	Data       []byte
	Crc32C     *int64
}

// NewFakeGCPSecretManagerClient creates an empty fake
func NewFakeGCPSecretManagerClient() *FakeGCPSecretManagerClient {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int64
	var clockMu sync.Mutex
	return &FakeGCPSecretManagerClient{
		Secrets: make(map[string]*GCPSecretData),
		Errors:  make(map[string]error),
		Calls:   make(map[string]int),
		Clock: func() time.Time {
			clockMu.Lock()
			defer clockMu.Unlock()
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		},
	}
}

// AddSecretString seeds a secret with one enabled version holding value.
func (f *FakeGCPSecretManagerClient) AddSecretString(projectID, secretID, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.ensureSecret(projectID, secretID, nil)
	f.appendVersion(s, []byte(value), nil)
}

// AddSecretWithLabels seeds a secret without versions.
func (f *FakeGCPSecretManagerClient) AddSecretWithLabels(projectID, secretID string, labels map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ensureSecret(projectID, secretID, labels)
}

// SetVersionState changes the state of an existing version.
func (f *FakeGCPSecretManagerClient) SetVersionState(projectID, secretID, version string, state secretmanagerpb.SecretVersion_State) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.Secrets[secretName(projectID, secretID)]
	if s == nil {
		return
	}
	for _, v := range s.Versions {
		if strings.HasSuffix(v.Name, "/versions/"+version) {
			v.State = state
		}
	}
}

// AddError configures an error for a method, optionally scoped to a resource
// name ("AccessSecretVersion:projects/p/secrets/s/versions/latest").
func (f *FakeGCPSecretManagerClient) AddError(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[key] = err
}

// Payload returns the latest version's data of a secret, for assertions.
func (f *FakeGCPSecretManagerClient) Payload(projectID, secretID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.Secrets[secretName(projectID, secretID)]
	if s == nil || len(s.Versions) == 0 {
		return "", false
	}
	return string(s.Versions[len(s.Versions)-1].Data), true
}

// CallCount returns how many times method was invoked.
func (f *FakeGCPSecretManagerClient) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

// Closed reports whether Close was called.
func (f *FakeGCPSecretManagerClient) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func secretName(projectID, secretID string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", projectID, secretID)
}

func (f *FakeGCPSecretManagerClient) ensureSecret(projectID, secretID string, labels map[string]string) *GCPSecretData {
	name := secretName(projectID, secretID)
	if s, ok := f.Secrets[name]; ok {
		return s
	}
	if labels == nil {
		labels = map[string]string{}
	}
	s := &GCPSecretData{
		Name:       name,
		CreateTime: timestamppb.New(f.Clock()),
		Labels:     labels,
	}
	f.Secrets[name] = s
	return s
}

func (f *FakeGCPSecretManagerClient) appendVersion(s *GCPSecretData, data []byte, crc *int64) *GCPSecretVersionData {
	v := &GCPSecretVersionData{
		Name:       fmt.Sprintf("%s/versions/%d", s.Name, len(s.Versions)+1),
		State:      secretmanagerpb.SecretVersion_ENABLED,
		CreateTime: timestamppb.New(f.Clock()),
		Data:       append([]byte(nil), data...),
		Crc32C:     crc,
	}
	s.Versions = append(s.Versions, v)
	return v
}

// begin records the call and returns any configured or context error.
func (f *FakeGCPSecretManagerClient) begin(ctx context.Context, method, resource string) error {
	f.Calls[method]++
	if err := ctx.Err(); err != nil {
		return status.FromContextError(err).Err()
	}
	if err, ok := f.Errors[method+":"+resource]; ok {
		return err
	}
	if err, ok := f.Errors[method]; ok {
		return err
	}
	return nil
}

// AccessSecretVersion resolves "latest" to the newest version.
func (f *FakeGCPSecretManagerClient) AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin(ctx, "AccessSecretVersion", req.GetName()); err != nil {
		return nil, err
	}

	idx := strings.LastIndex(req.GetName(), "/versions/")
	if idx < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid version name %s", req.GetName())
	}
	parent, version := req.GetName()[:idx], req.GetName()[idx+len("/versions/"):]

	s, ok := f.Secrets[parent]
	if !ok || len(s.Versions) == 0 {
		return nil, status.Errorf(codes.NotFound, "Secret [%s] not found or has no versions.", parent)
	}

	var v *GCPSecretVersionData
	if version == "latest" {
		v = s.Versions[len(s.Versions)-1]
	} else {
		n, err := strconv.Atoi(version)
		if err != nil || n < 1 || n > len(s.Versions) {
			return nil, status.Errorf(codes.NotFound, "Secret Version [%s] not found.", req.GetName())
		}
		v = s.Versions[n-1]
	}

	if v.State != secretmanagerpb.SecretVersion_ENABLED {
		return nil, status.Errorf(codes.FailedPrecondition, "Secret Version [%s] is in %s state.", v.Name, v.State)
	}

	return &secretmanagerpb.AccessSecretVersionResponse{
		Name: v.Name,
		Payload: &secretmanagerpb.SecretPayload{
			Data:       append([]byte(nil), v.Data...),
			DataCrc32C: v.Crc32C,
		},
	}, nil
}

// GetSecret returns the secret's metadata
func (f *FakeGCPSecretManagerClient) GetSecret(ctx context.Context, req *secretmanagerpb.GetSecretRequest, _ ...gax.CallOption) (*secretmanagerpb.Secret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin(ctx, "GetSecret", req.GetName()); err != nil {
		return nil, err
	}

	s, ok := f.Secrets[req.GetName()]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "Secret [%s] not found.", req.GetName())
	}
	return toSecretPB(s), nil
}

// CreateSecret creates an empty secret
func (f *FakeGCPSecretManagerClient) CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, _ ...gax.CallOption) (*secretmanagerpb.Secret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := req.GetParent() + "/secrets/" + req.GetSecretId()
	if err := f.begin(ctx, "CreateSecret", name); err != nil {
		return nil, err
	}
	if req.GetSecret().GetReplication() == nil {
		return nil, status.Error(codes.InvalidArgument, "Secret.replication is required.")
	}
	if _, exists := f.Secrets[name]; exists {
		return nil, status.Errorf(codes.AlreadyExists, "Secret [%s] already exists.", name)
	}

	labels := make(map[string]string, len(req.GetSecret().GetLabels()))
	for k, v := range req.GetSecret().GetLabels() {
		labels[k] = v
	}
	s := &GCPSecretData{
		Name:        name,
		CreateTime:  timestamppb.New(f.Clock()),
		Labels:      labels,
		Replication: req.GetSecret().GetReplication(),
	}
	f.Secrets[name] = s
	return toSecretPB(s), nil
}

// AddSecretVersion appends a version to an existing secret
func (f *FakeGCPSecretManagerClient) AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.SecretVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin(ctx, "AddSecretVersion", req.GetParent()); err != nil {
		return nil, err
	}

	s, ok := f.Secrets[req.GetParent()]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "Secret [%s] not found.", req.GetParent())
	}
	v := f.appendVersion(s, req.GetPayload().GetData(), req.GetPayload().DataCrc32C)
	return toVersionPB(v), nil
}

// DeleteSecret removes a secret and all of its versions
func (f *FakeGCPSecretManagerClient) DeleteSecret(ctx context.Context, req *secretmanagerpb.DeleteSecretRequest, _ ...gax.CallOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin(ctx, "DeleteSecret", req.GetName()); err != nil {
		return err
	}
	if _, ok := f.Secrets[req.GetName()]; !ok {
		return status.Errorf(codes.NotFound, "Secret [%s] not found.", req.GetName())
	}
	delete(f.Secrets, req.GetName())
	return nil
}

// DestroySecretVersion wipes a version's payload
func (f *FakeGCPSecretManagerClient) DestroySecretVersion(ctx context.Context, req *secretmanagerpb.DestroySecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.SecretVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin(ctx, "DestroySecretVersion", req.GetName()); err != nil {
		return nil, err
	}

	for _, s := range f.Secrets {
		for _, v := range s.Versions {
			if v.Name != req.GetName() {
				continue
			}
			if v.State == secretmanagerpb.SecretVersion_DESTROYED {
				return nil, status.Errorf(codes.FailedPrecondition, "Secret Version [%s] is already destroyed.", v.Name)
			}
			v.State = secretmanagerpb.SecretVersion_DESTROYED
			v.Data = nil
			return toVersionPB(v), nil
		}
	}
	return nil, status.Errorf(codes.NotFound, "Secret Version [%s] not found.", req.GetName())
}

// ListSecrets lists a project's secrets sorted by name
func (f *FakeGCPSecretManagerClient) ListSecrets(ctx context.Context, req *secretmanagerpb.ListSecretsRequest, _ ...gax.CallOption) providers.GCPSecretIterator {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.LastListSecrets = req
	if err := f.begin(ctx, "ListSecrets", req.GetParent()); err != nil {
		return &fakeSecretIterator{err: err}
	}

	prefix := req.GetParent() + "/secrets/"
	var names []string
	for name := range f.Secrets {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	items := make([]*secretmanagerpb.Secret, 0, len(names))
	for _, name := range names {
		items = append(items, toSecretPB(f.Secrets[name]))
	}
	return &fakeSecretIterator{items: items}
}

// ListSecretVersions lists versions newest first, as the service does
func (f *FakeGCPSecretManagerClient) ListSecretVersions(ctx context.Context, req *secretmanagerpb.ListSecretVersionsRequest, _ ...gax.CallOption) providers.GCPSecretVersionIterator {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin(ctx, "ListSecretVersions", req.GetParent()); err != nil {
		return &fakeVersionIterator{err: err}
	}

	s, ok := f.Secrets[req.GetParent()]
	if !ok {
		return &fakeVersionIterator{err: status.Errorf(codes.NotFound, "Secret [%s] not found.", req.GetParent())}
	}

	items := make([]*secretmanagerpb.SecretVersion, 0, len(s.Versions))
	for i := len(s.Versions) - 1; i >= 0; i-- {
		items = append(items, toVersionPB(s.Versions[i]))
	}
	return &fakeVersionIterator{items: items}
}

// Close marks the client closed
func (f *FakeGCPSecretManagerClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func toSecretPB(s *GCPSecretData) *secretmanagerpb.Secret {
	labels := make(map[string]string, len(s.Labels))
	for k, v := range s.Labels {
		labels[k] = v
	}
	return &secretmanagerpb.Secret{
		Name:        s.Name,
		CreateTime:  s.CreateTime,
		Labels:      labels,
		Replication: s.Replication,
	}
}

func toVersionPB(v *GCPSecretVersionData) *secretmanagerpb.SecretVersion {
	return &secretmanagerpb.SecretVersion{
		Name:       v.Name,
		State:      v.State,
		CreateTime: v.CreateTime,
	}
}

type fakeSecretIterator struct {
	items []*secretmanagerpb.Secret
	err   error
}

func (it *fakeSecretIterator) Next() (*secretmanagerpb.Secret, error) {
	if it.err != nil {
		return nil, it.err
	}
	if len(it.items) == 0 {
		return nil, iterator.Done
	}
	item := it.items[0]
	it.items = it.items[1:]
	return item, nil
}

type fakeVersionIterator struct {
	items []*secretmanagerpb.SecretVersion
	err   error
}

func (it *fakeVersionIterator) Next() (*secretmanagerpb.SecretVersion, error) {
	if it.err != nil {
		return nil, it.err
	}
	if len(it.items) == 0 {
		return nil, iterator.Done
	}
	item := it.items[0]
	it.items = it.items[1:]
	return item, nil
}
