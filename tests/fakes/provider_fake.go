package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/systmms/cloudsec/pkg/provider"
)

// MemoryProvider is an in-memory provider.Provider.
//
// Example usage:
//
//	fake := fakes.NewMemoryProvider(env).
//	    WithSecret("dev-secrets", `{"API_KEY": "abc"}`).
//	    WithError("GetSecret", errors.New("connection failed"))
type MemoryProvider struct {
	env provider.Environment

	secrets map[string]*memorySecret

	failOn     map[string]error // method -> error to return
	callCount  map[string]int
	connected  bool
	clock      time.Time
	lastLabels map[string]string

	mu sync.Mutex
}

type memorySecret struct {
	labels   map[string]string
	created  time.Time
	versions []provider.SecretVersion
	payloads []string
}

// NewMemoryProvider creates an empty, connected provider bound to env.
func NewMemoryProvider(env provider.Environment) *MemoryProvider {
	return &MemoryProvider{
		env:       env,
		secrets:   make(map[string]*memorySecret),
		failOn:    make(map[string]error),
		callCount: make(map[string]int),
		connected: true,
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WithSecret stores value as a new version of name.
func (m *MemoryProvider) WithSecret(name, value string) *MemoryProvider {
	_ = m.SetSecret(context.Background(), name, value, nil)
	m.mu.Lock()
	m.callCount["SetSecret"]--
	m.mu.Unlock()
	return m
}

// WithError makes method fail with err.
func (m *MemoryProvider) WithError(method string, err error) *MemoryProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[method] = err
	return m
}

// WithConnection sets the TestConnection result.
func (m *MemoryProvider) WithConnection(ok bool) *MemoryProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = ok
	return m
}

// CallCount returns how many times method was called.
func (m *MemoryProvider) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount[method]
}

// LastLabels returns the labels passed to the most recent SetSecret.
func (m *MemoryProvider) LastLabels() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLabels
}

// Payload returns the latest stored value of name, bypassing error injection.
func (m *MemoryProvider) Payload(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.secrets[m.env.SecretID(name)]
	if s == nil || len(s.payloads) == 0 {
		return "", false
	}
	return s.payloads[len(s.payloads)-1], true
}

func (m *MemoryProvider) enter(ctx context.Context, method string) error {
	m.callCount[method]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.failOn[method]
}

func (m *MemoryProvider) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *MemoryProvider) Environment() provider.Environment {
	return m.env
}

func (m *MemoryProvider) ListSecrets(ctx context.Context) ([]provider.SecretMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, "ListSecrets"); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(m.secrets))
	for id := range m.secrets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]provider.SecretMetadata, 0, len(ids))
	for _, id := range ids {
		s := m.secrets[id]
		meta := provider.SecretMetadata{
			Name:         id,
			CreateTime:   s.created,
			UpdateTime:   s.created,
			Labels:       s.labels,
			VersionCount: len(s.versions),
		}
		for i := len(s.versions) - 1; i >= 0; i-- {
			if s.versions[i].State == provider.VersionEnabled {
				meta.LatestVersion = s.versions[i].Version
				break
			}
		}
		out = append(out, meta)
	}
	return out, nil
}

func (m *MemoryProvider) GetSecret(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, "GetSecret"); err != nil {
		return "", err
	}

	id := m.env.SecretID(name)
	s := m.secrets[id]
	if s == nil || len(s.payloads) == 0 {
		return "", provider.NotFoundError{Provider: "memory", Key: id}
	}
	return s.payloads[len(s.payloads)-1], nil
}

func (m *MemoryProvider) SetSecret(ctx context.Context, name, value string, labels map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, "SetSecret"); err != nil {
		return err
	}

	id := m.env.SecretID(name)
	m.lastLabels = labels
	s := m.secrets[id]
	if s == nil {
		s = &memorySecret{labels: m.env.MergedLabels(labels), created: m.tick()}
		m.secrets[id] = s
	}
	n := len(s.versions) + 1
	s.versions = append(s.versions, provider.SecretVersion{
		Name:       fmt.Sprintf("%s/versions/%d", m.env.SecretPath(name), n),
		CreateTime: m.tick(),
		State:      provider.VersionEnabled,
		Version:    fmt.Sprint(n),
	})
	s.payloads = append(s.payloads, value)
	return nil
}

func (m *MemoryProvider) DeleteSecret(ctx context.Context, name string, allVersions bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, "DeleteSecret"); err != nil {
		return err
	}

	id := m.env.SecretID(name)
	if _, ok := m.secrets[id]; !ok {
		return provider.NotFoundError{Provider: "memory", Key: id}
	}
	delete(m.secrets, id)
	return nil
}

func (m *MemoryProvider) SecretExists(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, "SecretExists"); err != nil {
		return false, err
	}
	_, ok := m.secrets[m.env.SecretID(name)]
	return ok, nil
}

func (m *MemoryProvider) SecretVersions(ctx context.Context, name string) ([]provider.SecretVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, "SecretVersions"); err != nil {
		return nil, err
	}

	id := m.env.SecretID(name)
	s := m.secrets[id]
	if s == nil {
		return nil, provider.NotFoundError{Provider: "memory", Key: id}
	}
	out := make([]provider.SecretVersion, 0, len(s.versions))
	for i := len(s.versions) - 1; i >= 0; i-- {
		out = append(out, s.versions[i])
	}
	return out, nil
}

func (m *MemoryProvider) TestConnection(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount["TestConnection"]++
	return m.connected && ctx.Err() == nil
}
