// Package fakes provides test doubles for the cloudsec provider interfaces.
//
// FakeGCPSecretManagerClient stands in for the Secret Manager SDK client so
// the real GCP provider can be exercised without network access.
// MemoryProvider implements provider.Provider directly for tests of code
// above the provider layer.
//
// Usage:
//
//	fake := fakes.NewFakeGCPSecretManagerClient()
//	fake.AddSecretString("acme-dev", "dev-secrets", `{"API_KEY": "abc"}`)
//	p, _ := providers.NewGCPSecretManagerProvider(ctx, env, providers.WithGCPClient(fake))
package fakes
