// Package provider defines the backend abstraction cloudsec uses to store
// secrets in a cloud secret manager.
//
// # Architecture Overview
//
//	┌──────────────────────────────────────────────┐
//	│              CLI Commands                    │
//	│          (cmd/cloudsec/commands/)            │
//	└──────────────────────┬───────────────────────┘
//	                       │
//	┌──────────────────────▼───────────────────────┐
//	│     Secret Store Facade + Blob Codec         │
//	│         (internal/secretstore/)              │
//	└──────────────────────┬───────────────────────┘
//	                       │
//	┌──────────────────────▼───────────────────────┐
//	│           Provider Interface                 │
//	│             (pkg/provider/)                  │
//	└──────────────────────┬───────────────────────┘
//	                       │
//	┌──────────────────────▼───────────────────────┐
//	│        Provider Implementations              │
//	│         (internal/providers/)                │
//	│   ┌─────────────┐      ┌─────────────┐       │
//	│   │     GCP     │      │  AWS (stub) │       │
//	│   └─────────────┘      └─────────────┘       │
//	└──────────────────────────────────────────────┘
//
// # Environments and Names
//
// Every Provider is bound to one Environment: a project, a region and an
// optional prefix. Secret names are resolved with ResolveName, which adds
// the prefix unless the name already carries it:
//
//	env := provider.Environment{ProjectID: "acme-dev", Prefix: "dev-"}
//	env.SecretPath("secrets")     // projects/acme-dev/secrets/dev-secrets
//	env.SecretPath("dev-secrets") // projects/acme-dev/secrets/dev-secrets
//
// # Error Handling
//
// Providers report missing resources with errors matching ErrNotFound
// (usually NotFoundError) so callers can branch with errors.Is. Transport
// failures are wrapped in *Error with the operation and secret id. Stub
// backends return NotImplementedError, which matches ErrNotImplemented.
//
// # Testing Providers
//
// RunContractTests exercises the behavior every implementation must share.
// Implementations backed by an SDK should run it against an SDK fake:
//
//	provider.RunContractTests(t, provider.ContractTest{
//	    CreateProvider: func(t *testing.T) provider.Provider {
//	        return newProviderOverFake(t)
//	    },
//	})
package provider
