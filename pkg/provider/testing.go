package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

// ContractTest defines a standard test suite that all providers must pass
type ContractTest struct {
	// CreateProvider creates a fresh, empty provider. Its environment should
	// carry a non-empty prefix so name resolution is exercised.
	CreateProvider func(t *testing.T) Provider

	// SkipVersions disables checks on SecretVersions for backends that do
	// not keep history.
	SkipVersions bool
}

// RunContractTests runs the standard provider contract test suite
func RunContractTests(t *testing.T, contract ContractTest) {
	t.Run("Contract", func(t *testing.T) {
		t.Run("Environment", func(t *testing.T) {
			testProviderEnvironment(t, contract)
		})

		t.Run("TestConnection", func(t *testing.T) {
			testProviderConnection(t, contract)
		})

		t.Run("SetGetRoundTrip", func(t *testing.T) {
			testProviderRoundTrip(t, contract)
		})

		t.Run("GetNotFound", func(t *testing.T) {
			testProviderGetNotFound(t, contract)
		})

		t.Run("NameResolution", func(t *testing.T) {
			testProviderNameResolution(t, contract)
		})

		t.Run("Exists", func(t *testing.T) {
			testProviderExists(t, contract)
		})

		t.Run("List", func(t *testing.T) {
			testProviderList(t, contract)
		})

		if !contract.SkipVersions {
			t.Run("Versions", func(t *testing.T) {
				testProviderVersions(t, contract)
			})
		}

		t.Run("Delete", func(t *testing.T) {
			testProviderDelete(t, contract)
		})
	})
}

func contractContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func testProviderEnvironment(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)

	env := p.Environment()
	if env.Name == "" {
		t.Error("Provider.Environment() returned an environment without a name")
	}
	if !env.Provider.Valid() {
		t.Errorf("Provider.Environment() returned unknown kind %q", env.Provider)
	}
}

func testProviderConnection(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	if !p.TestConnection(contractContext(t)) {
		t.Error("Provider.TestConnection() returned false for a reachable backend")
	}
}

func testProviderRoundTrip(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := contractContext(t)

	value := "{\n  \"QUOTED\": \"say \\\"hi\\\"\",\n  \"TAB\": \"a\\tb\"\n}"
	if err := p.SetSecret(ctx, "contract", value, nil); err != nil {
		t.Fatalf("Provider.SetSecret() failed: %v", err)
	}

	got, err := p.GetSecret(ctx, "contract")
	if err != nil {
		t.Fatalf("Provider.GetSecret() failed: %v", err)
	}
	if got != value {
		t.Errorf("Provider.GetSecret() = %q, want %q", got, value)
	}

	if err := p.SetSecret(ctx, "contract", "second", nil); err != nil {
		t.Fatalf("Provider.SetSecret() on existing secret failed: %v", err)
	}
	got, err = p.GetSecret(ctx, "contract")
	if err != nil {
		t.Fatalf("Provider.GetSecret() failed: %v", err)
	}
	if got != "second" {
		t.Errorf("Provider.GetSecret() after update = %q, want %q", got, "second")
	}
}

func testProviderGetNotFound(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)

	_, err := p.GetSecret(contractContext(t), "missing-"+time.Now().Format("20060102150405"))
	if err == nil {
		t.Fatal("Provider.GetSecret() should fail for a missing secret")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Provider.GetSecret() error = %v, want one matching ErrNotFound", err)
	}
}

func testProviderNameResolution(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := contractContext(t)
	env := p.Environment()

	if err := p.SetSecret(ctx, "resolved", "v1", nil); err != nil {
		t.Fatalf("Provider.SetSecret() failed: %v", err)
	}

	got, err := p.GetSecret(ctx, env.SecretID("resolved"))
	if err != nil {
		t.Fatalf("Provider.GetSecret() with prefixed name failed: %v", err)
	}
	if got != "v1" {
		t.Errorf("Provider.GetSecret(%q) = %q, want %q", env.SecretID("resolved"), got, "v1")
	}
}

func testProviderExists(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := contractContext(t)

	exists, err := p.SecretExists(ctx, "present")
	if err != nil {
		t.Fatalf("Provider.SecretExists() failed: %v", err)
	}
	if exists {
		t.Error("Provider.SecretExists() = true before creation")
	}

	if err := p.SetSecret(ctx, "present", "x", nil); err != nil {
		t.Fatalf("Provider.SetSecret() failed: %v", err)
	}

	exists, err = p.SecretExists(ctx, "present")
	if err != nil {
		t.Fatalf("Provider.SecretExists() failed: %v", err)
	}
	if !exists {
		t.Error("Provider.SecretExists() = false after creation")
	}
}

func testProviderList(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := contractContext(t)
	env := p.Environment()

	if err := p.SetSecret(ctx, "listed", "x", nil); err != nil {
		t.Fatalf("Provider.SetSecret() failed: %v", err)
	}

	secrets, err := p.ListSecrets(ctx)
	if err != nil {
		t.Fatalf("Provider.ListSecrets() failed: %v", err)
	}

	want := env.SecretID("listed")
	for _, s := range secrets {
		if s.Name == want {
			if s.VersionCount < 1 {
				t.Errorf("Provider.ListSecrets() %s VersionCount = %d, want >= 1", want, s.VersionCount)
			}
			return
		}
	}
	t.Errorf("Provider.ListSecrets() did not include %q", want)
}

func testProviderVersions(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := contractContext(t)

	for _, v := range []string{"one", "two"} {
		if err := p.SetSecret(ctx, "versioned", v, nil); err != nil {
			t.Fatalf("Provider.SetSecret() failed: %v", err)
		}
	}

	versions, err := p.SecretVersions(ctx, "versioned")
	if err != nil {
		t.Fatalf("Provider.SecretVersions() failed: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("Provider.SecretVersions() returned %d versions, want 2", len(versions))
	}
	if versions[0].CreateTime.Before(versions[1].CreateTime) {
		t.Error("Provider.SecretVersions() should return newest first")
	}
}

func testProviderDelete(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := contractContext(t)

	if err := p.SetSecret(ctx, "doomed", "x", nil); err != nil {
		t.Fatalf("Provider.SetSecret() failed: %v", err)
	}
	if err := p.DeleteSecret(ctx, "doomed", true); err != nil {
		t.Fatalf("Provider.DeleteSecret() failed: %v", err)
	}

	exists, err := p.SecretExists(ctx, "doomed")
	if err != nil {
		t.Fatalf("Provider.SecretExists() failed: %v", err)
	}
	if exists {
		t.Error("Provider.SecretExists() = true after DeleteSecret")
	}

	if err := p.DeleteSecret(ctx, "doomed", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("Provider.DeleteSecret() on missing secret error = %v, want ErrNotFound", err)
	}
}
