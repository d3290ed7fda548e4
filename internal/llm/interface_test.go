// internal/llm/interface_test.go
package llm

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	name      string
	models    []string
	initErr   error
	gotConfig map[string]string
}

func (p *stubProvider) Initialize(config map[string]string) error {
	p.gotConfig = config
	return p.initErr
}

func (p *stubProvider) GetName() string {
	return p.name
}

func (p *stubProvider) GetSupportedModels() []string {
	return p.models
}

func (p *stubProvider) CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return &CompletionResponse{Text: "ok", ProviderName: p.name}, nil
}

func TestRegistry(t *testing.T) {
	stub := &stubProvider{name: "stub", models: []string{"stub-1"}}
	Register("stub", func() Provider { return stub })

	provider, err := GetProvider("stub", map[string]string{"api_key": "k"})
	if err != nil {
		t.Fatalf("GetProvider failed: %v", err)
	}
	if provider.GetName() != "stub" {
		t.Errorf("GetName = %q, want stub", provider.GetName())
	}
	if stub.gotConfig["api_key"] != "k" {
		t.Errorf("Initialize did not receive the config: %v", stub.gotConfig)
	}

	models := GetSupportedModelsForProvider("stub")
	if len(models) != 1 || models[0] != "stub-1" {
		t.Errorf("models = %v, want [stub-1]", models)
	}

	var found bool
	for _, name := range ListProviders() {
		if name == "stub" {
			found = true
		}
	}
	if !found {
		t.Error("stub missing from ListProviders")
	}
}

func TestGetProviderUnknown(t *testing.T) {
	if _, err := GetProvider("missing", nil); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("err = %v, want ErrUnknownProvider", err)
	}
}

func TestGetProviderInitFailure(t *testing.T) {
	Register("broken", func() Provider {
		return &stubProvider{name: "broken", initErr: errors.New("bad key")}
	})

	if _, err := GetProvider("broken", nil); err == nil {
		t.Error("GetProvider should surface Initialize errors")
	}
}

func TestGetSupportedModelsForUnknownProvider(t *testing.T) {
	if models := GetSupportedModelsForProvider("missing"); models != nil {
		t.Errorf("models = %v, want nil", models)
	}
}
