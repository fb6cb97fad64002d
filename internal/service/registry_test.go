package service

import (
	"context"
	"testing"

	"github.com/glimmerdesk/fsbridge/internal/types"
)

type mockProvider struct {
	id string
}

func (m *mockProvider) Definition() types.Service {
	return types.Service{
		ID:           m.id,
		Name:         "Mock Service",
		Description:  "A mock service for testing",
		Category:     types.CategoryFilesystem,
		Capabilities: []string{"read", "write"},
		Tools: []types.Tool{
			{
				ID:          m.id + ".test",
				Name:        "Test Tool",
				Description: "A test tool",
				Returns:     "string",
			},
		},
	}
}

func (m *mockProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"result": "success"},
	}, nil
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	p := &mockProvider{id: "test"}

	if err := r.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, ok := r.Get("test"); !ok {
		t.Error("Service should be registered")
	}
}

func TestRegisterEmptyID(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockProvider{id: ""}); err == nil {
		t.Error("Register should reject empty service ID")
	}
}

func TestList(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "test1"})
	r.Register(&mockProvider{id: "test2"})

	services := r.List(nil)
	if len(services) != 2 {
		t.Errorf("Expected 2 services, got %d", len(services))
	}

	cat := types.CategoryFilesystem
	filtered := r.List(&cat)
	if len(filtered) != 2 {
		t.Errorf("Expected 2 filesystem services, got %d", len(filtered))
	}

	other := types.CategorySystem
	empty := r.List(&other)
	if len(empty) != 0 {
		t.Errorf("Expected 0 system services, got %d", len(empty))
	}
}

func TestDiscover(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "fs"})

	results := r.Discover("fs read write", 5)
	if len(results) == 0 {
		t.Fatal("Should discover fs service")
	}

	if results[0].ID != "fs" {
		t.Errorf("Expected fs service, got %s", results[0].ID)
	}
}

func TestExecute(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "fs"})

	result, err := r.Execute(context.Background(), "fs.test", nil, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Error("Execute should succeed")
	}
}

func TestExecuteUnknownService(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Execute(context.Background(), "nope.test", nil, nil); err == nil {
		t.Error("Execute should fail for unknown service")
	}

	if _, err := r.Execute(context.Background(), "malformed", nil, nil); err == nil {
		t.Error("Execute should fail for malformed tool ID")
	}
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "test"})
	r.Unregister("test")

	if _, ok := r.Get("test"); ok {
		t.Error("Service should be unregistered")
	}
}
