package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/glimmerdesk/fsbridge/internal/types"
)

// Provider is one service the bridge exposes: a definition for discovery
// and an execution entry point keyed by tool identifier.
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]interface{}, callCtx *types.Context) (*types.Result, error)
}

// Registry maps service identifiers to providers and routes tool calls.
// Tool identifiers are dotted: the segment before the first dot names the
// service, the remainder is the provider's concern.
type Registry struct {
	providers sync.Map
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider under its declared service ID.
func (r *Registry) Register(p Provider) error {
	def := p.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}
	r.providers.Store(def.ID, p)
	return nil
}

// Unregister removes a provider.
func (r *Registry) Unregister(serviceID string) {
	r.providers.Delete(serviceID)
}

// Get looks a provider up by service ID.
func (r *Registry) Get(serviceID string) (Provider, bool) {
	v, ok := r.providers.Load(serviceID)
	if !ok {
		return nil, false
	}
	return v.(Provider), true
}

// List returns registered service definitions, optionally restricted to one
// category.
func (r *Registry) List(category *types.Category) []types.Service {
	var out []types.Service
	r.providers.Range(func(_, v interface{}) bool {
		def := v.(Provider).Definition()
		if category == nil || def.Category == *category {
			out = append(out, def)
		}
		return true
	})
	return out
}

// Discover ranks services against a free-form intent and returns up to
// limit of them, best first. Services with no overlap are omitted.
func (r *Registry) Discover(intent string, limit int) []types.Service {
	intent = strings.ToLower(intent)

	type ranked struct {
		def   types.Service
		score float64
	}
	var hits []ranked

	r.providers.Range(func(_, v interface{}) bool {
		def := v.(Provider).Definition()
		if score := relevance(intent, def); score > 0 {
			hits = append(hits, ranked{def: def, score: score})
		}
		return true
	})

	sort.Slice(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]types.Service, 0, limit)
	for i := 0; i < len(hits) && i < limit; i++ {
		out = append(out, hits[i].def)
	}
	return out
}

// relevance scores how much of a service's vocabulary the intent mentions.
// The service's own identifier weighs most; capabilities and description
// words refine the ordering between services sharing a name hit.
func relevance(intent string, def types.Service) float64 {
	var score float64

	if strings.Contains(intent, def.ID) || strings.Contains(intent, strings.ToLower(def.Name)) {
		score += 10
	}
	for _, cap := range def.Capabilities {
		if strings.Contains(intent, strings.ReplaceAll(strings.ToLower(cap), "_", " ")) {
			score += 3
		}
	}
	for _, word := range strings.Fields(strings.ToLower(def.Description)) {
		if strings.Contains(intent, word) {
			score += 1
		}
	}
	return score
}

// Execute routes a dotted tool identifier to its provider.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	serviceID, _, found := strings.Cut(toolID, ".")
	if !found {
		return failResult("invalid tool ID format"), fmt.Errorf("invalid tool ID format: %s", toolID)
	}

	p, ok := r.Get(serviceID)
	if !ok {
		return failResult("service not found: " + serviceID), fmt.Errorf("service not found: %s", serviceID)
	}
	return p.Execute(ctx, toolID, params, callCtx)
}

// Stats summarizes the registry for the stats endpoint.
func (r *Registry) Stats() map[string]interface{} {
	var services, tools int
	categories := make(map[string]int)

	r.providers.Range(func(_, v interface{}) bool {
		def := v.(Provider).Definition()
		services++
		tools += len(def.Tools)
		categories[string(def.Category)]++
		return true
	})

	return map[string]interface{}{
		"total_services": services,
		"total_tools":    tools,
		"categories":     categories,
	}
}

func failResult(msg string) *types.Result {
	return &types.Result{Success: false, Error: &msg}
}
