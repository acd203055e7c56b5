package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StorageType    string `json:"storage_type"`
	CompareAndSwap bool   `json:"compare_and_swap"`
	MaxRetries     int    `json:"max_retries"`
	ReadOnly       bool   `json:"read_only"`
	Hub            any    `json:"hub,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	inner := s.storage
	if s.hub != nil {
		inner = s.hub.Inner()
	}

	storageType := "storage"
	// Try to get component type if storage implements introspection.Component
	if comp, ok := inner.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}

	st := ServiceState{
		StorageType:    storageType,
		CompareAndSwap: s.cfg.CompareAndSwap,
		MaxRetries:     s.cfg.MaxRetries,
		ReadOnly:       s.cfg.ReadOnly,
	}
	if s.hub != nil {
		st.Hub = s.hub.State()
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
var _ introspection.Introspectable = (*Hub)(nil)
var _ introspection.Component = (*Hub)(nil)
