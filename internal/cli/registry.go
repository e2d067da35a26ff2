package cli

import (
	"github.com/dshills/sawmill/internal/adapter"
	"github.com/dshills/sawmill/internal/adapter/vivado"
)

// builtinRegistry returns a registry holding the adapters shipped with the
// binary.
func builtinRegistry() *adapter.Registry {
	r := adapter.NewRegistry()
	r.MustRegister(vivado.New())
	return r
}
