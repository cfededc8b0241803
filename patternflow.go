// Package patternflow provides a top-level convenience entry point for
// working with a pattern catalog with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/patternflow"
//
//	registry, err := patternflow.OpenCatalog("patterns/index.json")
//	patterns := registry.Search("memory")
//
// This is a thin wrapper around the catalog package; use it when you only
// need to load and query a manifest.
package patternflow

import (
	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/catalog"
)

// OpenCatalog loads a manifest file into a fresh registry.
func OpenCatalog(manifestPath string) (*catalog.Registry, error) {
	return OpenCatalogWithLogger(manifestPath, zap.NewNop())
}

// OpenCatalogWithLogger is OpenCatalog with a custom logger.
func OpenCatalogWithLogger(manifestPath string, logger *zap.Logger) (*catalog.Registry, error) {
	manifest, err := catalog.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	registry := catalog.NewRegistry(catalog.RegistryConfig{}, logger)
	if err := registry.LoadManifest(manifest); err != nil {
		return nil, err
	}
	return registry, nil
}
