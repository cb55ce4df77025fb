package models

import "path/filepath"

const (
	AssetSourceLocal   = "local"
	AssetSourceDefault = "default"
)

// Asset is an image artifact selected for one publish cycle. It is created
// by the image service and never mutated downstream.
type Asset struct {
	Path     string            `json:"path"`
	Source   string            `json:"source"` // local, generated:<provider> or default
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Identity is the stable key used for deduplication. The file may be
// deleted after posting, so records reference the name, not the path.
func (a *Asset) Identity() string {
	return filepath.Base(a.Path)
}

// GeneratedSource builds the source tag for a cloud-generated asset.
func GeneratedSource(provider string) string {
	return "generated:" + provider
}
