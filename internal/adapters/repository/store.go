// Package repository keeps ghost files on local disk. The root directory holds
// a personal folder with one trusted file per route and a shared folder of
// files dropped by other players, which are always decoded as untrusted.
package repository

import (
	"context"

	"github.com/okian/ghostrun/internal/domain/model"
)

// Extension is the file suffix of every ghost file.
const Extension = ".ghost"

// Store provides read/write access to stored ghosts.
type Store interface {
	// PersonalExists reports whether a personal best file exists for routeID.
	PersonalExists(ctx context.Context, routeID string) bool
	// LoadPersonal decodes the personal best for routeID in trusted mode.
	LoadPersonal(ctx context.Context, routeID string) (*model.GhostRecording, error)
	// SavePersonal atomically replaces the personal best for rec.RouteID.
	SavePersonal(ctx context.Context, rec *model.GhostRecording) error
	// DeletePersonal removes the personal best for routeID.
	// Returns ErrNotFound if there is none.
	DeletePersonal(ctx context.Context, routeID string) error
	// ListPersonal returns route ids with a personal best, sorted.
	ListPersonal(ctx context.Context) ([]string, error)

	// ScanShared summarizes the shared folder without decoding frames.
	ScanShared(ctx context.Context) ([]model.SharedGhostMetadata, error)
	// InspectShared summarizes one shared file.
	InspectShared(ctx context.Context, path string) model.SharedGhostMetadata
	// LoadShared fully decodes a shared file in untrusted mode.
	LoadShared(ctx context.Context, meta model.SharedGhostMetadata) (*model.GhostRecording, error)
}
