package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/mini-tournament/models"
)

// SnapshotKey is the object key of an archived tournament snapshot.
func SnapshotKey(organizerID int, archiveID string) string {
	return fmt.Sprintf("archives/organizer_%d/%s.json", organizerID, archiveID)
}

// UploadSnapshot writes a tournament snapshot as JSON and returns the upload.
func UploadSnapshot(ctx context.Context, uploader FileUploader, organizerID int, archiveID string, state *models.TournamentState) (*UploadResult, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot %s: %w", archiveID, err)
	}
	return uploader.Upload(ctx, SnapshotKey(organizerID, archiveID), "application/json", bytes.NewReader(body))
}
