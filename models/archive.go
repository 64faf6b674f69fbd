package models

import "time"

// Archive indexes a finished tournament snapshot.
type Archive struct {
	ID                  string    `json:"id" db:"id"`
	OrganizerID         int       `json:"organizer_id" db:"organizer_id"`
	Format              Format    `json:"format" db:"format"`
	MainChampion        *string   `json:"main_champion,omitempty" db:"main_champion"`
	ConsolationChampion *string   `json:"consolation_champion,omitempty" db:"consolation_champion"`
	StorageKey          *string   `json:"-" db:"storage_key"`
	SnapshotURL         *string   `json:"snapshot_url,omitempty" db:"-"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`

	Snapshot *TournamentState `json:"snapshot,omitempty" db:"snapshot"`
}
