package localstore

import "time"

// entry is the on-disk envelope of one stored value.
type entry struct {
	Value     []byte    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
