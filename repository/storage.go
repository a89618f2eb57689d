package repository

import "context"

// Durable client-side keys.
const (
	KeyAuthToken = "auth_token"
	KeyAuthUser  = "auth_user"
)

// LocalStorage is the client's durable key/value slot store.
// Get returns domain.ErrStorageKeyNotFound for a missing key; Remove of a missing key is not an error.
type LocalStorage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
