package checkpoint

import (
	"encoding/json"
	"fmt"
)

// Save JSON encodes v and stores it under key.
func Save(store Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(key, string(raw))
}

// Load decodes the value stored under key into v. It returns ErrNotFound
// when the key is missing.
func Load(store Store, key string, v any) error {
	raw, ok, err := store.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
