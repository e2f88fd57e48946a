package storage

// readOnly serves reads from the wrapped store and discards every write.
type readOnly struct {
	store Store
}

// ReadOnly wraps s so that nothing is ever written to it.
func ReadOnly(s Store) Store {
	return readOnly{store: s}
}

func (r readOnly) Get(key string) ([]byte, error) {
	return r.store.Get(key)
}

func (r readOnly) Set(key string, value []byte) error {
	return nil
}
