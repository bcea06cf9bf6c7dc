package fields

// Mutation describes one write performed through a store.
type Mutation struct {
	Op       string // "set" or "delete"
	Kind     Kind
	EntityID int64
	Key      string
	Old      any
	New      any
}

// RecordFunc receives every mutation made through an audited store.
type RecordFunc func(Mutation)

// Audited wraps a store so successful Set and Delete calls are recorded.
// The previous value is read first; a failed read records a nil Old value.
func Audited(kind Kind, st Store, record RecordFunc) Store {
	if record == nil {
		return st
	}
	return &auditedStore{kind: kind, inner: st, record: record}
}

type auditedStore struct {
	kind   Kind
	inner  Store
	record RecordFunc
}

func (a *auditedStore) Get(entityID int64, key string) (any, error) {
	return a.inner.Get(entityID, key)
}

func (a *auditedStore) Set(entityID int64, key string, value any) error {
	old, _ := a.inner.Get(entityID, key)
	if err := a.inner.Set(entityID, key, value); err != nil {
		return err
	}
	a.record(Mutation{Op: "set", Kind: a.kind, EntityID: entityID, Key: key, Old: old, New: value})
	return nil
}

func (a *auditedStore) Delete(entityID int64, key string) error {
	old, _ := a.inner.Get(entityID, key)
	if err := a.inner.Delete(entityID, key); err != nil {
		return err
	}
	a.record(Mutation{Op: "delete", Kind: a.kind, EntityID: entityID, Key: key, Old: old})
	return nil
}

// FieldType forwards to the wrapped store when it knows field types.
func (a *auditedStore) FieldType(key string) (string, bool) {
	if typed, ok := a.inner.(Typed); ok {
		return typed.FieldType(key)
	}
	return "", false
}
