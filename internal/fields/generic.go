package fields

// MetaBackend stores free-form metadata.
type MetaBackend interface {
	GetMeta(entityID int64, key string) (any, error)
	SetMeta(entityID int64, key string, value any) error
	DeleteMeta(entityID int64, key string) error
}

// Generic is an unstructured key/value bag scoped to an entity.
type Generic struct {
	backend MetaBackend
}

// NewGeneric creates a generic metadata store.
func NewGeneric(backend MetaBackend) *Generic {
	return &Generic{backend: backend}
}

func (g *Generic) Get(entityID int64, key string) (any, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	v, err := g.backend.GetMeta(entityID, key)
	return v, mapStoreErr(err)
}

func (g *Generic) Set(entityID int64, key string, value any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return mapStoreErr(g.backend.SetMeta(entityID, key, value))
}

func (g *Generic) Delete(entityID int64, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return mapStoreErr(g.backend.DeleteMeta(entityID, key))
}
