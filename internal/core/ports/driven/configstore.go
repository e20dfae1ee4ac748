package driven

// ConfigStore is a flat view over nested settings tables. Keys are dotted
// paths such as "retrieval.top_k". Typed getters return the zero value when a
// key is missing or holds another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool

	// Set updates one key and writes the store back.
	Set(key string, value any) error

	// Keys lists every stored key, sorted.
	Keys() []string

	// Load re-reads the backing storage, discarding unsaved state.
	Load() error

	// Path identifies the backing storage, ":memory:" for in-memory stores.
	Path() string
}
