package metrics

// Tag creates a DataDog tag string in "key:value" format.
func Tag(key, value string) string {
	return key + ":" + value
}

// CacheTag names an L1 instance.
func CacheTag(name string) string {
	return Tag("cache", name)
}

// LayerTag names a tier (local or remote).
func LayerTag(layer string) string {
	return Tag("layer", layer)
}

// OperationTag creates an operation tag.
func OperationTag(op string) string {
	return Tag("operation", op)
}

// StatusTag creates a status tag (hit/miss/error).
func StatusTag(status string) string {
	return Tag("status", status)
}

// CircuitStateTag creates a circuit breaker state tag.
func CircuitStateTag(state string) string {
	return Tag("circuit_state", state)
}
