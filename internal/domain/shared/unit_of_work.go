package shared

// SaveResult reports how many rows a unit of work touched
type SaveResult struct {
	Changes int64
}
