package metadata

// --- SQL Keys ---
// These keys are used for the 'key' column in the 'metadata' table.
const (
	// DatasetVersionKey stores a UUIDv7 that changes on every committed reload.
	// Caches key their entries by it, so a new version retires old entries.
	DatasetVersionKey = "dataset_version"

	// LastDataLoadKey stores the RFC 3339 time of the last move/pokemon load.
	LastDataLoadKey = "last_data_load"

	// LastRankingsLoadKey stores the RFC 3339 time of the last rankings load.
	LastRankingsLoadKey = "last_rankings_load"
)
