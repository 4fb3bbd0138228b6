package ledger

// RenderInput describes an SVG written to disk.
// Path is the stable key (ex: ".github/assets/metrics.anilist.mobile.svg").
type RenderInput struct {
	Path       string
	Kind       string
	SourcePath string
	Content    []byte
	Images     int
	Timestamp  int64
}

// RenderResult reports how the record was applied.
type RenderResult struct {
	Path       string
	RenderID   string
	Hash       string
	Created    bool
	Updated    bool
	Skipped    bool
	PreviousID string
	Reason     string
}

// Render is one ledger row.
type Render struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Kind       string `json:"kind"`
	SourcePath string `json:"source_path,omitempty"`
	Hash       string `json:"content_hash"`
	Images     int    `json:"image_count"`
	Size       int64  `json:"size_bytes"`
	PreviousID string `json:"previous_id,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}
