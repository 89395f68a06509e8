package domain

// InstallProfile is the launch descriptor stored at versions/{id}/{id}.json.
// Only the fields the installers read or synthesize are modelled; profiles
// downloaded from an ecosystem are persisted verbatim.
type InstallProfile struct {
	ID           string         `json:"id"`
	InheritsFrom string         `json:"inheritsFrom,omitempty"`
	ReleaseTime  string         `json:"releaseTime,omitempty"`
	Time         string         `json:"time,omitempty"`
	Type         string         `json:"type,omitempty"`
	MainClass    string         `json:"mainClass"`
	Arguments    Arguments      `json:"arguments"`
	Libraries    []LibraryEntry `json:"libraries"`
}

// Arguments holds the game and JVM argument lists of a profile
type Arguments struct {
	Game []any `json:"game"`
	JVM  []any `json:"jvm"`
}

// LibraryEntry is a library as it appears inside a profile document.
// Two shapes exist: a maven name with an optional repository URL, or a
// downloads.artifact block with an explicit path.
type LibraryEntry struct {
	Name      string            `json:"name,omitempty"`
	URL       string            `json:"url,omitempty"`
	Size      int64             `json:"size,omitempty"`
	SHA1      string            `json:"sha1,omitempty"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
}

// LibraryDownloads is the downloads block of a library entry
type LibraryDownloads struct {
	Artifact *ArtifactDownload `json:"artifact,omitempty"`
}

// ArtifactDownload points at one downloadable artifact
type ArtifactDownload struct {
	Path string `json:"path"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// Library is a resolved library ready to fetch
type Library struct {
	Coordinate   string   // group:artifact:version or ecosystem-native form
	RelativePath string   // Path below the shared library root
	Sources      []string // Candidate URLs, tried in order
	ExpectedSize int64    // 0 when unknown
	SHA1         string   // Hex SHA-1, empty when unknown
}
