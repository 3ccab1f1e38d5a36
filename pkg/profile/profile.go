// Package profile defines the value objects produced by a repository scan.
//
// A [RepositoryProfile] is built fresh on every scan and handed to the
// caller as a fully-owned value: nothing in it is shared with the engine
// after Analyze returns, and scanning the same unmodified tree twice yields
// identical profiles. Serialization, storage, and display of profiles are
// the caller's concern; this package only defines the in-memory shape and
// its JSON encoding.
package profile

// Scope classifies the role of a dependency in its project.
type Scope string

const (
	ScopeRuntime  Scope = "runtime"
	ScopeDev      Scope = "dev"
	ScopePeer     Scope = "peer"
	ScopeBuild    Scope = "build"
	ScopeOptional Scope = "optional"
)

// Severity grades a dependency advisory.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Sentinel version specs used when an exact version cannot be derived
// from static manifest text.
const (
	VersionLatest  = "latest"
	VersionGit     = "git-dependency"
	VersionURL     = "url-dependency"
	VersionExtras  = "with-extras"
	VersionComplex = "complex-dependency"
)

// DirectoryNode is one entry in the scanned directory tree. A node is
// either a file leaf (Type == "file") or a directory with Children keyed
// by entry name. Directories beyond the walker's depth ceiling carry a
// single Truncated marker child instead of their real contents.
type DirectoryNode struct {
	Type     string                    `json:"type,omitempty"`
	Size     int64                     `json:"size,omitempty"`
	Children map[string]*DirectoryNode `json:"children,omitempty"`
	Marker   string                    `json:"marker,omitempty"`
}

// FileEntry records one of the largest files found during the walk.
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// TreeSummary aggregates counters from the directory walk.
type TreeSummary struct {
	TotalFiles       int            `json:"total_files"`
	TotalDirectories int            `json:"total_directories"`
	FileTypes        map[string]int `json:"file_types"`
	LargestFiles     []FileEntry    `json:"largest_files"`
}

// Structure is the walker's contribution to the profile.
type Structure struct {
	Tree    *DirectoryNode `json:"directory_tree"`
	Summary TreeSummary    `json:"file_summary"`
}

// LanguageStat holds per-language size and line counters.
type LanguageStat struct {
	Bytes      int64   `json:"bytes"`
	FileCount  int     `json:"file_count"`
	LineCount  int     `json:"line_count"`
	Percentage float64 `json:"percentage"`
}

// Languages is the classifier's contribution to the profile. Percentages
// across all entries sum to 100 whenever TotalBytes is nonzero.
type Languages struct {
	Primary    string                  `json:"primary_language,omitempty"`
	Stats      map[string]LanguageStat `json:"languages"`
	TotalBytes int64                   `json:"total_code_size"`
	TotalLines int                     `json:"total_lines"`
}

// DependencyIssue is one advisory match from the static security table.
// Issues exist only inside the profile that produced them.
type DependencyIssue struct {
	Package      string   `json:"package"`
	Version      string   `json:"version"`
	AdvisoryID   string   `json:"advisory_id"`
	Severity     Severity `json:"severity"`
	Description  string   `json:"description"`
	FixedIn      string   `json:"fixed_in"`
	ReferenceURL string   `json:"reference_url"`
}

// OutdatedPackage is one match from the static latest-version table.
type OutdatedPackage struct {
	Package        string `json:"package"`
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
	UpdateUrgency  string `json:"update_urgency"`
}

// DependencyStats summarizes the aggregated dependency buckets.
// Transitive is always zero: no registry resolution happens in a static
// scan, and the count is recorded explicitly rather than guessed.
type DependencyStats struct {
	Total      int `json:"total_dependencies"`
	Direct     int `json:"direct_dependencies"`
	Dev        int `json:"dev_dependencies"`
	Transitive int `json:"transitive_dependencies"`
	Critical   int `json:"critical_security_issues"`
	High       int `json:"high_security_issues"`
	Medium     int `json:"medium_security_issues"`
	Low        int `json:"low_security_issues"`
}

// Dependencies is the aggregated output of all manifest parsers.
type Dependencies struct {
	Ecosystems []string          `json:"package_managers"`
	Runtime    map[string]string `json:"dependencies"`
	Dev        map[string]string `json:"dev_dependencies"`
	Peer       map[string]string `json:"peer_dependencies"`
	Build      map[string]string `json:"build_dependencies"`
	Optional   map[string]string `json:"optional_dependencies"`
	Issues     []DependencyIssue `json:"security_issues"`
	Outdated   []OutdatedPackage `json:"outdated_packages"`
	Stats      DependencyStats   `json:"stats"`
}

// Metadata collects repository housekeeping files found at the root.
type Metadata struct {
	ReadmeFiles       []string `json:"readme_files"`
	LicenseFiles      []string `json:"license_files"`
	ConfigFiles       []string `json:"config_files"`
	CICDFiles         []string `json:"ci_cd_files"`
	DocumentationDirs []string `json:"documentation_dirs"`
}

// RepositoryProfile is the root result of a scan. It owns all of its
// fields by value; the engine adds no timestamps or identity of its own.
type RepositoryProfile struct {
	Root                 string       `json:"root"`
	Structure            Structure    `json:"structure"`
	Languages            Languages    `json:"languages"`
	Dependencies         Dependencies `json:"dependencies"`
	ArchitecturePatterns []string     `json:"architecture_patterns"`
	ProjectType          string       `json:"project_type"`
	Metadata             Metadata     `json:"metadata"`
}
