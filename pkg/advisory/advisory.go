// Package advisory holds the static security and freshness data used by
// the dependency heuristics: known vulnerable package versions and the
// latest published version per tracked package.
//
// The default database is embedded YAML so a scan needs no network
// access. A different database can be loaded from disk at runtime, which
// keeps the data swappable without touching any engine logic.
package advisory

import (
	"os"
	"strings"
	"sync"

	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/repolens/repolens/pkg/errors"
)

//go:embed data/advisories.yaml
var embedded []byte

// Advisory is one known vulnerability record.
type Advisory struct {
	ID              string `yaml:"id"`
	Package         string `yaml:"package"`
	AffectedVersion string `yaml:"affected_version"`
	Severity        string `yaml:"severity"`
	Description     string `yaml:"description"`
	FixedIn         string `yaml:"fixed_in"`
	URL             string `yaml:"url"`
}

// Source supplies advisory data to the heuristics.
type Source interface {
	// Match returns the advisories whose affected version matches the
	// given installed version.
	Match(pkg, version string) []Advisory
	// LatestVersion returns the newest known version of pkg.
	LatestVersion(pkg string) (string, bool)
}

// Database is a Source backed by an in-memory table.
type Database struct {
	Version    int               `yaml:"version"`
	Advisories []Advisory        `yaml:"advisories"`
	Latest     map[string]string `yaml:"latest_versions"`

	byPackage map[string][]Advisory
}

var defaultDB = sync.OnceValue(func() *Database {
	db, err := parse(embedded)
	if err != nil {
		panic("advisory: embedded database is invalid: " + err.Error())
	}
	return db
})

// Default returns the embedded advisory database.
func Default() *Database {
	return defaultDB()
}

// LoadFile reads a YAML advisory database from disk.
func LoadFile(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnreadableFile, "failed to read advisory database")
	}
	db, err := parse(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to parse advisory database")
	}
	return db, nil
}

func parse(data []byte) (*Database, error) {
	var db Database
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, err
	}
	db.byPackage = make(map[string][]Advisory, len(db.Advisories))
	for _, a := range db.Advisories {
		db.byPackage[a.Package] = append(db.byPackage[a.Package], a)
	}
	return &db, nil
}

// Match reports the advisories affecting the given package version. A
// version matches when it equals the affected version or extends it
// ("0.12.4" matches an advisory against "0.12"). Sentinel versions such
// as "latest" never match.
func (db *Database) Match(pkg, version string) []Advisory {
	if version == "" {
		return nil
	}
	var out []Advisory
	for _, a := range db.byPackage[pkg] {
		if version == a.AffectedVersion || strings.HasPrefix(version, a.AffectedVersion) {
			out = append(out, a)
		}
	}
	return out
}

// LatestVersion returns the newest tracked version of pkg.
func (db *Database) LatestVersion(pkg string) (string, bool) {
	v, ok := db.Latest[pkg]
	return v, ok
}
