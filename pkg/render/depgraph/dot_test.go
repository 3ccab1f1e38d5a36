package depgraph

import (
	"strings"
	"testing"

	"github.com/repolens/repolens/pkg/profile"
)

func sample() *profile.RepositoryProfile {
	return &profile.RepositoryProfile{
		Root:        "/repo",
		ProjectType: "Node",
		Dependencies: profile.Dependencies{
			Runtime: map[string]string{
				"express": "4.18.2",
				"lodash":  "4.17.11",
			},
			Dev: map[string]string{
				"jest": "^29.0.0",
			},
			Issues: []profile.DependencyIssue{
				{Package: "lodash", AdvisoryID: "CVE-2019-10744", Severity: profile.SeverityCritical},
			},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	if !strings.HasPrefix(dot, "digraph deps {") {
		t.Errorf("missing digraph header:\n%s", dot)
	}
	if !strings.Contains(dot, `"/repo\n(Node)"`) {
		t.Errorf("missing root node:\n%s", dot)
	}
	if !strings.Contains(dot, `"runtime:express"`) {
		t.Errorf("missing express node:\n%s", dot)
	}
	if !strings.Contains(dot, `"/repo\n(Node)" -> "runtime:express";`) {
		t.Errorf("missing edge:\n%s", dot)
	}
	if strings.Contains(dot, "jest") {
		t.Error("dev deps must be excluded by default")
	}
	if !strings.Contains(dot, "fillcolor=lightcoral") {
		t.Error("vulnerable package should be highlighted")
	}
}

func TestToDOT_DevAndDetail(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true, IncludeDev: true})

	if !strings.Contains(dot, `"dev:jest"`) {
		t.Errorf("missing dev node:\n%s", dot)
	}
	if !strings.Contains(dot, `label="express\n4.18.2"`) {
		t.Errorf("missing detailed label:\n%s", dot)
	}
}

func TestToDOT_Deterministic(t *testing.T) {
	first := ToDOT(sample(), Options{IncludeDev: true})
	for i := 0; i < 5; i++ {
		if got := ToDOT(sample(), Options{IncludeDev: true}); got != first {
			t.Fatal("DOT output must be deterministic")
		}
	}
}

func TestToDOT_Empty(t *testing.T) {
	p := &profile.RepositoryProfile{Root: "/empty"}
	dot := ToDOT(p, Options{})
	if !strings.Contains(dot, `"/empty"`) {
		t.Errorf("missing root node:\n%s", dot)
	}
	if strings.Contains(dot, "subgraph") {
		t.Error("no clusters expected for empty dependencies")
	}
}
