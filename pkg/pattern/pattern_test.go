package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/robosync/pkg/pattern"
)

// 🧪 TestMatch covers glob matching and the legacy fallback chain
func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pat     string
		entry   string
		matches bool
	}{
		{"glob suffix", "*.txt", "a.txt", true},
		{"glob suffix no overmatch", "*.txt", "a.txtx", false},
		{"glob prefix", "report*", "report_final", true},
		{"glob prefix miss", "report*", "summary_final", false},
		{"contains", "*mid*", "xxmidyy", true},
		{"contains miss", "*mid*", "xxmyy", false},
		{"literal", "readme", "readme", true},
		{"literal miss", "readme", "readme.txt", false},
		{"match all star", "*", "anything", true},
		{"match all dot", "*.*", "noext", true},
		{"question mark", "a?.log", "ab.log", true},
		{"question mark miss", "a?.log", "abc.log", false},
		{"char class", "[ab].txt", "a.txt", true},
		{"char class miss", "[ab].txt", "c.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, pattern.Match(tt.entry, tt.pat),
				"pattern %q against %q", tt.pat, tt.entry)
		})
	}
}

// 🧪 TestMatcherOr checks OR semantics across multiple patterns
func TestMatcherOr(t *testing.T) {
	m := pattern.New([]string{"*.go", "*.txt"})

	assert.True(t, m.Matches("main.go"))
	assert.True(t, m.Matches("notes.txt"))
	assert.False(t, m.Matches("image.png"))
}

// 🧪 TestMatcherDefault verifies the empty pattern set matches everything
func TestMatcherDefault(t *testing.T) {
	m := pattern.New(nil)

	assert.Equal(t, []string{pattern.DefaultPattern}, m.Patterns())
	assert.True(t, m.Matches("anything.bin"))
	assert.True(t, m.Matches("no-extension"))
}
