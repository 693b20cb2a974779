package filter_test

import (
	"testing"

	"github.com/classdep/classdep/filter"
	"github.com/stretchr/testify/assert"
)

func TestAcceptWithNoFilters(t *testing.T) {
	f := filter.New()
	assert.True(t, f.Accept("com.acme.widgets"))
	assert.True(t, f.Accept("java.lang"))
}

func TestAcceptRejectsConfiguredPrefix(t *testing.T) {
	f := filter.New("java.", "javax.")
	assert.False(t, f.Accept("java.lang.String"))
	assert.False(t, f.Accept("javax.swing.JFrame"))
	assert.True(t, f.Accept("com.acme.Widget"))
}

func TestTrailingStarIsStrippedButStillPrefixMatch(t *testing.T) {
	// spec.md §9: "com.foo" and "com.foo*" behave identically — a trailing
	// "*" is not a wildcard, matching is always prefix-based.
	withStar := filter.New("com.foo*")
	withoutStar := filter.New("com.foo")

	for _, name := range []string{"com.foo", "com.foobar", "com.foo.bar"} {
		assert.Equal(t, withoutStar.Accept(name), withStar.Accept(name), name)
	}
}

func TestEmptyEntriesDiscarded(t *testing.T) {
	f := filter.New("", "*", "com.acme.")
	assert.Equal(t, []string{"com.acme."}, f.Prefixes())
}

func TestAddAfterConstruction(t *testing.T) {
	f := filter.New()
	f.Add("org.apache.*")
	assert.False(t, f.Accept("org.apache.commons.lang"))
}
