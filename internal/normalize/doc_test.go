package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDoc(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "triple quoted docstring",
			in:   `"""Manages users."""`,
			want: "Manages users.",
		},
		{
			name: "multiline docstring dedents",
			in: `"""Fetch a URL.

    Retries on failure.
    """`,
			want: "Fetch a URL.\n\nRetries on failure.",
		},
		{
			name: "raw docstring prefix",
			in:   `r"""Pattern: \d+"""`,
			want: `Pattern: \d+`,
		},
		{
			name: "hash comments",
			in:   "# Retry budget.\n# Tuned by hand.",
			want: "Retry budget.\nTuned by hand.",
		},
		{
			name: "ruby embedded doc",
			in:   "=begin\nBuilds the route table.\n=end",
			want: "Builds the route table.",
		},
		{
			name: "slash comments",
			in:   "// Server handles requests.",
			want: "Server handles requests.",
		},
		{
			name: "rust doc comments",
			in:   "/// A point in the plane.\n/// Immutable.",
			want: "A point in the plane.\nImmutable.",
		},
		{
			name: "javadoc block",
			in:   "/**\n * Immutable pair.\n * Holds two ints.\n */",
			want: "Immutable pair.\nHolds two ints.",
		},
		{
			name: "c block comment",
			in:   "/* Connection state. */",
			want: "Connection state.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, CleanDoc(tc.in))
		})
	}
}
