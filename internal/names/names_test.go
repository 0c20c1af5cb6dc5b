package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Dr. John Smith", "john smith"},
		{"Prof Jane Doe", "jane doe"},
		{"Professor Alan Turing", "alan turing"},
		{"John Smith PhD", "john smith"},
		{"John Smith, Ph.D.", "john smith"},
		{"Jane Doe MSc", "jane doe"},
		{"  Multiple   Spaces  ", "multiple spaces"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "input %q", tc.in)
	}
}

func TestParseParts(t *testing.T) {
	cases := []struct {
		in     string
		first  string
		last   string
		middle []string
	}{
		{"John Smith", "john", "smith", []string{}},
		{"John Michael Smith", "john", "smith", []string{"michael"}},
		{"Smith", "", "smith", nil},
		{"Smith, John", "john", "smith", []string{}},
		{"Smith, John Michael", "john", "smith", []string{"michael"}},
		{"Dr. J. Smith", "j.", "smith", []string{}},
		{"", "", "", nil},
	}
	for _, tc := range cases {
		parts := ParseParts(tc.in)
		assert.Equal(t, tc.first, parts.First, "first of %q", tc.in)
		assert.Equal(t, tc.last, parts.Last, "last of %q", tc.in)
		if len(tc.middle) == 0 {
			assert.Empty(t, parts.Middle, "middle of %q", tc.in)
		} else {
			assert.Equal(t, tc.middle, parts.Middle, "middle of %q", tc.in)
		}
	}
}

func TestFirstNamesMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"John", "john", true},
		{"J", "John", true},
		{"John", "J", true},
		{"robert", "bob", true},
		{"Bob", "Robert", true},
		// Two nicknames sharing the same formal root.
		{"bill", "will", true},
		{"ted", "teddy", true},
		{"John", "Jane", false},
		{"bob", "bill", false},
		{"", "John", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FirstNamesMatch(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}

func TestExtractCourseCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CMPUT 204 - Algorithms", "CMPUT 204"},
		{"cmput204", "CMPUT 204"},
		{"MATH 117L Honors Calculus Lab", "MATH 117L"},
		{"intro to stuff", ""},
		{"Algorithms CMPUT 204", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractCourseCode(tc.in), "input %q", tc.in)
	}
}

func TestExtractCourseCodes(t *testing.T) {
	codes := ExtractCourseCodes("Has anyone taken CMPUT 204 or cmput 204? How does it compare to MATH 125?")
	assert.Equal(t, []string{"CMPUT 204", "MATH 125"}, codes)

	assert.Nil(t, ExtractCourseCodes("no courses here"))
}

func TestNormalizeDepartment(t *testing.T) {
	assert.Equal(t, "Computer Science", NormalizeDepartment("Computing Science"))
	assert.Equal(t, "Biology", NormalizeDepartment("Biology"))
}
