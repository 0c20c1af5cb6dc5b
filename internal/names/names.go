// Package names canonicalizes free-text professor names and course mentions
// so records from the directory, ratings and discussion sources can be
// compared. All functions are pure; the lookup tables are immutable.
package names

import (
	"regexp"
	"strings"
)

var departmentMapping = map[string]string{
	"Computing Science": "Computer Science",
	"Psychology Dept":   "Psychology",
}

// nicknameMap maps a formal first name to its common nicknames.
var nicknameMap = map[string][]string{
	"elizabeth":   {"beth", "liz", "lizzy", "betty", "eliza"},
	"william":     {"bill", "will", "willy", "billy"},
	"robert":      {"bob", "rob", "bobby", "robbie"},
	"richard":     {"dick", "rich", "rick", "ricky"},
	"michael":     {"mike", "mick", "mickey"},
	"christopher": {"chris"},
	"alexander":   {"alex", "al", "sandy"},
	"katherine":   {"kate", "kathy", "katie", "kat"},
	"margaret":    {"maggie", "meg", "peggy"},
	"patricia":    {"pat", "patty", "tricia"},
	"jennifer":    {"jen", "jenny"},
	"anthony":     {"tony"},
	"benjamin":    {"ben", "benny"},
	"daniel":      {"dan", "danny"},
	"matthew":     {"matt"},
	"joseph":      {"joe", "joey"},
	"jonathan":    {"jon"},
	"nicholas":    {"nick"},
	"theodore":    {"ted", "teddy", "theo"},
	"thomas":      {"tom", "tommy"},
	"timothy":     {"tim", "timmy"},
	"andrew":      {"andy", "drew"},
	"charles":     {"charlie", "chuck"},
	"edward":      {"ed", "eddie", "ted"},
	"james":       {"jim", "jimmy", "jamie"},
	"david":       {"dave", "davy"},
	"lawrence":    {"larry"},
	"douglas":     {"doug"},
	"gregory":     {"greg"},
	"stephen":     {"steve", "stevie"},
	"vincent":     {"vince", "vinny"},
}

// nicknameToFormal is the inverse of nicknameMap. A nickname like "ted" can
// map to more than one formal name.
var nicknameToFormal = buildInverse()

func buildInverse() map[string]map[string]bool {
	inverse := make(map[string]map[string]bool)
	for formal, nicknames := range nicknameMap {
		for _, nick := range nicknames {
			if inverse[nick] == nil {
				inverse[nick] = make(map[string]bool)
			}
			inverse[nick][formal] = true
		}
	}
	return inverse
}

var (
	titlePrefix  = regexp.MustCompile(`(?i)^(dr\.?|prof\.?|professor)\s*`)
	degreeSuffix = regexp.MustCompile(`(?i),?\s*(ph\.?d\.?|phd|m\.?sc?\.?|m\.?a\.?|b\.?sc?\.?)$`)
	whitespace   = regexp.MustCompile(`\s+`)
	courseCode   = regexp.MustCompile(`(?i)^([A-Z]{2,8})\s*(\d{3}[A-Z]?)`)
	courseCodes  = regexp.MustCompile(`(?i)\b([A-Z]{2,8})\s*(\d{3})\b`)
)

// NormalizeDepartment maps a directory department label to the canonical form
// used in the professors table.
func NormalizeDepartment(department string) string {
	if mapped, ok := departmentMapping[department]; ok {
		return mapped
	}
	return department
}

// Normalize lowercases a name, strips leading titles and trailing academic
// degrees, and collapses whitespace.
func Normalize(name string) string {
	n := strings.ToLower(name)
	n = titlePrefix.ReplaceAllString(n, "")
	n = degreeSuffix.ReplaceAllString(n, "")
	n = whitespace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// Parts holds the components of a parsed name. First is empty when the input
// carried only a surname.
type Parts struct {
	First  string
	Last   string
	Middle []string
}

// ParseParts splits a raw name into first/middle/last components, handling
// both "First Middle Last" and "Last, First Middle" forms.
func ParseParts(fullName string) Parts {
	normalized := Normalize(fullName)
	tokens := strings.Fields(normalized)

	if len(tokens) == 0 {
		return Parts{}
	}
	if len(tokens) == 1 {
		return Parts{Last: tokens[0]}
	}

	if strings.Contains(fullName, ",") {
		segments := strings.SplitN(fullName, ",", 2)
		rest := strings.Fields(Normalize(segments[1]))
		parts := Parts{Last: Normalize(segments[0])}
		if len(rest) > 0 {
			parts.First = rest[0]
			parts.Middle = rest[1:]
		}
		return parts
	}

	return Parts{
		First:  tokens[0],
		Last:   tokens[len(tokens)-1],
		Middle: tokens[1 : len(tokens)-1],
	}
}

// FirstNamesMatch reports whether two first names plausibly refer to the same
// person: exact match, a single-letter initial matching the other's first
// letter, or a nickname relationship through the closed nickname table
// (including two nicknames sharing a formal root).
func FirstNamesMatch(a, b string) bool {
	n1 := strings.ToLower(strings.TrimSpace(a))
	n2 := strings.ToLower(strings.TrimSpace(b))

	if n1 == n2 {
		return true
	}

	if len(n1) == 1 && strings.HasPrefix(n2, n1) {
		return true
	}
	if len(n2) == 1 && strings.HasPrefix(n1, n2) {
		return true
	}

	if containsNickname(n1, n2) || containsNickname(n2, n1) {
		return true
	}

	for formal := range nicknameToFormal[n1] {
		if nicknameToFormal[n2][formal] {
			return true
		}
	}

	return false
}

func containsNickname(formal, nick string) bool {
	for _, candidate := range nicknameMap[formal] {
		if candidate == nick {
			return true
		}
	}
	return false
}

// ExtractCourseCode pulls a canonical "DEPT NNN" code from the start of a
// free-text course label. Returns empty string when no code is present.
func ExtractCourseCode(courseName string) string {
	match := courseCode.FindStringSubmatch(courseName)
	if match == nil {
		return ""
	}
	return strings.ToUpper(match[1]) + " " + strings.ToUpper(match[2])
}

// ExtractCourseCodes scans arbitrary text for course-code mentions and
// returns them deduplicated in first-seen order.
func ExtractCourseCodes(text string) []string {
	matches := courseCodes.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var codes []string
	for _, match := range matches {
		code := strings.ToUpper(match[1]) + " " + strings.ToUpper(match[2])
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}
