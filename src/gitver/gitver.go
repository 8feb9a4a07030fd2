// Package gitver parses release references and derives the image tags and
// fork tags built from them. It is the shared foundation used by both the
// sync pipeline and the docker compatibility check.
package gitver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultForkTagPrefix is prepended to an upstream tag to form a fork tag.
const DefaultForkTagPrefix = "vida-"

// Reference is a parsed release reference: either Structured or Opaque.
type Reference interface {
	// String returns the reference exactly as it was given.
	String() string
	isReference()
}

// Structured is a dated tag such as "vida-v2026.2.14-rc1".
type Structured struct {
	Raw    string
	Prefix string // fork prefix if present, "" for upstream tags
	Year   int
	Month  int
	Day    int
	Suffix string // everything after the day, verbatim: "-rc1", "-beta", ""
}

// Opaque is any reference that is not a dated tag (branches, SHAs, custom tags).
type Opaque struct {
	Raw string
}

func (s Structured) String() string { return s.Raw }
func (o Opaque) String() string     { return o.Raw }

func (Structured) isReference() {}
func (Opaque) isReference()     {}

// Upstream returns the embedded upstream tag, i.e. the reference with the fork prefix removed.
func (s Structured) Upstream() string {
	return strings.TrimPrefix(s.Raw, s.Prefix)
}

// referenceRe builds the dated-tag matcher for one fork prefix. The suffix
// must not start with a digit so that over-long numeric groups fall through
// to Opaque instead of being split.
func referenceRe(prefix string) *regexp.Regexp {
	p := "()"
	if prefix != "" {
		p = "(" + regexp.QuoteMeta(prefix) + ")?"
	}
	return regexp.MustCompile(`^` + p + `v(\d{1,4})\.(\d{1,2})\.(\d{1,2})(\D.*)?$`)
}

// ParseReference classifies ref as Structured or Opaque. prefix is the known
// fork prefix; it is optional in ref.
func ParseReference(ref, prefix string) Reference {
	m := referenceRe(prefix).FindStringSubmatch(ref)
	if m == nil {
		return Opaque{Raw: ref}
	}
	// The groups are at most four digits, Atoi cannot fail.
	year, _ := strconv.Atoi(m[2])
	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[4])
	return Structured{
		Raw:    ref,
		Prefix: m[1],
		Year:   year,
		Month:  month,
		Day:    day,
		Suffix: m[5],
	}
}

// ImageTag derives the container image tag for a release reference.
//
//	vida-v2026.2.14       → 2026-02-14
//	vida-v2026.12.4-rc1   → 2026-12-04-rc1
//	v26.1.1               → 0026-01-01
//	feature/foo           → feature-foo
//
// Month and day ranges are not validated.
func ImageTag(ref, prefix string) string {
	switch r := ParseReference(ref, prefix).(type) {
	case Structured:
		return fmt.Sprintf("%04d-%02d-%02d%s", r.Year, r.Month, r.Day, r.Suffix)
	default:
		return sanitizeTag(r.String())
	}
}

// ForkTag joins a fork prefix and an upstream tag.
func ForkTag(prefix, upstreamTag string) string {
	return prefix + upstreamTag
}

// sanitizeTag replaces path separators, which are not allowed in Docker tags.
func sanitizeTag(s string) string {
	return strings.ReplaceAll(s, "/", "-")
}
