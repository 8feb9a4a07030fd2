package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vidaislive/forksync/src/verify"
)

// IsCI reports whether we run under a CI system that sets CI=true.
func IsCI() bool { return os.Getenv("CI") == "true" }

func isGitLab() bool { return os.Getenv("GITLAB_CI") == "true" }

func isGitHubActions() bool { return os.Getenv("GITHUB_ACTIONS") == "true" }

// SectionStart opens a collapsible log group on GitLab CI and GitHub
// Actions. Elsewhere it writes nothing.
func SectionStart(w io.Writer, id, title string) {
	switch {
	case isGitLab():
		fmt.Fprintf(w, "\033[0Ksection_start:%d:%s\r\033[0K%s\n", time.Now().Unix(), id, title)
	case isGitHubActions():
		fmt.Fprintf(w, "::group::%s\n", title)
	}
}

// SectionEnd closes the group opened by SectionStart.
func SectionEnd(w io.Writer, id string) {
	switch {
	case isGitLab():
		fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", time.Now().Unix(), id)
	case isGitHubActions():
		fmt.Fprintln(w, "::endgroup::")
	}
}

// JUnitReport is the <testsuites> root of a verification report.
type JUnitReport struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Time     string       `xml:"time,attr"`
	Suites   []JUnitSuite `xml:"testsuite"`
}

// JUnitSuite holds the checks of one fork tag.
type JUnitSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Time     string      `xml:"time,attr"`
	Cases    []JUnitCase `xml:"testcase"`
}

// JUnitCase is one verify.Check.
type JUnitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Detail  string `xml:",chardata"`
}

// VerifyJUnit converts a verification result into a JUnit report with one
// case per check. Preview checks are classed by target.
func VerifyJUnit(res *verify.Result, elapsed time.Duration) JUnitReport {
	secs := fmt.Sprintf("%.3f", elapsed.Seconds())
	suite := JUnitSuite{Name: "forksync/verify/" + res.ForkTag, Time: secs}

	for _, c := range res.Checks {
		jc := JUnitCase{Name: c.Name + ": " + c.Want, Classname: "forksync.verify"}
		if c.Target != "" {
			jc.Classname += "." + string(c.Target)
		}
		if !c.Passed {
			jc.Failure = &JUnitFailure{
				Message: c.Failure(),
				Type:    "AssertionMismatch",
				Detail:  strings.TrimSpace(c.Detail),
			}
			suite.Failures++
		}
		suite.Cases = append(suite.Cases, jc)
	}
	suite.Tests = len(suite.Cases)

	return JUnitReport{
		Name:     "forksync-verify",
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Time:     secs,
		Suites:   []JUnitSuite{suite},
	}
}

// WriteVerifyJUnit writes <dir>/verify.xml.
func WriteVerifyJUnit(dir string, res *verify.Result, elapsed time.Duration) error {
	body, err := xml.MarshalIndent(VerifyJUnit(res, elapsed), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding junit report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, "verify.xml")
	data := append([]byte(xml.Header), body...)
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
