package validate

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"sigs.k8s.io/yaml"
)

const (
	descriptionMin = 20
	descriptionMax = 200

	// substantialBody is the non-blank line count above which body content
	// counts as substantial rather than a stub.
	substantialBody = 10

	maxLineLength = 200

	headerDelim = "---"
)

var (
	kebabCaseRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	allowedModels = []string{"haiku", "sonnet", "opus", "inherit"}

	commonColors = []string{"red", "blue", "green", "yellow", "purple", "orange", "pink", "cyan"}
)

// headerFields are the schema fields read out of an asset's front matter.
type headerFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Model       string `json:"model"`
	Color       string `json:"color"`
}

// document is one asset file decomposed for rule evaluation.
type document struct {
	raw         []byte
	lines       []string // raw lines with trailing \r stripped
	headerOpen  bool     // first line is the header delimiter
	headerClose bool     // a second delimiter exists at line 2 or later
	header      headerFields
	body        []string // lines after the closing delimiter
}

// parseDocument splits data into header and body. Structural parsing
// tolerates CRLF so later rules still see the fields; the line-endings
// rule reports the CR characters separately.
func parseDocument(data []byte) *document {
	doc := &document{raw: data}

	rawLines := strings.Split(string(data), "\n")
	doc.lines = make([]string, len(rawLines))
	for i, l := range rawLines {
		doc.lines[i] = strings.TrimSuffix(l, "\r")
	}

	if doc.lines[0] != headerDelim {
		return doc
	}
	doc.headerOpen = true

	for i := 1; i < len(doc.lines); i++ {
		if doc.lines[i] == headerDelim {
			doc.headerClose = true
			yamlBlock := strings.Join(doc.lines[1:i], "\n")
			// Unparsable front matter leaves the fields empty; the
			// field rules then report them as missing.
			_ = yaml.Unmarshal([]byte(yamlBlock), &doc.header)
			doc.body = doc.lines[i+1:]
			break
		}
	}

	return doc
}

type rule struct {
	name  string
	check func(*document) (Outcome, string)
}

func (r rule) run(doc *document) RuleResult {
	outcome, detail := r.check(doc)
	return RuleResult{Rule: r.name, Outcome: outcome, Detail: detail}
}

// rules is the fixed ordered rule set applied to every non-empty file.
var rules = []rule{
	{"header-open", checkHeaderOpen},
	{"header-close", checkHeaderClose},
	{"name", checkName},
	{"description", checkDescription},
	{"model", checkModel},
	{"color", checkColor},
	{"body-content", checkBodyContent},
	{"heading", checkHeading},
	{"line-endings", checkLineEndings},
	{"encoding", checkEncoding},
	{"line-length", checkLineLength},
}

func checkHeaderOpen(doc *document) (Outcome, string) {
	if !doc.headerOpen {
		return Fail, "file does not begin with a '---' header delimiter"
	}
	return Pass, ""
}

func checkHeaderClose(doc *document) (Outcome, string) {
	if !doc.headerClose {
		return Fail, "header block is never closed with a second '---'"
	}
	return Pass, ""
}

func checkName(doc *document) (Outcome, string) {
	name := doc.header.Name
	if name == "" {
		return Fail, "missing required field: name"
	}
	if !kebabCaseRegex.MatchString(name) {
		return Warn, fmt.Sprintf("name %q is not kebab-case", name)
	}
	return Pass, ""
}

func checkDescription(doc *document) (Outcome, string) {
	desc := doc.header.Description
	if desc == "" {
		return Fail, "missing required field: description"
	}
	n := utf8.RuneCountInString(desc)
	if n < descriptionMin || n > descriptionMax {
		return Warn, fmt.Sprintf("description length %d outside %d-%d", n, descriptionMin, descriptionMax)
	}
	return Pass, fmt.Sprintf("description length %d", n)
}

func checkModel(doc *document) (Outcome, string) {
	model := doc.header.Model
	if model == "" {
		return Fail, "missing required field: model"
	}
	for _, m := range allowedModels {
		if model == m {
			return Pass, ""
		}
	}
	return Fail, fmt.Sprintf("model %q not one of %s", model, strings.Join(allowedModels, ", "))
}

// checkColor requires the field but treats its value as advisory: an
// unknown color is a warning, never a failure.
func checkColor(doc *document) (Outcome, string) {
	color := doc.header.Color
	if color == "" {
		return Fail, "missing required field: color"
	}
	for _, c := range commonColors {
		if color == c {
			return Pass, ""
		}
	}
	return Warn, fmt.Sprintf("uncommon color %q", color)
}

func checkBodyContent(doc *document) (Outcome, string) {
	n := 0
	for _, line := range doc.body {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	switch {
	case n >= substantialBody:
		return Pass, fmt.Sprintf("%d non-blank body lines", n)
	case n > 0:
		return Warn, fmt.Sprintf("only %d non-blank body lines", n)
	default:
		return Fail, "no content after header block"
	}
}

func checkHeading(doc *document) (Outcome, string) {
	for _, line := range doc.body {
		if strings.HasPrefix(line, "# ") {
			return Pass, ""
		}
	}
	return Warn, "no top-level heading in body"
}

func checkLineEndings(doc *document) (Outcome, string) {
	if bytes.ContainsRune(doc.raw, '\r') {
		return Fail, "carriage return characters found (expected unix line endings)"
	}
	return Pass, ""
}

func checkEncoding(doc *document) (Outcome, string) {
	if !utf8.Valid(doc.raw) {
		return Warn, "content is not valid UTF-8"
	}
	return Pass, ""
}

func checkLineLength(doc *document) (Outcome, string) {
	long := 0
	for _, line := range doc.lines {
		if utf8.RuneCountInString(line) > maxLineLength {
			long++
		}
	}
	if long > 0 {
		return Warn, fmt.Sprintf("%d line(s) exceed %d characters", long, maxLineLength)
	}
	return Pass, ""
}
