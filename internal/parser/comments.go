package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// maxLineSize bounds a single source line; minified stylesheets can be long
const maxLineSize = 4 * 1024 * 1024

// decorationPattern matches the " * " gutter used inside /* */ comments
var decorationPattern = regexp.MustCompile(`^\s*\*(\s|$)`)

// CommentExtractor returns the comment blocks of stylesheet sources with the
// comment syntax removed. Consecutive "//" lines form one block and every
// "/* */" comment forms one block. A comment must start a line or directly
// follow a closed "/* */" comment; comments after declarations are ignored.
type CommentExtractor struct{}

// NewCommentExtractor creates a new CommentExtractor
func NewCommentExtractor() *CommentExtractor {
	return &CommentExtractor{}
}

// ExtractBlocks reads the file at path and returns its comment blocks in
// source order
func (e *CommentExtractor) ExtractBlocks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	blocks, err := e.Extract(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return blocks, nil
}

// Extract returns the comment blocks read from r in source order
func (e *CommentExtractor) Extract(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		blocks      []string
		current     []string
		inSingle    bool
		inMultiLine bool
	)

	finish := func() {
		if block := normalizeBlock(current); block != "" {
			blocks = append(blocks, block)
		}
		current = nil
		inSingle = false
		inMultiLine = false
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if inMultiLine {
			end := strings.Index(line, "*/")
			if end < 0 {
				current = append(current, cleanMultiLine(line))
				continue
			}
			current = append(current, cleanMultiLine(line[:end]))
			finish()
			line = line[end+2:]
		} else if trimmed := strings.TrimLeft(line, " \t"); strings.HasPrefix(trimmed, "//") {
			inSingle = true
			current = append(current, strings.TrimPrefix(trimmed, "//"))
			continue
		} else if inSingle {
			finish()
		}

		// The rest of the line may open further comments
		for {
			trimmed := strings.TrimLeft(line, " \t")
			if strings.HasPrefix(trimmed, "//") {
				inSingle = true
				current = append(current, strings.TrimPrefix(trimmed, "//"))
				break
			}
			if !strings.HasPrefix(trimmed, "/*") {
				break
			}

			inner := trimmed[len("/*"):]
			end := strings.Index(inner, "*/")
			if end < 0 {
				inMultiLine = true
				current = append(current, strings.TrimLeft(inner, "*"))
				break
			}
			current = append(current, strings.TrimLeft(inner[:end], "*"))
			finish()
			line = inner[end+2:]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Unterminated comments still yield what was read
	finish()

	return blocks, nil
}

// cleanMultiLine strips the optional " * " gutter from a /* */ comment line
func cleanMultiLine(line string) string {
	if loc := decorationPattern.FindStringIndex(line); loc != nil {
		indent := line[:strings.Index(line, "*")]
		return indent + line[loc[1]:]
	}
	return line
}

// normalizeBlock trims trailing whitespace, surrounding blank lines and the
// indentation shared by all non-blank lines
func normalizeBlock(lines []string) string {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, strings.TrimRight(line, " \t"))
	}

	for len(cleaned) > 0 && cleaned[0] == "" {
		cleaned = cleaned[1:]
	}
	for len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
		cleaned = cleaned[:len(cleaned)-1]
	}
	if len(cleaned) == 0 {
		return ""
	}

	indent := -1
	for _, line := range cleaned {
		if line == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}

	for i, line := range cleaned {
		if len(line) >= indent {
			cleaned[i] = line[indent:]
		}
	}

	return strings.Join(cleaned, "\n")
}
