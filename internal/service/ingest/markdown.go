package ingest

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v2"
)

// Metadata is the YAML front matter of a markdown document.
type Metadata struct {
	Title  string   `yaml:"title"`
	Author string   `yaml:"author"`
	Tags   []string `yaml:"tags"`
	Date   string   `yaml:"date"`
}

// ExtractMetadata decodes the leading YAML front matter. Documents without a
// front matter block yield empty metadata.
func ExtractMetadata(source []byte) (*Metadata, error) {
	meta := &Metadata{}
	if !bytes.HasPrefix(bytes.TrimSpace(source), []byte("---")) {
		return meta, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(source))
	if err := decoder.Decode(meta); err != nil {
		return &Metadata{}, err
	}
	return meta, nil
}

// stripFrontMatter removes a leading YAML front matter block so it does not
// end up as chunk content (goldmark would read it as a setext heading).
func stripFrontMatter(source []byte) []byte {
	if !bytes.HasPrefix(bytes.TrimSpace(source), []byte("---")) {
		return source
	}
	idx := bytes.Index(source, []byte("---"))
	rest := source[idx+3:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return source
	}
	after := rest[end+4:]
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		after = nil
	}
	return after
}

// ParseMarkdown walks the markdown AST and collects chunks to embed:
// paragraphs (prefixed with their h1/h2 heading when directly preceded by
// one), fenced code blocks and lists. Plain text without any markdown
// structure comes back as paragraph chunks.
func ParseMarkdown(source []byte) []string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var chunks []string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindParagraph:
			content := paragraphText(n, source)
			if content == "" {
				return ast.WalkContinue, nil
			}
			if heading := precedingHeading(n, source); heading != "" {
				content = heading + "\n" + content
			}
			chunks = append(chunks, content)
			return ast.WalkSkipChildren, nil
		case ast.KindFencedCodeBlock:
			if content := codeBlockText(n.(*ast.FencedCodeBlock), source); content != "" {
				chunks = append(chunks, content)
			}
			return ast.WalkSkipChildren, nil
		case ast.KindList:
			if content := listText(n, source); content != "" {
				chunks = append(chunks, content)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return chunks
}

// precedingHeading returns the text of an h1/h2 sibling directly before the
// node, or "".
func precedingHeading(n ast.Node, source []byte) string {
	prev := n.PreviousSibling()
	if prev == nil || prev.Kind() != ast.KindHeading {
		return ""
	}
	heading := prev.(*ast.Heading)
	if heading.Level > 2 {
		return ""
	}
	return string(heading.Text(source))
}

func paragraphText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			buf.Write(child.Segment.Value(source))
			if child.SoftLineBreak() || child.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(child.Value)
		case *ast.CodeSpan, *ast.Emphasis, *ast.Link:
			buf.Write(child.Text(source))
		}
	}
	return buf.String()
}

func codeBlockText(fc *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := fc.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func listText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.ListItem:
			buf.WriteString(" - ")
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
