package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// <w:t>, <w:t xml:space="preserve"> and friends; text runs never contain markup.
	wordRun  = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	slideRun = regexp.MustCompile(`<a:t(?:\s[^>]*)?>([^<]*)</a:t>`)
	// paragraph ends become newlines so extracted text keeps its line structure
	wordParagraph  = regexp.MustCompile(`</w:p>`)
	slideParagraph = regexp.MustCompile(`</a:p>`)
	slideNumber    = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
)

const wordBody = "word/document.xml"

func wordText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open DOCX: %w", err)
	}
	f, err := zr.Open(wordBody)
	if err != nil {
		return "", fmt.Errorf("open DOCX: %s: %w", wordBody, err)
	}
	defer f.Close()
	xml, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", wordBody, err)
	}
	return runsText(xml, wordRun, wordParagraph), nil
}

func slideText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PPTX: %w", err)
	}
	type slide struct {
		n    int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slideNumber.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n: n, file: f})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	parts := make([]string, 0, len(slides))
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", s.file.Name, err)
		}
		xml, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", s.file.Name, err)
		}
		if text := runsText(xml, slideRun, slideParagraph); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// runsText collects the text runs of an OOXML part, one output line per paragraph.
func runsText(xml []byte, run, paragraph *regexp.Regexp) string {
	var lines []string
	for _, para := range paragraph.Split(string(xml), -1) {
		var line strings.Builder
		for _, m := range run.FindAllStringSubmatch(para, -1) {
			line.WriteString(html.UnescapeString(m[1]))
		}
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}
