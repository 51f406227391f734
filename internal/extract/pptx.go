package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPptx emits one section per slide in deck order, labelled with the
// slide number.
func extractPptx(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}

	type slide struct {
		number int
		file   *zip.File
	}
	var slides []slide
	for _, file := range archive.File {
		match := slidePattern.FindStringSubmatch(file.Name)
		if match == nil {
			continue
		}
		number, _ := strconv.Atoi(match[1])
		slides = append(slides, slide{number: number, file: file})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var sb strings.Builder
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return "", fmt.Errorf("open slide %d: %w", s.number, err)
		}
		text, err := collectSlideText(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("slide %d: %w", s.number, err)
		}
		if text == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("Slide %d:\n%s\n", s.number, text))
	}
	return sb.String(), nil
}

// collectSlideText gathers the <a:t> runs of a slide, one paragraph per line.
func collectSlideText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	var inText bool
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode slide xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
