package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractPDF(t *testing.T) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.AddPage()
	doc.SetFont("Arial", "", 12)
	doc.Cell(80, 10, "Quarterly depreciation schedule")

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))

	text, err := New(nil).Extract("schedule.pdf", "application/pdf", buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, text, "depreciation")
}

func TestExtractPDFMalformed(t *testing.T) {
	_, err := New(nil).Extract("broken.pdf", "application/pdf", []byte("%PDF-1.4 garbage"))
	assert.Error(t, err)
}

func TestExtractXlsx(t *testing.T) {
	wb := excelize.NewFile()
	require.NoError(t, wb.SetCellValue("Sheet1", "A1", "Account"))
	require.NoError(t, wb.SetCellValue("Sheet1", "B1", "Balance"))
	require.NoError(t, wb.SetCellValue("Sheet1", "A2", "Cash"))
	require.NoError(t, wb.SetCellValue("Sheet1", "B2", 1250))

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	text, extractErr := New(nil).Extract("balances.xlsx", "", buf.Bytes())
	require.NoError(t, extractErr)

	assert.Contains(t, text, "## Sheet1")
	assert.Contains(t, text, "Account | Balance")
	assert.Contains(t, text, "Cash | 1250")
}

func TestExtractDocx(t *testing.T) {
	data := buildZip(t, map[string]string{
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Debits on the left.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Credits on the</w:t></w:r><w:r><w:t xml:space="preserve"> right.</w:t></w:r></w:p>
  </w:body>
</w:document>`,
	})

	text, err := New(nil).Extract("notes.docx", "", data)
	require.NoError(t, err)
	assert.Equal(t, "Debits on the left.\nCredits on the right.", text)
}

func TestExtractDocxWithoutDocument(t *testing.T) {
	data := buildZip(t, map[string]string{"word/styles.xml": "<styles/>"})

	_, err := New(nil).Extract("notes.docx", "", data)
	assert.Error(t, err)
}

func TestExtractPptxOrdersSlides(t *testing.T) {
	slide := func(body string) string {
		return `<?xml version="1.0"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody>
    <a:p><a:r><a:t>` + body + `</a:t></a:r></a:p>
  </p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`
	}
	data := buildZip(t, map[string]string{
		"ppt/slides/slide10.xml": slide("Closing entries"),
		"ppt/slides/slide2.xml":  slide("Trial balance"),
		"ppt/slides/slide1.xml":  slide("The accounting cycle"),
	})

	text, err := New(nil).Extract("lecture.pptx", "", data)
	require.NoError(t, err)

	first := "Slide 1:\nThe accounting cycle"
	second := "Slide 2:\nTrial balance"
	tenth := "Slide 10:\nClosing entries"
	assert.Contains(t, text, first)
	assert.Contains(t, text, second)
	assert.Contains(t, text, tenth)
	assert.Less(t, bytes.Index([]byte(text), []byte(first)), bytes.Index([]byte(text), []byte(second)))
	assert.Less(t, bytes.Index([]byte(text), []byte(second)), bytes.Index([]byte(text), []byte(tenth)),
		"slide10 sorts after slide2 numerically, not lexically")
}

func TestExtractPlainTextScrubsInvalidUTF8(t *testing.T) {
	text, err := New(nil).Extract("readme.txt", "text/plain", []byte{'H', 'i', 0xff, 0x00, '!'})
	require.NoError(t, err)
	assert.Equal(t, "Hi�!", text)
}

func TestSupported(t *testing.T) {
	e := New(nil)

	cases := []struct {
		name        string
		contentType string
		want        bool
	}{
		{"syllabus.pdf", "", true},
		{"notes.DOCX", "", true},
		{"grades.xlsx", "", true},
		{"deck.pptx", "", true},
		{"readme.md", "", true},
		{"data.csv", "", true},
		{"noext", "application/pdf", true},
		{"noext", "text/markdown", true},
		{"video.mp4", "video/mp4", false},
		{"archive.zip", "application/zip", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, e.Supported(tc.name, tc.contentType), "%s / %s", tc.name, tc.contentType)
	}
}

func TestExtractUnsupported(t *testing.T) {
	_, err := New(nil).Extract("video.mp4", "video/mp4", nil)
	assert.ErrorContains(t, err, "unsupported")
}
