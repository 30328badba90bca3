package ticket

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// pageWidthMM is the PDF page width; the height follows the bitmap aspect ratio.
const pageWidthMM = 200.0

func packagePDF(pngData []byte, width, height int, title string) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("package pdf: empty bitmap %dx%d", width, height)
	}
	pageHeight := float64(height) * pageWidthMM / float64(width)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageWidthMM, Ht: pageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("ticket", opts, bytes.NewReader(pngData))
	pdf.ImageOptions("ticket", 0, 0, pageWidthMM, pageHeight, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("package pdf: %w", err)
	}
	return buf.Bytes(), nil
}
