package orchestrator

import "github.com/local/scorefiler/internal/pdf"

// pdfDocuments is the production Documents implementation backed by the
// pdf package. It is the default when Dependencies.Docs is nil.
type pdfDocuments struct{}

func (pdfDocuments) Load(name string, data []byte) (Document, error) {
	d, err := pdf.Load(name, data)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (pdfDocuments) Merge(inputs []pdf.Input) ([]byte, error) {
	return pdf.Merge(inputs)
}
