package stores

import (
	"context"
	"net/http"

	"github.com/MrEthical07/backoffice/api"
	"github.com/MrEthical07/backoffice/artifact"
)

// Invoices generates invoice PDFs.
type Invoices struct {
	base
}

func NewInvoices(deps Deps) *Invoices {
	s := &Invoices{}
	s.init("invoices", deps)
	return s
}

// Create submits inv and returns the generated PDF.
func (s *Invoices) Create(ctx context.Context, inv Invoice) (artifact.Artifact, error) {
	var out artifact.Artifact
	err := s.run("invoices.create", func() error {
		doc, err := fetch[Document](ctx, &s.base, api.Request{Method: http.MethodPost, Path: "/invoice/create", Body: inv})
		if err == nil {
			out, err = toArtifact(doc, "invoice.pdf")
		}
		s.report(ctx, "invoices.create", err, "Invoice created", "Failed to create invoice")
		return err
	})
	return out, err
}
