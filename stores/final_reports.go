package stores

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MrEthical07/backoffice/api"
	"github.com/MrEthical07/backoffice/artifact"
)

// FinalReports manages event final reports.
type FinalReports struct {
	base
	reports  []FinalReport
	selected *FinalReport
	last     *artifact.Artifact
}

func NewFinalReports(deps Deps) *FinalReports {
	s := &FinalReports{}
	s.init("final_reports", deps)
	return s
}

// Create uploads a report as multipart form data. A PDF in the response becomes
// the last artifact.
func (s *FinalReports) Create(ctx context.Context, req FinalReportRequest) error {
	return s.run("final_reports.create", func() error {
		fields := map[string]string{
			"event":      req.Event,
			"tanggal":    req.Date,
			"perusahaan": req.Company,
		}
		var env api.Envelope[Document]
		err := s.deps.API.PostMultipart(ctx, "/final-report/create", fields, req.Attachments, &env)
		if err == nil && env.Data.PDF != "" {
			var a artifact.Artifact
			a, err = toArtifact(env.Data, "final_report.pdf")
			if err == nil {
				s.setLast(a)
			}
		}
		s.report(ctx, "final_reports.create", err, "Final report created", "Failed to create final report")
		return err
	})
}

func (s *FinalReports) List(ctx context.Context) ([]FinalReport, error) {
	var out []FinalReport
	err := s.run("final_reports.list", func() error {
		data, err := fetch[[]FinalReport](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/final-report/all"})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.reports = data
		s.mu.Unlock()
		out = append([]FinalReport(nil), data...)
		return nil
	})
	return out, err
}

func (s *FinalReports) Get(ctx context.Context, id int64) (FinalReport, error) {
	var out FinalReport
	err := s.run("final_reports.get", func() error {
		s.mu.Lock()
		s.selected = nil
		s.mu.Unlock()

		data, err := fetch[FinalReport](ctx, &s.base, api.Request{Method: http.MethodGet, Path: idPath("/final-report/%s", id)})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.selected = &data
		s.mu.Unlock()
		out = data
		return nil
	})
	return out, err
}

// Download streams the stored PDF of a report.
func (s *FinalReports) Download(ctx context.Context, id int64) (artifact.Artifact, error) {
	var out artifact.Artifact
	err := s.run("final_reports.download", func() error {
		d, err := s.deps.API.Download(ctx, idPath("/final-report/%s/download", id))
		if err == nil {
			name := d.FileName
			if name == "" {
				name = fmt.Sprintf("final_report_%d.pdf", id)
			}
			out, err = artifact.FromBytes(d.Data, d.ContentType, name)
		}
		if err == nil {
			s.setLast(out)
		}
		s.report(ctx, "final_reports.download", err, "Final report downloaded", "Failed to download final report")
		return err
	})
	return out, err
}

func (s *FinalReports) setLast(a artifact.Artifact) {
	s.mu.Lock()
	s.last = &a
	s.mu.Unlock()
}

// LastArtifact returns the most recently created or downloaded PDF.
func (s *FinalReports) LastArtifact() (artifact.Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return artifact.Artifact{}, false
	}
	return *s.last, true
}

func (s *FinalReports) Reports() []FinalReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FinalReport(nil), s.reports...)
}

func (s *FinalReports) Selected() (FinalReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return FinalReport{}, false
	}
	return *s.selected, true
}
