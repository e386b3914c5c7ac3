// Package export renders inventory report snapshots as downloadable files.
// Both formats consume the same frozen snapshot, so a PDF and a spreadsheet
// requested together can never disagree.
package export

import (
	"errors"
	"fmt"
	"strings"

	"stockroom/internal/domain"
)

type Kind string

const (
	KindPDF   Kind = "pdf"
	KindExcel Kind = "excel"
)

var ErrUnknownKind = errors.New("unknown export format")

// ParseKind maps the user-supplied format field onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return KindPDF, nil
	case "excel", "xlsx":
		return KindExcel, nil
	}
	return "", ErrUnknownKind
}

// Artifact is a rendered download ready to hand to the client.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Exporter renders a snapshot in the requested format.
type Exporter interface {
	Export(kind Kind, snap domain.ReportSnapshot) (Artifact, error)
}

// FileExporter renders PDFs and spreadsheets in-process.
type FileExporter struct{}

func (FileExporter) Export(kind Kind, snap domain.ReportSnapshot) (Artifact, error) {
	stamp := snap.GeneratedAt.Format("2006-01-02")
	switch kind {
	case KindPDF:
		data, err := renderPDF(snap)
		if err != nil {
			return Artifact{}, fmt.Errorf("render pdf: %w", err)
		}
		return Artifact{
			Filename:    "inventory-report-" + stamp + ".pdf",
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	case KindExcel:
		data, err := renderExcel(snap)
		if err != nil {
			return Artifact{}, fmt.Errorf("render spreadsheet: %w", err)
		}
		return Artifact{
			Filename:    "inventory-report-" + stamp + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	}
	return Artifact{}, ErrUnknownKind
}
