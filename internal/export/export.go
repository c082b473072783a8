// Package export renders the animal collection in downloadable formats.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"zookeeper/internal/infra/persistence/file"
	"zookeeper/pkg/domain"
)

// Format identifies an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported export format.
var Formats = []Format{FormatJSON, FormatCSV, FormatYAML, FormatXLSX}

// Columns is the tabular column order shared by csv and xlsx.
var Columns = []string{"id", "name", "species", "diet", "personalityTraits"}

// SheetName is the worksheet holding the animals in an xlsx export.
const SheetName = "Animals"

// Artifact is a rendered export.
type Artifact struct {
	Format      Format
	ContentType string
	Rows        int
	Payload     []byte
}

// ParseFormat maps a user supplied name (case-insensitive, "yml" accepted)
// to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatCSV, FormatYAML, FormatXLSX:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", name)
	}
}

// Render encodes animals in the requested format.
func Render(format Format, animals []domain.Animal) (Artifact, error) {
	if animals == nil {
		animals = []domain.Animal{}
	}
	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case FormatJSON:
		payload, err = file.Encode(domain.Snapshot{Animals: animals})
		contentType = "application/json"
	case FormatCSV:
		payload, err = renderCSV(animals)
		contentType = "text/csv"
	case FormatYAML:
		payload, err = renderYAML(animals)
		contentType = "application/yaml"
	case FormatXLSX:
		payload, err = renderXLSX(animals)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return Artifact{}, fmt.Errorf("unsupported export format %s", format)
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", format, err)
	}
	return Artifact{Format: format, ContentType: contentType, Rows: len(animals), Payload: payload}, nil
}

// Write renders animals and copies the payload to w.
func Write(w io.Writer, format Format, animals []domain.Animal) (Artifact, error) {
	artifact, err := Render(format, animals)
	if err != nil {
		return Artifact{}, err
	}
	if _, err := w.Write(artifact.Payload); err != nil {
		return Artifact{}, err
	}
	return artifact, nil
}

func row(a domain.Animal) []string {
	return []string{a.ID, a.Name, a.Species, a.Diet, strings.Join(a.PersonalityTraits, ",")}
}

func renderCSV(animals []domain.Animal) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(Columns); err != nil {
		return nil, err
	}
	for _, a := range animals {
		if err := writer.Write(row(a)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderYAML(animals []domain.Animal) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(domain.Snapshot{Animals: animals}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(animals []domain.Animal) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A1", &Columns); err != nil {
		return nil, err
	}
	for i, a := range animals {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := row(a)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
