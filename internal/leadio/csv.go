// Package leadio reads lead CSV files and writes result exports.
package leadio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscore/internal/model"
)

// leadColumns maps recognized CSV header names to lead field setters.
var leadColumns = map[string]func(*model.Lead, string){
	"id":           func(l *model.Lead, v string) { l.ID = v },
	"name":         func(l *model.Lead, v string) { l.Name = v },
	"role":         func(l *model.Lead, v string) { l.Role = v },
	"company":      func(l *model.Lead, v string) { l.Company = v },
	"industry":     func(l *model.Lead, v string) { l.Industry = v },
	"location":     func(l *model.Lead, v string) { l.Location = v },
	"linkedin_bio": func(l *model.Lead, v string) { l.LinkedInBio = v },
}

// ReadLeads parses a lead CSV. The first row is the header; unrecognized
// columns are ignored and missing columns leave fields blank.
func ReadLeads(r io.Reader) ([]model.Lead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("leadio: empty csv")
	}
	if err != nil {
		return nil, eris.Wrap(err, "leadio: read header")
	}

	setters := make([]func(*model.Lead, string), len(header))
	for i, col := range header {
		setters[i] = leadColumns[strings.ToLower(strings.TrimSpace(col))]
	}

	var leads []model.Lead
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "leadio: read row")
		}

		var lead model.Lead
		for i, field := range record {
			if i < len(setters) && setters[i] != nil {
				setters[i](&lead, strings.TrimSpace(field))
			}
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// resultHeader is the export column order.
var resultHeader = []string{"name", "role", "company", "industry", "location", "intent", "score", "reasoning"}

// WriteResults writes stored results as CSV.
func WriteResults(w io.Writer, results []model.StoredResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(resultHeader); err != nil {
		return eris.Wrap(err, "leadio: write header")
	}

	for _, r := range results {
		row := []string{
			r.Lead.Name,
			r.Lead.Role,
			r.Lead.Company,
			r.Lead.Industry,
			r.Lead.Location,
			string(r.Intent),
			fmt.Sprintf("%d", r.Score),
			r.Reasoning,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "leadio: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "leadio: flush")
}
