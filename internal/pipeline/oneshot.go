package pipeline

import (
	"context"

	"leadflow/internal"
)

type CleanSummary struct {
	Read     int
	Retained int
}

// CleanFile runs the normalization pass file-to-file: rows that fail a
// gate are absent from the output, surviving rows carry a status trail.
func CleanFile(norm *Normalizer, inputType, inputPath, outputPath string) (CleanSummary, error) {
	table, err := ExtractLeadsFromInput(inputType, inputPath)
	if err != nil {
		return CleanSummary{}, err
	}

	cleaned := NormalizeTable(norm, table)
	summary := CleanSummary{Read: len(table.Leads), Retained: len(cleaned.Leads)}
	if err := ExportLeadsToXLSX(cleaned, outputPath); err != nil {
		return summary, err
	}
	return summary, nil
}

// NormalizeTable applies the heuristic chain to every row, keeping only
// survivors. Row numbering is rebuilt over the retained set.
func NormalizeTable(norm *Normalizer, table internal.LeadTable) internal.LeadTable {
	out := internal.LeadTable{Columns: table.Columns}
	for _, lead := range table.Leads {
		cleaned, _, ok := norm.Normalize(lead)
		if !ok {
			continue
		}
		cleaned.RowNo = len(out.Leads) + 1
		out.Leads = append(out.Leads, cleaned)
	}
	return out
}

// EnrichFile runs the enrichment pass file-to-file over the first
// `limit` rows (all rows when limit <= 0), matching the reference
// behavior of truncating the output to the processed subset.
func EnrichFile(ctx context.Context, resolver ProfileResolver, inputType, inputPath, outputPath string, limit int) (EnrichSummary, error) {
	table, err := ExtractLeadsFromInput(inputType, inputPath)
	if err != nil {
		return EnrichSummary{}, err
	}
	if limit > 0 && len(table.Leads) > limit {
		table.Leads = table.Leads[:limit]
	}

	summary := EnrichTable(ctx, resolver, &table)
	if err := ExportLeadsToXLSX(table, outputPath); err != nil {
		return summary, err
	}
	return summary, nil
}
