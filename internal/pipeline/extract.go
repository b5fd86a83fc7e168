package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"leadflow/internal"
	"leadflow/internal/util"
)

// ExtractLeadsFromInput reads a lead list from a file path, dispatching
// on the declared input type.
func ExtractLeadsFromInput(inputType, path string) (internal.LeadTable, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.LeadTable{}, err
	}
	switch inputType {
	case "xlsx":
		return parseXLSXLeads(blob, internal.SourceXLSX)
	case "csv":
		return parseCSVLeads(blob, internal.SourceCSV)
	case "pdf":
		return parsePDFLeads(blob, internal.SourcePDF)
	case "eml":
		table, _, _, _, err := ExtractLeadsFromEmailRaw(blob)
		return table, err
	default:
		return internal.LeadTable{}, fmt.Errorf("unsupported input type: %s", inputType)
	}
}

// ExtractLeadsFromEmailRaw pulls lead rows out of a raw RFC 822 message:
// xlsx/csv/pdf attachments first, then any HTML table in the body.
func ExtractLeadsFromEmailRaw(raw []byte) (internal.LeadTable, string, string, []string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return internal.LeadTable{}, "", "", nil, err
	}

	table := internal.LeadTable{}
	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)
		lower := strings.ToLower(filename)

		var extra internal.LeadTable
		var parseErr error
		switch {
		case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
			extra, parseErr = parseXLSXLeads(att.Content, internal.SourceEmailXLSX)
		case strings.HasSuffix(lower, ".csv"):
			extra, parseErr = parseCSVLeads(att.Content, internal.SourceEmailCSV)
		case strings.HasSuffix(lower, ".pdf"):
			extra, parseErr = parsePDFLeads(att.Content, internal.SourceEmailPDF)
		default:
			continue
		}
		if parseErr != nil {
			continue
		}
		mergeTables(&table, extra)
	}

	if env.HTML != "" {
		mergeTables(&table, parseHTMLTableLeads(env.HTML))
	}

	table.Leads = dedupeLeads(table.Leads)
	for i := range table.Leads {
		table.Leads[i].RowNo = i + 1
	}
	if len(table.Columns) == 0 {
		table.Columns = internal.ManagedColumns()
	}

	return table, env.GetHeader("Subject"), env.Text, attachmentNames, nil
}

func parseXLSXLeads(content []byte, source internal.LeadSource) (internal.LeadTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return internal.LeadTable{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return internal.LeadTable{}, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return internal.LeadTable{}, err
	}
	return tableFromRows(rows, source), nil
}

func parseCSVLeads(content []byte, source internal.LeadSource) (internal.LeadTable, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	rows := [][]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return internal.LeadTable{}, err
		}
		rows = append(rows, record)
	}
	return tableFromRows(rows, source), nil
}

// tableFromRows builds a LeadTable from a header row plus data rows.
// Unknown columns are kept as passthrough; missing managed columns are
// appended so every record has all six fields addressable.
func tableFromRows(rows [][]string, source internal.LeadSource) internal.LeadTable {
	table := internal.LeadTable{}
	if len(rows) == 0 {
		table.Columns = internal.ManagedColumns()
		return table
	}

	headers := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		headers = append(headers, util.NormalizeSpaces(h))
	}
	table.Columns = mergeColumns(headers)

	for i, row := range rows[1:] {
		lead := internal.LeadRecord{
			RowNo:  i + 1,
			Source: source,
			Extra:  map[string]string{},
		}
		empty := true
		for c, header := range headers {
			value := ""
			if c < len(row) {
				value = strings.TrimSpace(row[c])
			}
			if value != "" {
				empty = false
			}
			assignCell(&lead, header, value)
		}
		if empty {
			continue
		}
		table.Leads = append(table.Leads, lead)
	}
	return table
}

func parseHTMLTableLeads(html string) internal.LeadTable {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return internal.LeadTable{}
	}

	out := internal.LeadTable{}
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		trs := sel.Find("tr")
		if trs.Length() < 2 {
			return
		}

		headers := []string{}
		trs.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, util.NormalizeSpaces(cell.Text()))
		})
		if !hasManagedHeader(headers) {
			return
		}

		rows := [][]string{headers}
		trs.Slice(1, trs.Length()).Each(func(_ int, tr *goquery.Selection) {
			cells := []string{}
			tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		mergeTables(&out, tableFromRows(rows, internal.SourceEmailHTMLTable))
	})
	return out
}

var reEmailToken = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// parsePDFLeads recovers lead rows from PDF text lines. A line counts as
// a lead when it contains an email token; tokens before the email are
// treated as the name, tokens after it as the company.
func parsePDFLeads(content []byte, source internal.LeadSource) (internal.LeadTable, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return internal.LeadTable{}, err
	}

	table := internal.LeadTable{Columns: internal.ManagedColumns()}
	rowNo := 0
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range splitLines(text) {
			lead, ok := leadFromTextLine(line, source)
			if !ok {
				continue
			}
			rowNo++
			lead.RowNo = rowNo
			table.Leads = append(table.Leads, lead)
		}
	}
	return table, nil
}

func leadFromTextLine(line string, source internal.LeadSource) (internal.LeadRecord, bool) {
	loc := reEmailToken.FindStringIndex(line)
	if loc == nil {
		return internal.LeadRecord{}, false
	}

	email := line[loc[0]:loc[1]]
	name := util.NormalizeSpaces(strings.Trim(line[:loc[0]], " \t<>,;|"))
	company := util.NormalizeSpaces(strings.Trim(line[loc[1]:], " \t<>,;|"))

	lead := internal.LeadRecord{
		Source:    source,
		FirstName: name,
		Company:   company,
		Email:     email,
		Extra:     map[string]string{},
	}
	return lead, true
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// canonicalColumn maps a header to its managed column name, or "".
func canonicalColumn(header string) string {
	for _, col := range internal.ManagedColumns() {
		if strings.EqualFold(util.NormalizeSpaces(header), col) {
			return col
		}
	}
	// Common aliases seen in exported lead lists.
	switch strings.ToLower(util.NormalizeSpaces(header)) {
	case "email", "e-mail", "e-mail address":
		return internal.ColEmailAddress
	case "linkedin", "linkedin profile":
		return internal.ColLinkedInURL
	case "company name", "organisation", "organization":
		return internal.ColCompany
	}
	return ""
}

func hasManagedHeader(headers []string) bool {
	for _, h := range headers {
		if canonicalColumn(h) != "" {
			return true
		}
	}
	return false
}

func assignCell(lead *internal.LeadRecord, header, value string) {
	switch canonicalColumn(header) {
	case internal.ColFirstName:
		lead.FirstName = value
	case internal.ColLastName:
		lead.LastName = value
	case internal.ColCompany:
		lead.Company = value
	case internal.ColEmailAddress:
		lead.Email = value
	case internal.ColLinkedInURL:
		lead.LinkedInURL = value
	case internal.ColProcessingStatus:
		lead.Status = value
	default:
		if header != "" {
			lead.Extra[header] = value
		}
	}
}

func mergeColumns(headers []string) []string {
	columns := make([]string, 0, len(headers)+6)
	have := map[string]bool{}
	for _, h := range headers {
		if h == "" {
			continue
		}
		columns = append(columns, h)
		if canonical := canonicalColumn(h); canonical != "" {
			have[canonical] = true
		}
	}
	for _, col := range internal.ManagedColumns() {
		if !have[col] {
			columns = append(columns, col)
		}
	}
	return columns
}

func mergeTables(dst *internal.LeadTable, src internal.LeadTable) {
	if len(dst.Columns) == 0 {
		dst.Columns = src.Columns
	}
	dst.Leads = append(dst.Leads, src.Leads...)
}

func dedupeLeads(leads []internal.LeadRecord) []internal.LeadRecord {
	seen := map[string]struct{}{}
	out := make([]internal.LeadRecord, 0, len(leads))
	for _, lead := range leads {
		key := strings.ToLower(lead.Email) + "|" + strings.ToLower(lead.FirstName) + "|" + strings.ToLower(lead.LastName)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, lead)
	}
	return out
}
