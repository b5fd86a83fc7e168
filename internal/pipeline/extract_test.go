package pipeline

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"leadflow/internal"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestParseXLSXLeads(t *testing.T) {
	blob := mkXLSX([][]any{
		{"First Name", "Last Name", "Company", "Email Address", "Notes"},
		{"Jane", "Smith", "Acme", "jane@acme.com", "warm intro"},
		{"Bob", "", "", "bob@widgets.io", ""},
		{"", "", "", "", ""},
	})

	table, err := parseXLSXLeads(blob, internal.SourceXLSX)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Leads) != 2 {
		t.Fatalf("len=%d", len(table.Leads))
	}

	first := table.Leads[0]
	if first.FirstName != "Jane" || first.LastName != "Smith" || first.Email != "jane@acme.com" {
		t.Fatalf("unexpected first lead: %+v", first)
	}
	if first.Extra["Notes"] != "warm intro" {
		t.Fatalf("passthrough column lost: %+v", first.Extra)
	}
	if first.Source != internal.SourceXLSX {
		t.Fatalf("source=%s", first.Source)
	}
}

func TestParseCSVLeads(t *testing.T) {
	csvBlob := []byte("email,company name,First Name\njane@acme.com,Acme,Jane\nbob@widgets.io,,Bob\n")

	table, err := parseCSVLeads(csvBlob, internal.SourceCSV)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Leads) != 2 {
		t.Fatalf("len=%d", len(table.Leads))
	}
	if table.Leads[0].Email != "jane@acme.com" {
		t.Fatalf("alias header not mapped: %+v", table.Leads[0])
	}
	if table.Leads[0].Company != "Acme" {
		t.Fatalf("company alias not mapped: %+v", table.Leads[0])
	}
}

func TestCanonicalColumn(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{header: "First Name", want: internal.ColFirstName},
		{header: "first name", want: internal.ColFirstName},
		{header: "E-Mail", want: internal.ColEmailAddress},
		{header: "LinkedIn", want: internal.ColLinkedInURL},
		{header: "Organisation", want: internal.ColCompany},
		{header: "Notes", want: ""},
	}

	for _, tc := range cases {
		if got := canonicalColumn(tc.header); got != tc.want {
			t.Fatalf("canonicalColumn(%q)=%q want %q", tc.header, got, tc.want)
		}
	}
}

func TestMergeColumnsAppendsManaged(t *testing.T) {
	columns := mergeColumns([]string{"Email", "Notes"})

	hasLinkedIn := false
	for _, c := range columns {
		if c == internal.ColLinkedInURL {
			hasLinkedIn = true
		}
		if c == internal.ColEmailAddress {
			t.Fatal("canonical email column duplicated alongside alias")
		}
	}
	if !hasLinkedIn {
		t.Fatalf("managed columns not appended: %v", columns)
	}
	if columns[0] != "Email" || columns[1] != "Notes" {
		t.Fatalf("input order not preserved: %v", columns)
	}
}

func TestDedupeLeads(t *testing.T) {
	leads := []internal.LeadRecord{
		{FirstName: "Jane", LastName: "Smith", Email: "jane@acme.com"},
		{FirstName: "jane", LastName: "smith", Email: "JANE@acme.com"},
		{FirstName: "Bob", LastName: "Jones", Email: "bob@acme.com"},
	}

	out := dedupeLeads(leads)
	if len(out) != 2 {
		t.Fatalf("len=%d", len(out))
	}
}

func TestLeadFromTextLine(t *testing.T) {
	lead, ok := leadFromTextLine("Jane Smith <jane.smith@acme.com> Acme Corp", internal.SourcePDF)
	if !ok {
		t.Fatal("line with email not recognized")
	}
	if lead.Email != "jane.smith@acme.com" || lead.FirstName != "Jane Smith" || lead.Company != "Acme Corp" {
		t.Fatalf("unexpected lead: %+v", lead)
	}

	if _, ok := leadFromTextLine("no contact data here", internal.SourcePDF); ok {
		t.Fatal("line without email accepted")
	}
}

func TestExtractLeadsFromEmailRawHTMLTable(t *testing.T) {
	raw := []byte("From: sender@example.com\r\n" +
		"To: intake@example.com\r\n" +
		"Subject: Fresh leads for outreach\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><p>Hi, list attached below.</p>" +
		"<table>" +
		"<tr><th>First Name</th><th>Last Name</th><th>Company</th><th>Email Address</th></tr>" +
		"<tr><td>Jane</td><td>Smith</td><td>Acme</td><td>jane@acme.com</td></tr>" +
		"<tr><td>Bob</td><td>Jones</td><td></td><td>bob@widgets.io</td></tr>" +
		"</table></body></html>\r\n")

	table, subject, _, attachments, err := ExtractLeadsFromEmailRaw(raw)
	if err != nil {
		t.Fatal(err)
	}
	if subject != "Fresh leads for outreach" {
		t.Fatalf("subject=%q", subject)
	}
	if len(attachments) != 0 {
		t.Fatalf("attachments=%v", attachments)
	}
	if len(table.Leads) != 2 {
		t.Fatalf("len=%d", len(table.Leads))
	}
	if table.Leads[0].Email != "jane@acme.com" || table.Leads[0].Source != internal.SourceEmailHTMLTable {
		t.Fatalf("unexpected lead: %+v", table.Leads[0])
	}
	if table.Leads[0].RowNo != 1 || table.Leads[1].RowNo != 2 {
		t.Fatalf("row numbering: %d, %d", table.Leads[0].RowNo, table.Leads[1].RowNo)
	}
}

func TestExtractLeadsFromEmailRawXLSXAttachment(t *testing.T) {
	blob := mkXLSX([][]any{
		{"First Name", "Last Name", "Company", "Email Address"},
		{"Jane", "Smith", "Acme", "jane@acme.com"},
	})
	raw := buildAttachmentEmail(t, "leads.xlsx", blob)

	table, _, _, attachments, err := ExtractLeadsFromEmailRaw(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(attachments) != 1 || attachments[0] != "leads.xlsx" {
		t.Fatalf("attachments=%v", attachments)
	}
	if len(table.Leads) != 1 {
		t.Fatalf("len=%d", len(table.Leads))
	}
	if table.Leads[0].Source != internal.SourceEmailXLSX {
		t.Fatalf("source=%s", table.Leads[0].Source)
	}
}

func buildAttachmentEmail(t *testing.T, filename string, content []byte) []byte {
	t.Helper()

	boundary := "lead-test-boundary"
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, "From: sender@example.com\r\n")
	fmt.Fprintf(buf, "To: intake@example.com\r\n")
	fmt.Fprintf(buf, "Subject: Lead list\r\n")
	fmt.Fprintf(buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(buf, "--%s\r\n", boundary)
	fmt.Fprintf(buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(buf, "Leads attached.\r\n")
	fmt.Fprintf(buf, "--%s\r\n", boundary)
	fmt.Fprintf(buf, "Content-Type: application/octet-stream\r\n")
	fmt.Fprintf(buf, "Content-Disposition: attachment; filename=%q\r\n", filename)
	fmt.Fprintf(buf, "Content-Transfer-Encoding: base64\r\n\r\n")
	buf.WriteString(base64.StdEncoding.EncodeToString(content))
	fmt.Fprintf(buf, "\r\n--%s--\r\n", boundary)
	return buf.Bytes()
}
