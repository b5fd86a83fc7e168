package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"leadflow/internal"
	"leadflow/internal/config"
	"leadflow/internal/storage"
)

func TestSmokeEmailToXLSX(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "leads.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	raw := []byte("From: sender@example.com\r\n" +
		"To: intake@example.com\r\n" +
		"Subject: Fresh leads for outreach\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><table>" +
		"<tr><th>First Name</th><th>Last Name</th><th>Company</th><th>Email Address</th></tr>" +
		"<tr><td>jane smith</td><td></td><td>Acme</td><td>jane@acme.com</td></tr>" +
		"<tr><td>Sales</td><td>Team</td><td>Acme</td><td>sales@acme.com</td></tr>" +
		"</table></body></html>\r\n")
	rawPath := filepath.Join(tmp, "fixture.eml")
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	email, err := db.UpsertEmail("imap", "<fixture-1@example.com>", "Fresh leads for outreach", "sender@example.com", "2026-08-30T00:00:00Z", "hash", rawPath, "fetched")
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	proc := NewProcessingService(db, cfg)

	res, err := proc.ProcessEmail(email)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 2 {
		t.Fatalf("imported=%d", res.Imported)
	}

	normalized, dropped, err := proc.NormalizePending(100)
	if err != nil {
		t.Fatal(err)
	}
	if normalized != 1 || dropped != 1 {
		t.Fatalf("normalized=%d dropped=%d", normalized, dropped)
	}

	resolver := &fakeResolver{byEmail: map[string]string{
		"jane@acme.com": "https://www.linkedin.com/in/jane-smith",
	}}
	found, missed, err := proc.EnrichPending(context.Background(), resolver, 0)
	if err != nil {
		t.Fatal(err)
	}
	if found != 1 || missed != 0 {
		t.Fatalf("found=%d missed=%d", found, missed)
	}

	table, err := db.ExportTable(internal.LeadNormalized, internal.LeadEnriched, internal.LeadNotFound)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Leads) != 1 {
		t.Fatalf("export rows=%d", len(table.Leads))
	}
	exported := table.Leads[0]
	if exported.FirstName != "Jane" || exported.LastName != "Smith" {
		t.Fatalf("exported lead: %+v", exported)
	}
	if exported.LinkedInURL != "https://www.linkedin.com/in/jane-smith" {
		t.Fatalf("url=%q", exported.LinkedInURL)
	}

	out := filepath.Join(tmp, "result.xlsx")
	if err := ExportLeadsToXLSX(table, out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}

func TestSmokeSkipsNonLeadEmail(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "leads.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	raw := []byte("From: sender@example.com\r\n" +
		"Subject: Re: meeting on Thursday\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"See you at 10.\r\n")
	rawPath := filepath.Join(tmp, "plain.eml")
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	email, err := db.UpsertEmail("imap", "<plain-1@example.com>", "Re: meeting on Thursday", "sender@example.com", "2026-08-30T00:00:00Z", "hash", rawPath, "fetched")
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	proc := NewProcessingService(db, cfg)
	res, err := proc.ProcessEmail(email)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 0 {
		t.Fatalf("imported=%d", res.Imported)
	}

	row, err := db.GetEmailByProviderMessageID("imap", "<plain-1@example.com>")
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || row.Status != "skipped" {
		t.Fatalf("email row: %+v", row)
	}
}
