package storage

import (
	"path/filepath"
	"testing"

	"leadflow/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "leads.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLeadLifecycleRoundTrip(t *testing.T) {
	db := openTestDB(t)

	leads := []internal.LeadRecord{
		{RowNo: 1, Source: internal.SourceXLSX, FirstName: "jane smith", Company: "Acme", Email: "jane@acme.com", Extra: map[string]string{"Notes": "warm"}},
		{RowNo: 2, Source: internal.SourceXLSX, FirstName: "Sales", Email: "sales@acme.com", Extra: map[string]string{}},
	}
	inserted, err := db.InsertLeads(nil, leads)
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 2 {
		t.Fatalf("inserted=%d", inserted)
	}

	pending, err := db.ListLeadsByLifecycle(internal.LeadImported, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending=%d", len(pending))
	}
	if pending[0].Lead.Extra["Notes"] != "warm" {
		t.Fatalf("extra lost: %+v", pending[0].Lead.Extra)
	}

	cleaned := pending[0].Lead
	cleaned.FirstName = "Jane"
	cleaned.LastName = "Smith"
	cleaned.Status = "Split FN to FN/LN; Processed"
	if err := db.MarkLeadNormalized(pending[0].ID, cleaned); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkLeadDropped(pending[1].ID, internal.DropInvalidName); err != nil {
		t.Fatal(err)
	}

	normalized, err := db.ListLeadsByLifecycle(internal.LeadNormalized, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(normalized) != 1 || normalized[0].Lead.FirstName != "Jane" {
		t.Fatalf("normalized: %+v", normalized)
	}

	if err := db.MarkLeadEnriched(normalized[0].ID, "https://www.linkedin.com/in/jane-smith", internal.LeadEnriched); err != nil {
		t.Fatal(err)
	}

	table, err := db.ExportTable(internal.LeadNormalized, internal.LeadEnriched, internal.LeadNotFound)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Leads) != 1 {
		t.Fatalf("export rows=%d", len(table.Leads))
	}
	if table.Leads[0].LinkedInURL != "https://www.linkedin.com/in/jane-smith" {
		t.Fatalf("url=%q", table.Leads[0].LinkedInURL)
	}
	// Passthrough columns come back after the managed set.
	last := table.Columns[len(table.Columns)-1]
	if last != "Notes" {
		t.Fatalf("columns=%v", table.Columns)
	}
}

func TestUpsertEmailIdempotent(t *testing.T) {
	db := openTestDB(t)

	first, err := db.UpsertEmail("imap", "<m1@example.com>", "Leads", "a@example.com", "2026-08-30T00:00:00Z", "h1", "/tmp/a.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.UpsertEmail("imap", "<m1@example.com>", "Leads updated", "a@example.com", "2026-08-30T00:05:00Z", "h2", "/tmp/a.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %d vs %d", first.ID, second.ID)
	}
	if second.Subject != "Leads updated" || second.Hash != "h2" {
		t.Fatalf("row not updated: %+v", second)
	}

	if err := db.UpdateEmailStatus(first.ID, "processed"); err != nil {
		t.Fatal(err)
	}
	rows, err := db.ListEmailsByStatus("processed", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != first.ID {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestClearEmailLeads(t *testing.T) {
	db := openTestDB(t)

	email, err := db.UpsertEmail("imap", "<m2@example.com>", "Leads", "a@example.com", "2026-08-30T00:00:00Z", "h", "/tmp/b.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertLeads(&email.ID, []internal.LeadRecord{
		{RowNo: 1, Source: internal.SourceEmailHTMLTable, Email: "jane@acme.com", Extra: map[string]string{}},
	}); err != nil {
		t.Fatal(err)
	}

	if err := db.ClearEmailLeads(email.ID); err != nil {
		t.Fatal(err)
	}
	leads, err := db.ListLeadsByEmail(email.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(leads) != 0 {
		t.Fatalf("leads=%d", len(leads))
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	if v, err := db.GetMetadata("cursor"); err != nil || v != nil {
		t.Fatalf("v=%v err=%v", v, err)
	}
	if err := db.SetMetadata("cursor", "42"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("cursor", "43"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMetadata("cursor")
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || *v != "43" {
		t.Fatalf("v=%v", v)
	}
}
