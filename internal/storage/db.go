package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"leadflow/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS leads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  emailId INTEGER,
  rowNo INTEGER NOT NULL,
  source TEXT NOT NULL,
  firstName TEXT NOT NULL DEFAULT '',
  lastName TEXT NOT NULL DEFAULT '',
  company TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  linkedinUrl TEXT NOT NULL DEFAULT '',
  processingStatus TEXT NOT NULL DEFAULT '',
  lifecycle TEXT NOT NULL DEFAULT 'imported',
  dropReason TEXT,
  extraJson TEXT NOT NULL DEFAULT '{}',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(emailId) REFERENCES emails(id)
);
CREATE INDEX IF NOT EXISTS idx_leads_lifecycle ON leads(lifecycle);
CREATE INDEX IF NOT EXISTS idx_leads_emailId ON leads(emailId);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);

CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  kind TEXT NOT NULL,
  emailId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(emailId) REFERENCES emails(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// StoredLead is a lead row plus its storage identity and lifecycle.
type StoredLead struct {
	ID         int
	EmailID    *int
	Lifecycle  string
	DropReason *string
	Lead       internal.LeadRecord
}

func (d *DB) InsertLeads(emailID *int, leads []internal.LeadRecord) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO leads (emailId, rowNo, source, firstName, lastName, company, email, linkedinUrl, processingStatus, lifecycle, extraJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, lead := range leads {
		extraJSON, _ := json.Marshal(lead.Extra)
		if _, err := stmt.Exec(
			emailID, lead.RowNo, string(lead.Source),
			lead.FirstName, lead.LastName, lead.Company, lead.Email,
			lead.LinkedInURL, lead.Status, internal.LeadImported, string(extraJSON),
		); err != nil {
			return inserted, err
		}
		inserted++
	}

	return inserted, tx.Commit()
}

func (d *DB) ListLeadsByLifecycle(lifecycle string, limit int) ([]StoredLead, error) {
	rows, err := d.conn.Query(`
SELECT id, emailId, rowNo, source, firstName, lastName, company, email, linkedinUrl, processingStatus, lifecycle, dropReason, extraJson
FROM leads WHERE lifecycle = ? ORDER BY id ASC LIMIT ?
`, lifecycle, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeads(rows)
}

func (d *DB) ListLeadsByEmail(emailID int) ([]StoredLead, error) {
	rows, err := d.conn.Query(`
SELECT id, emailId, rowNo, source, firstName, lastName, company, email, linkedinUrl, processingStatus, lifecycle, dropReason, extraJson
FROM leads WHERE emailId = ? ORDER BY rowNo ASC
`, emailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeads(rows)
}

func scanLeads(rows *sql.Rows) ([]StoredLead, error) {
	var out []StoredLead
	for rows.Next() {
		var s StoredLead
		var source, extraJSON string
		if err := rows.Scan(
			&s.ID, &s.EmailID, &s.Lead.RowNo, &source,
			&s.Lead.FirstName, &s.Lead.LastName, &s.Lead.Company, &s.Lead.Email,
			&s.Lead.LinkedInURL, &s.Lead.Status, &s.Lifecycle, &s.DropReason, &extraJSON,
		); err != nil {
			return nil, err
		}
		s.Lead.Source = internal.LeadSource(source)
		s.Lead.Extra = map[string]string{}
		_ = json.Unmarshal([]byte(extraJSON), &s.Lead.Extra)
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkLeadNormalized stores the cleaned fields and status trail.
func (d *DB) MarkLeadNormalized(id int, lead internal.LeadRecord) error {
	_, err := d.conn.Exec(`
UPDATE leads SET firstName = ?, lastName = ?, company = ?, email = ?, processingStatus = ?,
  lifecycle = ?, dropReason = NULL, updatedAt = CURRENT_TIMESTAMP
WHERE id = ?
`, lead.FirstName, lead.LastName, lead.Company, lead.Email, lead.Status, internal.LeadNormalized, id)
	return err
}

func (d *DB) MarkLeadDropped(id int, reason internal.DropReason) error {
	_, err := d.conn.Exec(`
UPDATE leads SET lifecycle = ?, dropReason = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, internal.LeadDropped, string(reason), id)
	return err
}

func (d *DB) MarkLeadEnriched(id int, linkedinURL, lifecycle string) error {
	_, err := d.conn.Exec(`
UPDATE leads SET linkedinUrl = ?, lifecycle = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, linkedinURL, lifecycle, id)
	return err
}

func (d *DB) ClearEmailLeads(emailID int) error {
	_, err := d.conn.Exec(`DELETE FROM leads WHERE emailId = ?`, emailID)
	return err
}

// ExportTable assembles a lead table for the given lifecycles, with
// passthrough columns restored as the union of stored extra keys.
func (d *DB) ExportTable(lifecycles ...string) (internal.LeadTable, error) {
	if len(lifecycles) == 0 {
		return internal.LeadTable{Columns: internal.ManagedColumns()}, nil
	}

	placeholders := ""
	args := make([]any, 0, len(lifecycles))
	for i, lc := range lifecycles {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, lc)
	}

	rows, err := d.conn.Query(`
SELECT id, emailId, rowNo, source, firstName, lastName, company, email, linkedinUrl, processingStatus, lifecycle, dropReason, extraJson
FROM leads WHERE lifecycle IN (`+placeholders+`) ORDER BY id ASC
`, args...)
	if err != nil {
		return internal.LeadTable{}, err
	}
	defer rows.Close()

	stored, err := scanLeads(rows)
	if err != nil {
		return internal.LeadTable{}, err
	}

	extraKeys := map[string]struct{}{}
	table := internal.LeadTable{}
	for i, s := range stored {
		lead := s.Lead
		lead.RowNo = i + 1
		table.Leads = append(table.Leads, lead)
		for k := range lead.Extra {
			extraKeys[k] = struct{}{}
		}
	}

	table.Columns = internal.ManagedColumns()
	sorted := make([]string, 0, len(extraKeys))
	for k := range extraKeys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	table.Columns = append(table.Columns, sorted...)

	return table, nil
}

func (d *DB) UpsertEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, errors.New("failed to upsert email")
	}
	return *row, nil
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustEmailByProviderMessageID(provider, messageID string) (internal.EmailRow, error) {
	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, fmt.Errorf("no email for provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) ListEmailsByStatus(status string, limit int) ([]internal.EmailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmailRow
	for rows.Next() {
		var row internal.EmailRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEmailStatus(emailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, emailID)
	return err
}

func (d *DB) InsertRun(traceID, kind string, emailID *int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, kind, emailId, timingsJson, countsJson) VALUES (?, ?, ?, ?, ?)`, traceID, kind, emailID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
