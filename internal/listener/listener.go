package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"leadflow/internal"
	"leadflow/internal/config"
	"leadflow/internal/connectors"
	gmailconnector "leadflow/internal/connectors/gmail"
	imapconnector "leadflow/internal/connectors/imap"
	"leadflow/internal/pipeline"
	"leadflow/internal/storage"
)

// Service polls a mailbox for lead-list emails, extracts and normalizes
// their rows, and optionally exports the cleaned list per email.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle() error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	processedEmails, imported, err := processor.ProcessPending(s.cfg.MailListenerProcessBatch, provider)
	if err != nil {
		return err
	}

	normalized, dropped, err := processor.NormalizePending(500)
	if err != nil {
		return err
	}

	if s.cfg.MailListenerAutoExport {
		if err := s.exportProcessed(provider); err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d emails=%d imported=%d normalized=%d dropped=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, processedEmails, imported, normalized, dropped)
	return nil
}

func (s *Service) exportProcessed(provider string) error {
	emails, err := s.db.ListEmailsByStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, email := range emails {
		if email.Provider != provider {
			continue
		}
		stored, err := s.db.ListLeadsByEmail(email.ID)
		if err != nil {
			return err
		}
		table := retainedTable(stored)
		if len(table.Leads) == 0 {
			continue
		}
		filename := fmt.Sprintf("%d_%s.xlsx", email.ID, sanitizeMessageID(email.MessageID))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
		if err := pipeline.ExportLeadsToXLSX(table, outputPath); err != nil {
			return err
		}
		_ = s.db.UpdateEmailStatus(email.ID, "exported")
	}
	return nil
}

// retainedTable keeps only leads that survived normalization; dropped
// rows stay out of the export, per the output contract.
func retainedTable(stored []storage.StoredLead) internal.LeadTable {
	table := internal.LeadTable{}
	extraKeys := map[string]struct{}{}
	for _, s := range stored {
		if s.Lifecycle == internal.LeadImported || s.Lifecycle == internal.LeadDropped {
			continue
		}
		lead := s.Lead
		lead.RowNo = len(table.Leads) + 1
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
	return table
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
