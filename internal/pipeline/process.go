package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"leadflow/internal"
	"leadflow/internal/config"
	"leadflow/internal/storage"
	"leadflow/internal/util"
)

// ProcessingService runs the persisted-batch workflow: extract leads
// from fetched emails or imported files, normalize pending leads,
// enrich normalized leads.
type ProcessingService struct {
	db   *storage.DB
	cfg  config.Config
	norm *Normalizer
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, norm: NewNormalizer(DefaultRefSets())}
}

type ProcessResult struct {
	EmailID  int
	Imported int
}

func (s *ProcessingService) ProcessByProviderMessageID(provider, messageID string) (ProcessResult, error) {
	email, err := s.db.MustEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessEmail(email)
}

func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListEmailsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedEmails := 0
	importedLeads := 0
	for _, email := range pending {
		if provider != "" && email.Provider != provider {
			continue
		}
		res, err := s.ProcessEmail(email)
		if err != nil {
			return processedEmails, importedLeads, err
		}
		processedEmails++
		importedLeads += res.Imported
	}
	return processedEmails, importedLeads, nil
}

// ProcessEmail extracts lead rows from a stored raw message. Messages
// that do not look like lead lists are marked skipped.
func (s *ProcessingService) ProcessEmail(email internal.EmailRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	table, subject, text, attachmentNames, err := ExtractLeadsFromEmailRaw(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	detect := DetectLeadList(util.FirstNonEmpty(subject, email.Subject), text, "", attachmentNames)
	if err := s.db.ClearEmailLeads(email.ID); err != nil {
		return ProcessResult{}, err
	}

	if !detect.IsLeadList {
		_ = s.db.UpdateEmailStatus(email.ID, "skipped")
		_ = s.db.InsertRun(traceID(), "mail_process", &email.ID,
			map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
			map[string]int{"imported": 0})
		return ProcessResult{EmailID: email.ID, Imported: 0}, nil
	}

	imported, err := s.db.InsertLeads(&email.ID, table.Leads)
	if err != nil {
		return ProcessResult{}, err
	}

	if err := s.db.UpdateEmailStatus(email.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(traceID(), "mail_process", &email.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"imported": imported})

	return ProcessResult{EmailID: email.ID, Imported: imported}, nil
}

// ImportFile loads a lead file straight into the store.
func (s *ProcessingService) ImportFile(inputType, path string) (int, error) {
	table, err := ExtractLeadsFromInput(inputType, path)
	if err != nil {
		return 0, err
	}
	return s.db.InsertLeads(nil, table.Leads)
}

// NormalizePending runs the heuristic chain over imported leads,
// promoting survivors and recording drop reasons for the rest.
func (s *ProcessingService) NormalizePending(batch int) (int, int, error) {
	start := time.Now()
	pending, err := s.db.ListLeadsByLifecycle(internal.LeadImported, batch)
	if err != nil {
		return 0, 0, err
	}

	normalized, dropped := 0, 0
	for _, stored := range pending {
		cleaned, reason, ok := s.norm.Normalize(stored.Lead)
		if !ok {
			if err := s.db.MarkLeadDropped(stored.ID, reason); err != nil {
				return normalized, dropped, err
			}
			dropped++
			continue
		}
		if err := s.db.MarkLeadNormalized(stored.ID, cleaned); err != nil {
			return normalized, dropped, err
		}
		normalized++
	}

	_ = s.db.InsertRun(traceID(), "normalize", nil,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"normalized": normalized, "dropped": dropped})

	return normalized, dropped, nil
}

// EnrichPending resolves profile URLs for normalized leads, up to limit
// rows (all when limit <= 0).
func (s *ProcessingService) EnrichPending(ctx context.Context, resolver ProfileResolver, limit int) (int, int, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 1 << 30
	}
	pending, err := s.db.ListLeadsByLifecycle(internal.LeadNormalized, limit)
	if err != nil {
		return 0, 0, err
	}

	found, missed := 0, 0
	for _, stored := range pending {
		lead := stored.Lead
		url, ok := resolver.Resolve(ctx, lead.FirstName, lead.LastName, lead.Company, lead.Email)
		if ok {
			fmt.Printf("lead %d: found %s\n", stored.ID, url)
			if err := s.db.MarkLeadEnriched(stored.ID, url, internal.LeadEnriched); err != nil {
				return found, missed, err
			}
			found++
		} else {
			fmt.Printf("lead %d: no profile found\n", stored.ID)
			if err := s.db.MarkLeadEnriched(stored.ID, NotFoundMarker, internal.LeadNotFound); err != nil {
				return found, missed, err
			}
			missed++
		}

		select {
		case <-ctx.Done():
			return found, missed, ctx.Err()
		default:
		}
	}

	_ = s.db.InsertRun(traceID(), "enrich", nil,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"found": found, "missed": missed})

	return found, missed, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
