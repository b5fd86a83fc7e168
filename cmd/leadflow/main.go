package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"leadflow/internal"
	"leadflow/internal/config"
	"leadflow/internal/connectors"
	gmailconnector "leadflow/internal/connectors/gmail"
	imapconnector "leadflow/internal/connectors/imap"
	"leadflow/internal/listener"
	"leadflow/internal/pipeline"
	"leadflow/internal/search"
	"leadflow/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "clean":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input lead file")
		inType := fs.String("type", "", "xlsx|csv|pdf|eml (default: from extension)")
		output := fs.String("output", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *output == "" {
			must(fmt.Errorf("--input and --output are required"))
		}

		norm := pipeline.NewNormalizer(pipeline.DefaultRefSets())
		summary, err := pipeline.CleanFile(norm, inputType(*inType, *input), *input, *output)
		must(err)
		fmt.Printf("clean done: read %d rows, wrote %d valid rows to %s\n", summary.Read, summary.Retained, *output)
	case "enrich":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input lead file (cleaned)")
		inType := fs.String("type", "", "xlsx|csv|pdf|eml (default: from extension)")
		output := fs.String("output", "", "output xlsx path")
		limit := fs.Int("limit", cfg.EnrichRowLimit, "max rows to enrich (0 = all)")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *output == "" {
			must(fmt.Errorf("--input and --output are required"))
		}

		resolver := search.NewResolver(cfg)
		summary, err := pipeline.EnrichFile(context.Background(), resolver, inputType(*inType, *input), *input, *output, *limit)
		must(err)
		fmt.Printf("enrich done: attempted=%d found=%d missed=%d skipped=%d output=%s\n",
			summary.Attempted, summary.Found, summary.Missed, summary.Skipped, *output)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input lead file")
		inType := fs.String("type", "", "xlsx|csv|pdf|eml (default: from extension)")
		output := fs.String("output", "", "output xlsx path")
		limit := fs.Int("limit", cfg.EnrichRowLimit, "max rows to enrich (0 = all)")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *output == "" {
			must(fmt.Errorf("--input and --output are required"))
		}

		cleanedPath := filepath.Join(cfg.OutputDir, "cleaned.xlsx")
		norm := pipeline.NewNormalizer(pipeline.DefaultRefSets())
		cleanSummary, err := pipeline.CleanFile(norm, inputType(*inType, *input), *input, cleanedPath)
		must(err)
		fmt.Printf("clean pass: read %d rows, retained %d\n", cleanSummary.Read, cleanSummary.Retained)

		resolver := search.NewResolver(cfg)
		enrichSummary, err := pipeline.EnrichFile(context.Background(), resolver, "xlsx", cleanedPath, *output, *limit)
		must(err)
		fmt.Printf("run done: found=%d missed=%d skipped=%d output=%s\n",
			enrichSummary.Found, enrichSummary.Missed, enrichSummary.Skipped, *output)
	case "leads:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input lead file")
		inType := fs.String("type", "", "xlsx|csv|pdf|eml (default: from extension)")
		_ = fs.Parse(os.Args[2:])
		if *input == "" {
			must(fmt.Errorf("--input is required"))
		}

		db := openDB(cfg)
		defer db.Close()
		svc := pipeline.NewProcessingService(db, cfg)
		count, err := svc.ImportFile(inputType(*inType, *input), *input)
		must(err)
		fmt.Printf("imported %d leads\n", count)
	case "leads:clean":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batch := fs.Int("batch", 500, "max leads per run")
		_ = fs.Parse(os.Args[2:])

		db := openDB(cfg)
		defer db.Close()
		svc := pipeline.NewProcessingService(db, cfg)
		normalized, dropped, err := svc.NormalizePending(*batch)
		must(err)
		fmt.Printf("normalized=%d dropped=%d\n", normalized, dropped)
	case "leads:enrich":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", cfg.EnrichRowLimit, "max leads to enrich (0 = all)")
		_ = fs.Parse(os.Args[2:])

		db := openDB(cfg)
		defer db.Close()
		svc := pipeline.NewProcessingService(db, cfg)
		resolver := search.NewResolver(cfg)
		found, missed, err := svc.EnrichPending(context.Background(), resolver, *limit)
		must(err)
		fmt.Printf("enriched leads: found=%d missed=%d\n", found, missed)
	case "leads:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}

		db := openDB(cfg)
		defer db.Close()
		table, err := db.ExportTable(internal.LeadNormalized, internal.LeadEnriched, internal.LeadNotFound)
		must(err)
		if len(table.Leads) == 0 {
			must(fmt.Errorf("no leads to export"))
		}
		must(pipeline.ExportLeadsToXLSX(table, *out))
		fmt.Printf("exported %d leads to %s\n", len(table.Leads), *out)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])

		conn, err := makeConnector(cfg, *provider)
		must(err)
		db := openDB(cfg)
		defer db.Close()
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])

		db := openDB(cfg)
		defer db.Close()
		processor := pipeline.NewProcessingService(db, cfg)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(*provider, *messageID)
			must(err)
			fmt.Printf("processed email id=%d leads=%d\n", res.EmailID, res.Imported)
			return
		}
		processedEmails, importedLeads, err := processor.ProcessPending(*batch, *provider)
		must(err)
		fmt.Printf("processed pending emails=%d leads=%d\n", processedEmails, importedLeads)
	case "mail:listen":
		db := openDB(cfg)
		defer db.Close()
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func openDB(cfg config.Config) *storage.DB {
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// inputType resolves the declared type, falling back to the file
// extension.
func inputType(declared, path string) string {
	if declared != "" {
		return declared
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".pdf":
		return "pdf"
	case ".eml":
		return "eml"
	default:
		return "xlsx"
	}
}

func usage() {
	fmt.Println("usage: leadflow <command>")
	fmt.Println("commands:")
	fmt.Println("  clean --input=leads.xlsx --output=cleaned.xlsx")
	fmt.Println("  enrich --input=cleaned.xlsx --output=enriched.xlsx [--limit=50]")
	fmt.Println("  run --input=leads.xlsx --output=enriched.xlsx [--limit=50]")
	fmt.Println("  leads:import --input=leads.xlsx")
	fmt.Println("  leads:clean [--batch=500]")
	fmt.Println("  leads:enrich [--limit=50]")
	fmt.Println("  leads:export --out=./out/leads.xlsx")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
