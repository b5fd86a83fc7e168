package internal

type LeadSource string

const (
	SourceXLSX           LeadSource = "xlsx"
	SourceCSV            LeadSource = "csv"
	SourcePDF            LeadSource = "pdf"
	SourceEmailHTMLTable LeadSource = "email_html_table"
	SourceEmailXLSX      LeadSource = "email_xlsx"
	SourceEmailCSV       LeadSource = "email_csv"
	SourceEmailPDF       LeadSource = "email_pdf"
)

// Canonical column headers of a lead file. Extraction matches them
// case-insensitively; export writes them back in this order.
const (
	ColFirstName        = "First Name"
	ColLastName         = "Last Name"
	ColCompany          = "Company"
	ColEmailAddress     = "Email Address"
	ColLinkedInURL      = "LinkedIn URL"
	ColProcessingStatus = "Processing Status"
)

func ManagedColumns() []string {
	return []string{ColFirstName, ColLastName, ColCompany, ColEmailAddress, ColLinkedInURL, ColProcessingStatus}
}

// LeadRecord is one row of a lead list. Extra holds passthrough columns
// that are not managed by the pipeline but must survive into the output.
type LeadRecord struct {
	RowNo       int
	Source      LeadSource
	FirstName   string
	LastName    string
	Company     string
	Email       string
	LinkedInURL string
	Status      string
	Extra       map[string]string
}

// LeadTable is an ordered lead list: Columns preserves the input column
// order, with managed columns appended if the input lacked them.
type LeadTable struct {
	Columns []string
	Leads   []LeadRecord
}

// DropReason explains why the normalizer excluded a row from output.
type DropReason string

const (
	DropMissingEmail   DropReason = "missing_email"
	DropMissingCompany DropReason = "missing_company"
	DropInvalidName    DropReason = "invalid_name"
)

// Lifecycle status of a lead in the store.
const (
	LeadImported   = "imported"
	LeadNormalized = "normalized"
	LeadDropped    = "dropped"
	LeadEnriched   = "enriched"
	LeadNotFound   = "not_found"
)

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
