// Package connectors fetches lead-list emails from a mailbox provider
// and stores the raw messages for the extraction pipeline.
package connectors

import "leadflow/internal"

type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
