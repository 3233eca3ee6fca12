// Package gmail talks to the Gmail API on behalf of a tenant, using the
// access credential obtained during the sweep. Sender delivers auto-replies.
// Mailbox ingests inbox messages as unclassified leads in place of the
// external ingestion collaborator.
package gmail
