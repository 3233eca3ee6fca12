// Package collab provides HTTP clients for the external collaborators the
// orchestrator calls during a sweep:
//
//   - MailboxClient: mailbox ingestion (POST, returns new_leads_data)
//   - GeneratorClient: reply generation (POST, returns response)
//   - SenderClient: reply delivery (POST, 2xx means sent)
//
// All clients share a token-bucket RateLimiter that honours Retry-After
// on 429 responses.
package collab
