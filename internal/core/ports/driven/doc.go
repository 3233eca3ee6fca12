// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the orchestrator to function:
//
//   - TenantStore: Tenant sync profile persistence (owned externally)
//   - LeadStore: Durable lead flags (answered / auto_replied)
//   - CredentialRefresher: Refresh-token grant against the provider
//   - MailboxSyncClient: Ingestion collaborator returning new leads
//   - ReplyGenerator: Response-generation collaborator
//   - ReplySender: Send collaborator
//   - ProcessedLeadCache: Tenant-scoped in-flight / replied marker
//   - AutoReplySettingsStore: Per-tenant auto-reply configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SyncLeaseStore: Per-tenant mutual exclusion across overlapping sweeps.
//     Without it, overlapping sweeps rely on the staleness window only.
//   - SchedulerStore: Scheduler state for the in-process sweep loop.
//
// SessionBackend, LeadView and SessionNotifier serve the client
// reconciliation loop.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
