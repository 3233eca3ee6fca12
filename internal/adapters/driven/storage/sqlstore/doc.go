// Package sqlstore provides a unified SQL implementation of the leadsync
// driven ports on top of jmoiron/sqlx.
//
// Two drivers are supported through the same queries:
//
//   - modernc.org/sqlite: pure Go SQLite, the default for local and
//     single-node deployments (no CGO)
//   - github.com/lib/pq: PostgreSQL, for a hosted Tenant Store shared by
//     several orchestrator processes
//
// Queries are written with '?' placeholders and rebound per driver.
// Timestamps are stored as BIGINT unix milliseconds and booleans as
// INTEGER 0/1 so the schema is identical on both engines.
//
// The store implements:
//
//   - TenantStore: Tenant sync profiles and the compare-and-swap marker
//   - LeadStore: Durable lead flags
//   - SyncLeaseStore: Per-tenant sweep leases
//   - ProcessedLeadCache: Durable reply claims shared across processes
//   - AutoReplySettingsStore: Per-tenant auto-reply settings
//   - SchedulerStore: In-process scheduler state and history
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Applied versions are recorded in
// schema_migrations.
package sqlstore
