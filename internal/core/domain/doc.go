// Package domain defines the core business entities for leadsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TenantSyncProfile: A tenant's auto-sync opt-in and credential
//   - Lead: A message-derived record eligible for auto-reply
//   - AutoReplySettings: Per-tenant reply configuration and gating
//   - SyncOutcome / SweepSummary: Ephemeral sweep reporting
//   - TenantState / SessionState: Explicit state machines
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
