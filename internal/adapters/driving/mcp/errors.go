// Package mcp exposes leadsync over the Model Context Protocol so an AI
// assistant can trigger sweeps, run tenant syncs and inspect tenant state.
//
// Tools and resources are registered from whichever ports are present;
// only the tenant syncer is mandatory.
package mcp

import "errors"

// ErrMissingSyncer is returned by NewServer without a tenant syncer.
var ErrMissingSyncer = errors.New("mcp: tenant syncer is required")
