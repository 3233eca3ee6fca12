package tui

import "errors"

// ErrMissingSession is returned when the reconciliation session is not provided.
var ErrMissingSession = errors.New("tui: session is required")

// ErrMissingLeads is returned when the lead source is not provided.
var ErrMissingLeads = errors.New("tui: lead source is required")

// ErrMissingSyncer is returned when the manual syncer is not provided.
var ErrMissingSyncer = errors.New("tui: syncer is required")
