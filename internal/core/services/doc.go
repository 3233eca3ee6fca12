// Package services implements the driving port interfaces.
// Services contain the orchestration logic of leadsync: tenant eligibility,
// bounded batch dispatch, auto-reply selection and the client
// reconciliation loop. They call out only through driven ports.
//
// Services are pure Go with no CGO or external dependencies.
package services
