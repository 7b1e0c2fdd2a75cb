package guardrail

import (
	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

// Audit counts guardrail-relevant events of one invocation. It exists to
// make violations observable: the orchestrator inspects it when the run
// ends and surfaces a run that mutated the store without the mandatory
// notification.
type Audit struct {
	mutations     int
	clamps        int
	notifications int
	denials       int
}

func NewAudit() *Audit {
	return &Audit{}
}

func (a *Audit) RecordMutation()     { a.mutations++ }
func (a *Audit) RecordClamp()        { a.clamps++ }
func (a *Audit) RecordNotification() { a.notifications++ }
func (a *Audit) RecordDenial()       { a.denials++ }

func (a *Audit) Mutated() bool  { return a.mutations > 0 }
func (a *Audit) Notified() bool { return a.notifications > 0 }

// ReportSatisfied tells whether the mandatory-reporting rule held: any
// store-mutating run must have sent at least one notification.
func (a *Audit) ReportSatisfied() bool {
	return !a.Mutated() || a.Notified()
}

func (a *Audit) Report() contractx.AuditReport {
	return contractx.AuditReport{
		Mutations:     a.mutations,
		Clamps:        a.clamps,
		Notifications: a.notifications,
		Denials:       a.denials,
		ReportMissing: !a.ReportSatisfied(),
	}
}
