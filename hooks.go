package sedmap

// Hook function types for load events
type (
	// DiagnosticHook is called when a diagnostic is emitted
	DiagnosticHook func(d Diagnostic)

	// ReportHook is called when a loader finishes
	ReportHook func(r LoadReport)
)

// hooks holds event callbacks. Loads are sequential, so no locking.
type hooks struct {
	onDiagnostic []DiagnosticHook
	onReport     []ReportHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnDiagnostic registers a callback for diagnostics
func (h *hooks) OnDiagnostic(fn DiagnosticHook) {
	if fn != nil {
		h.onDiagnostic = append(h.onDiagnostic, fn)
	}
}

// OnReport registers a callback for finished loaders
func (h *hooks) OnReport(fn ReportHook) {
	if fn != nil {
		h.onReport = append(h.onReport, fn)
	}
}

func (h *hooks) triggerDiagnostic(d Diagnostic) {
	for _, fn := range h.onDiagnostic {
		fn(d)
	}
}

func (h *hooks) triggerReport(r LoadReport) {
	for _, fn := range h.onReport {
		fn(r)
	}
}
