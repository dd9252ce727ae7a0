package inventory

import "log/slog"

// NopNotifier drops every report.
type NopNotifier struct{}

// Report implements Notifier.
func (NopNotifier) Report(Severity, string, string) {}

// LogNotifier writes reports to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier backed by logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Report implements Notifier.
func (n *LogNotifier) Report(severity Severity, title, message string) {
	if severity == SeverityError {
		n.logger.Error(title, "message", message)
		return
	}
	n.logger.Info(title, "message", message)
}
