package events

const (
	StreamName     = "AUDIT5S_EVENTS"
	StreamSubjects = "audit5s.>"
	StreamMaxAge   = "2160h" // 90 days

	SubjectConfigUpdated = "audit5s.config.updated"
	SubjectActionsStats  = "audit5s.actions.stats"
)

func SubjectAuditCreated(id string) string { return "audit5s.audit." + id + ".created" }
func SubjectAuditUpdated(id string) string { return "audit5s.audit." + id + ".updated" }
func SubjectAuditDeleted(id string) string { return "audit5s.audit." + id + ".deleted" }

func SubjectActionCreated(id string) string { return "audit5s.action." + id + ".created" }
func SubjectActionUpdated(id string) string { return "audit5s.action." + id + ".updated" }
func SubjectActionDeleted(id string) string { return "audit5s.action." + id + ".deleted" }
func SubjectActionOverdue(id string) string { return "audit5s.action." + id + ".overdue" }
