package maildelivery

const (
	WorkflowName     = "coursehub.mail_delivery"
	ActivitySendMail = "coursehub.mail_delivery.send"
)

// WorkflowID keeps one workflow per job row so a re-claimed job attaches to the same run.
func WorkflowID(jobID string) string { return "send_email:" + jobID }
