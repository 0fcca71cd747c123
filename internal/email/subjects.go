package email

const (
	subjectCallSummaryFmt      = "\U0001F4DE %s Call - %s - %s"
	subjectUrgentPrefix        = "\U0001F6A8 URGENT: "
	subjectTicketFollowUpFmt   = "Follow-up due: maintenance ticket %s"
	subjectTourConfirmationFmt = "Tour scheduled - %s - %s"
)
