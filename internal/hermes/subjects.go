package hermes

const (
	SubjectRankRequest = "vikor.rank.request"

	StreamName   = "VIKOR_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

func SubjectRunCompleted(runID string) string { return "vikor.run." + runID + ".completed" }
func SubjectRunFailed(runID string) string    { return "vikor.run." + runID + ".failed" }
