package dto

// CounsellorView is the public directory entry for a counsellor.
// Available is derived from the absence of an open session.
type CounsellorView struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	Specialization string `json:"specialization"`
	Available      bool   `json:"available"`
}
