package inbound

type JoinRequest struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	FieldOfStudy string `json:"fieldOfStudy"`
}

type JoinResponse struct{}

func (JoinResponse) Message() string { return "Successfully joined waitlist" }

func (JoinResponse) Data() any { return nil }
