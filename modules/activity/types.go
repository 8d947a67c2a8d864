package activity

// ListActivityRequest is the request for the list-activity service.
type ListActivityRequest struct {
	Owner string `json:"owner"`
}

// ListActivityResponse is the response for the list-activity service.
type ListActivityResponse struct {
	Entries []Entry `json:"entries"`
}
