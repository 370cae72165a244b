package notifx

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From     string   `json:"from,omitempty"`
	To       []string `json:"to"`
	CC       []string `json:"cc,omitempty"`
	ReplyTo  string   `json:"reply_to,omitempty"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body,omitempty"`
	HTMLBody string   `json:"html_body,omitempty"`
}

// SendResult is the outcome of one message in a bulk send.
type SendResult struct {
	To      []string `json:"to"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

// ReviewReminder is the data rendered into the review reminder email.
type ReviewReminder struct {
	Repo      string
	Number    int
	Title     string
	URL       string
	Author    string
	Reviewers []string
	OpenFor   string
}
