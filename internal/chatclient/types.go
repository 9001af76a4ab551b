package chatclient

// Request is the body POSTed to the chat endpoint.
type Request struct {
	Message    string `json:"message"`
	BusinessID int    `json:"business_id"`
}

// Response is the chat endpoint's reply. Only Reply is consumed; a body
// without it decodes to the empty string and is rendered as-is.
type Response struct {
	Reply string `json:"reply"`
}

// FAQItem is one question/answer pair submitted at onboarding.
type FAQItem struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// OnboardRequest registers a business and its FAQ entries.
type OnboardRequest struct {
	Name  string    `json:"name" yaml:"name"`
	Email string    `json:"email" yaml:"email"`
	Tone  string    `json:"tone,omitempty" yaml:"tone,omitempty"`
	FAQs  []FAQItem `json:"faqs" yaml:"faqs"`
}

// OnboardResponse is returned by the onboarding endpoint.
type OnboardResponse struct {
	Message    string `json:"message"`
	BusinessID int64  `json:"business_id"`
}

// Result is the settled outcome of one send: a reply or a cause, never both.
type Result struct {
	Reply string
	Err   error
}

// OK reports whether the send succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}
