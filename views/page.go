package views

import "time"

// NoticeHideAfter is how long the message area stays visible.
const NoticeHideAfter = 5 * time.Second

// Notice kinds double as the CSS class of #message.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is the feedback shown in #message after a signup attempt.
type Notice struct {
	Kind        string
	Text        string
	HideAfterMs int64
}

// NewNotice creates a notice that hides itself after NoticeHideAfter.
func NewNotice(kind, text string) *Notice {
	return &Notice{Kind: kind, Text: text, HideAfterMs: NoticeHideAfter.Milliseconds()}
}

// FormValues pre-fills the signup form.
type FormValues struct {
	Email    string
	Activity string
}

// Page is the data for index.html.
type Page struct {
	List        ListView
	Options     []Option
	Placeholder string
	Form        FormValues
	Notice      *Notice
	Alert       string
	LiveURL     string
}

// Fragment is the data for fragment.html, used for in-place refreshes.
// Form is kept so the shared option template can read the selection.
type Fragment struct {
	List        ListView
	Options     []Option
	Placeholder string
	Form        FormValues
}

// NewPage assembles a page. options is usually BuildOptions of the last good snapshot.
func NewPage(list ListView, options []Option) Page {
	return Page{List: list, Options: options, Placeholder: PlaceholderOption}
}

// NewFragment assembles the refresh fragment.
func NewFragment(list ListView, options []Option) Fragment {
	return Fragment{List: list, Options: options, Placeholder: PlaceholderOption}
}
