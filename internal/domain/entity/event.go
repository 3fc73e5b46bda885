package entity

// Contact is the public way to reach a user, resolved by the transport's
// display-name resolver before an event enters the core.
type Contact struct {
	Mention string
	Display string
}

// Event is an inbound user action delivered by the transport. Each action is
// a distinct type with a typed payload; the transport parses callback data
// once and the core never sees raw strings.
type Event interface {
	event()
}

type CategorySelected struct {
	Code string
}

type PhotoUploaded struct {
	// MediaRef is an opaque, order-preserving identifier of the uploaded
	// photo (a Telegram file id in production).
	MediaRef string
}

type PhotosDone struct{}

type TextEntered struct {
	Text string
	// Contact rides along with every text event; the draft flow records it
	// when the price step completes.
	Contact Contact
}

type Submit struct{}

type Restart struct{}

type GoToStart struct{}

func (CategorySelected) event() {}
func (PhotoUploaded) event()    {}
func (PhotosDone) event()       {}
func (TextEntered) event()      {}
func (Submit) event()           {}
func (Restart) event()          {}
func (GoToStart) event()        {}
