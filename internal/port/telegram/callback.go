package telegram

import "strings"

// Callback data is the wire form of button presses. Each action is a fixed
// verb, optionally followed by one ":"-separated argument (a moderation id
// or a publication ref). parseCallback is the only place that ever looks at
// the raw string; everything downstream works with the typed action.
type actionType int

const (
	actionNone actionType = iota
	actionCreateAd
	actionCategory
	actionPhotosDone
	actionSubmit
	actionGoToStart
	actionApprove
	actionReject
	actionSold
)

type action struct {
	typ actionType
	arg string
}

const (
	cbCreateAd   = "create_ad"
	cbPhotosDone = "photos_done"
	cbSubmit     = "send_to_moderation"
	cbGoToStart  = "start"
	cbCategory   = "category"
	cbApprove    = "approve"
	cbReject     = "reject"
	cbSold       = "sold"
)

func parseCallback(data string) action {
	verb, arg, _ := strings.Cut(data, ":")
	switch verb {
	case cbCreateAd:
		return action{typ: actionCreateAd}
	case cbPhotosDone:
		return action{typ: actionPhotosDone}
	case cbSubmit:
		return action{typ: actionSubmit}
	case cbGoToStart:
		return action{typ: actionGoToStart}
	case cbCategory:
		return action{typ: actionCategory, arg: arg}
	case cbApprove:
		return action{typ: actionApprove, arg: arg}
	case cbReject:
		return action{typ: actionReject, arg: arg}
	case cbSold:
		return action{typ: actionSold, arg: arg}
	}
	return action{typ: actionNone}
}

func categoryCallback(code string) string     { return cbCategory + ":" + code }
func approveCallback(id string) string        { return cbApprove + ":" + id }
func rejectCallback(id string) string         { return cbReject + ":" + id }
func soldCallback(publicationRef string) string { return cbSold + ":" + publicationRef }
