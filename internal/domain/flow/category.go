package flow

// Category maps a fixed callback code to the label and hashtag shown in the
// published post.
type Category struct {
	Code  string
	Label string
	Tag   string
}

var categories = []Category{
	{Code: "sell", Label: "Продажа", Tag: "#продажа"},
	{Code: "buy", Label: "Куплю", Tag: "#куплю"},
	{Code: "event", Label: "Анонс события", Tag: "#анонс"},
}

// CategoryOther is the fallback for codes we do not recognise. Selection must
// never fail validation, so an unknown code lands here; callers log it as a
// likely bug in whoever built the callback.
var CategoryOther = Category{Code: "other", Label: "Другое", Tag: "#другое"}

// Categories returns the fixed choice set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryByCode resolves a callback code. The second return reports whether
// the code was one of the known categories.
func CategoryByCode(code string) (Category, bool) {
	for _, c := range categories {
		if c.Code == code {
			return c, true
		}
	}
	return CategoryOther, false
}
