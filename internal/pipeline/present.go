package pipeline

import "fmt"

const (
	warnMissingCredential = "Please enter your API key."
	warnMissingURL        = "Please enter a URL."
	warnMalformedURL      = "Please enter a valid URL."
)

// Outcome is what a surface renders after a run. Only one of Summary,
// Warning and Error is set; Kind is meaningful when Failed is true.
type Outcome struct {
	Summary string
	Warning string
	Error   string
	Kind    Kind
	Failed  bool
}

func Present(res Result, err error) Outcome {
	if err == nil {
		return Outcome{Summary: res.Summary}
	}

	kind := KindOf(err)
	out := Outcome{Kind: kind, Failed: true}

	switch kind {
	case KindMissingCredential:
		out.Warning = warnMissingCredential
	case KindMissingURL:
		out.Warning = warnMissingURL
	case KindMalformedURL:
		out.Warning = warnMalformedURL
	default:
		out.Error = fmt.Sprintf("An error occurred: %v", err)
	}

	return out
}
