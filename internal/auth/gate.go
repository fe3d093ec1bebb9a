package auth

// Verdict is what a gated page may show for a given hook state.
type Verdict int

const (
	VerdictLoading Verdict = iota
	VerdictRedirect
	VerdictRender
)

func (v Verdict) String() string {
	switch v {
	case VerdictRedirect:
		return "redirect"
	case VerdictRender:
		return "render"
	default:
		return "loading"
	}
}

// Gate maps a hook state to a verdict. Only an authenticated state renders.
func Gate(s State) Verdict {
	switch s.Status {
	case StatusAuthenticated:
		return VerdictRender
	case StatusUnauthenticated:
		return VerdictRedirect
	default:
		return VerdictLoading
	}
}
