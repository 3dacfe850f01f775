package protocol

// Status is a feature status badge.
type Status string

const (
	StatusExperimental Status = "Experimental"
	StatusDeprecated   Status = "Deprecated"
)

// Feature holds the status flags shared by domains, members and properties.
type Feature struct {
	Experimental bool `json:"experimental,omitempty"`
	Deprecated   bool `json:"deprecated,omitempty"`
}

// Flags returns the feature flags. Embedding Feature promotes it.
func (f Feature) Flags() Feature { return f }

// Featured is anything that carries feature flags.
type Featured interface {
	Flags() Feature
}

// Statuses classifies v. The flags are independent; both, either or
// neither may be reported, always Experimental before Deprecated.
func Statuses(v Featured) []Status {
	f := v.Flags()
	var out []Status
	if f.Experimental {
		out = append(out, StatusExperimental)
	}
	if f.Deprecated {
		out = append(out, StatusDeprecated)
	}
	return out
}
