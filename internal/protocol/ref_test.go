package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRef(t *testing.T) {
	tests := []struct {
		name      string
		ref       string
		declaring string
		want      ResolvedRef
	}{
		{"unqualified", "RequestId", "Network", ResolvedRef{Domain: "Network", LocalName: "RequestId"}},
		{"qualified", "Runtime.StackTrace", "Network", ResolvedRef{Domain: "Runtime", LocalName: "StackTrace"}},
		{"qualified same domain", "Network.RequestId", "Network", ResolvedRef{Domain: "Network", LocalName: "RequestId"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRef(tt.ref, tt.declaring))
		})
	}
}

func TestResolveRef_QualifiedIgnoresDeclaringDomain(t *testing.T) {
	for _, d := range []string{"", "Page", "Runtime", "DOM"} {
		assert.Equal(t, ResolvedRef{Domain: "X", LocalName: "Y"}, ResolveRef("X.Y", d))
	}
}

func TestResolveRef_UnqualifiedKeepsDeclaringDomain(t *testing.T) {
	for _, r := range []string{"A", "FrameId", "LoaderId"} {
		assert.Equal(t, ResolvedRef{Domain: "Page", LocalName: r}, ResolveRef(r, "Page"))
	}
}
