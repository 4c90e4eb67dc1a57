package gcode

import (
	"fmt"
	"strings"

	"github.com/furnicam/furnicam/internal/machineprofile"
)

// textBuilder assembles NC lines, applying a profile's line-numbering
// policy (N10, N20, ... or none) exactly as the teacher's generator does
// in its output buffer.
type textBuilder struct {
	profile   machineprofile.Profile
	next      int
	cycleOpen bool
	b         strings.Builder
}

func newTextBuilder(p machineprofile.Profile) *textBuilder {
	return &textBuilder{profile: p, next: p.LineNumberIncr}
}

// line emits one body line, numbered per the profile's policy. Never used
// for the profile's own header/footer lines — those must survive
// byte-for-byte, per spec.md §6/§8, and go through raw instead.
func (t *textBuilder) line(s string) {
	if t.profile.LineNumbers {
		fmt.Fprintf(&t.b, "N%d %s\n", t.next, s)
		t.next += t.profile.LineNumberIncr
		return
	}
	t.b.WriteString(s + "\n")
}

// raw emits a profile header/footer line verbatim, with no N-prefix
// regardless of the profile's line-numbering policy.
func (t *textBuilder) raw(s string) {
	t.b.WriteString(s + "\n")
}

func (t *textBuilder) blank() {
	t.b.WriteString("\n")
}

// openCycle marks a drilling canned cycle as active; closeCycle emits the
// profile's cancel code and clears it. writeFooter only emits a trailing
// cancel for a cycle that was opened and never closed.
func (t *textBuilder) openCycle() {
	t.cycleOpen = true
}

func (t *textBuilder) closeCycle(code string) {
	t.line(code)
	t.cycleOpen = false
}

func (t *textBuilder) String() string {
	return t.b.String()
}
