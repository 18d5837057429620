package probe

import (
	"bytes"
	"context"
)

// unsupportedMarker is what minimal ps implementations print when they
// reject the extended flags.
const unsupportedMarker = "unsupported option"

// ProcessList captures the process table. It tries the extended
// all-processes form first; ps implementations on minimal systems reject
// the flags, in which case the plain form is used instead. The section is
// never left empty.
type ProcessList struct {
	Runner Runner
}

func (p *ProcessList) Name() string { return "ps" }

func (p *ProcessList) Collect(ctx context.Context) ([]byte, bool) {
	out, ok := p.Runner.Run(ctx, "ps", "aux")
	if bytes.Contains(bytes.ToLower(out), []byte(unsupportedMarker)) {
		return p.Runner.Run(ctx, "ps")
	}
	return out, ok
}
