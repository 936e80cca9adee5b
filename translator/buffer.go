package translator

import (
	"strings"

	"github.com/hupe1980/teamflow/core"
)

const coordinatorBufferSize = 3

// coordinatorBuffer holds the first fragments of the coordinator's output so
// a handoff reply can be recognized and hidden before anything is shown.
type coordinatorBuffer struct {
	fragments []string
	lastID    string
	handoff   bool
	complete  bool
}

// push records one fragment. It returns the text to emit (if any) and
// whether something should be emitted.
func (b *coordinatorBuffer) push(id, content string) (string, bool) {
	if b.handoff {
		return "", false
	}
	if b.complete {
		return content, true
	}

	b.fragments = append(b.fragments, content)
	b.lastID = id
	joined := strings.Join(b.fragments, "")

	if core.IsHandoff(joined) {
		b.handoff = true
		b.fragments = nil
		return "", false
	}
	if len(b.fragments) < coordinatorBufferSize {
		return "", false
	}

	b.complete = true
	b.fragments = nil
	return joined, true
}

// flush returns buffered fragments that never reached the window size.
func (b *coordinatorBuffer) flush() (id, content string, ok bool) {
	if b.handoff || b.complete || len(b.fragments) == 0 {
		return "", "", false
	}
	content = strings.Join(b.fragments, "")
	id = b.lastID
	b.fragments = nil
	b.complete = true
	return id, content, true
}
