package convert

import (
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/rstabber/model"
)

// arrangementProgress collapses one call per arrangement processed
// during Score building into a single call to the caller's
// progress_callback, made on a timer goroutine once 50ms pass without a
// further arrangement, the same job the teacher's own go.mod pulls
// bep/debounce in for (see DESIGN.md). The stage/percent it reports
// never changes across calls — spec §6 names exactly four stage
// checkpoints, and this sub-progress stays nested under "Detecting
// rhythm" rather than inventing a fifth.
func arrangementProgress(progress model.ProgressFunc) func() {
	if progress == nil {
		return func() {}
	}
	debounced := debounce.New(50 * time.Millisecond)
	return func() {
		debounced(func() { progress("Detecting rhythm", 50) })
	}
}
