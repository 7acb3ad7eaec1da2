package diff

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// UnifiedPatch renders the change from orig to mod as a unified diff with
// a/ and b/ prefixed names. Identical documents produce "".
func UnifiedPatch(name, orig, mod string) string {
	if orig == mod {
		return ""
	}
	from, to := "a/"+name, "b/"+name
	edits := myers.ComputeEdits(span.URIFromPath(from), orig, mod)
	return fmt.Sprint(gotextdiff.ToUnified(from, to, orig, edits))
}
