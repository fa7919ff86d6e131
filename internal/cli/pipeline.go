package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/vvka-141/roomstat/internal/db"
	"github.com/vvka-141/roomstat/internal/db/manager"
	"github.com/vvka-141/roomstat/internal/services"
	"github.com/vvka-141/roomstat/internal/tui"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// newPipeline wires the production dependencies. Tests replace it.
var newPipeline = func(logger roomstat.Logger) *services.Pipeline {
	return services.NewPipeline(
		services.PoolOpener(db.NewConnector),
		manager.New(),
		logger,
		os.Stdin,
		os.Stdout,
	)
}

// printSummary writes the run summary, styled when a human is watching.
func printSummary(w io.Writer, s tui.Summary) {
	fmt.Fprint(w, tui.RenderSummary(s, tui.IsInteractive()))
}
