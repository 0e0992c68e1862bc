package deps

import (
	"time"

	"github.com/sohaum/bazar/internal/catalog"
	"github.com/sohaum/bazar/internal/identity"
	"github.com/sohaum/bazar/internal/ingest"
	"github.com/sohaum/bazar/internal/logger"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Repo     *catalog.Repository // listing collection
	Pins     *catalog.Pins       // bounded promoted set
	Identity *identity.Provider  // accounts and the active session
	Pipeline *ingest.Pipeline    // submission validation and drafts
}
