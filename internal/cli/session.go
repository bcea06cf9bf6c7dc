package cli

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fieldshift/fieldshift/internal/audit"
	"github.com/fieldshift/fieldshift/internal/config"
	"github.com/fieldshift/fieldshift/internal/fields"
	"github.com/fieldshift/fieldshift/internal/logging"
	"github.com/fieldshift/fieldshift/internal/mapping"
	"github.com/fieldshift/fieldshift/internal/notice"
	"github.com/fieldshift/fieldshift/internal/site"
	"github.com/fieldshift/fieldshift/internal/store"
)

// siteSession holds everything one invocation needs against a site.
type siteSession struct {
	Path  string
	Site  *site.Site
	DB    *store.DB
	Audit *audit.Logger
	RunID string
	Log   *logrus.Entry

	logCloser io.Closer
}

// session is the open site for the running command, closed by Execute.
var session *siteSession

// openSite loads site.yaml, opens the store and starts the migration and
// audit logs for the resolved site. Every log line carries the run id.
func openSite(command string) (*siteSession, error) {
	if session != nil {
		return session, nil
	}

	st, err := site.Load(resolvedSitePath)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(logging.Options{
		Config:      getConfig().Log,
		DefaultFile: site.LogPath(resolvedSitePath),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start migration log: %w", err)
	}

	db, err := store.Open(site.StorePath(resolvedSitePath))
	if err != nil {
		closer.Close()
		return nil, err
	}

	runID := uuid.NewString()
	session = &siteSession{
		Path:      resolvedSitePath,
		Site:      st,
		DB:        db,
		Audit:     audit.New(site.AuditPath(resolvedSitePath), st.AuditEnabled(), runID),
		RunID:     runID,
		Log:       logger.WithFields(logrus.Fields{"run_id": runID, "command": command}),
		logCloser: closer,
	}
	return session, nil
}

func closeSession() {
	if session == nil {
		return
	}
	_ = session.DB.Close()
	_ = session.Audit.Close()
	_ = session.logCloser.Close()
	session = nil
}

// Stores returns the field stores, wrapped so every write is audited.
func (s *siteSession) Stores() fields.Set {
	stores := fields.NewSet(s.DB, s.Site)
	record := s.Audit.Recorder()
	return stores.Wrap(func(kind fields.Kind, st fields.Store) fields.Store {
		return fields.Audited(kind, st, record)
	})
}

// Engine returns a mapping engine over the session's stores.
func (s *siteSession) Engine(dryRun bool) *mapping.Engine {
	e := mapping.NewEngine(s.Stores(), nil)
	e.DryRun = dryRun
	return e
}

// Notices logs notices at the level matching their status.
func (s *siteSession) Notices(notices []notice.Notice) {
	logging.Notices(s.Log, notices)
}

// warnOnError logs a failed bookkeeping step that must not fail the command.
func (s *siteSession) warnOnError(err error, msg string) {
	if err != nil {
		s.Log.WithError(err).Warn(msg)
	}
}

// logFailure records a command failure in the migration log if a site is open.
func logFailure(code string, err error) {
	if session == nil || err == nil {
		return
	}
	session.Log.WithField("code", code).Error(err.Error())
}

// getConfig returns the loaded global config, or an empty one.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}
