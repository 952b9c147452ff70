package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	echoapi "github.com/ifcet/aula/apps/api/echo"
	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/blog"
	"github.com/ifcet/aula/core/contact"
	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/library"
	"github.com/ifcet/aula/core/session"
	"github.com/ifcet/aula/core/student"
	emailsvc "github.com/ifcet/aula/services/email"
	logsvc "github.com/ifcet/aula/services/logger"
	"github.com/ifcet/aula/storage/database"
	inmemdb "github.com/ifcet/aula/storage/database/inmem"
	sqlxrepos "github.com/ifcet/aula/storage/database/sqlx"
	"github.com/ifcet/aula/storage/fixtures"
	"github.com/ifcet/aula/storage/kv"
)

const purgeInterval = time.Hour

type repositories struct {
	students student.Repository
	courses  course.Repository
	db       *sqlx.DB // nil unless the postgres driver is used
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf

	// set up loggers
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("API"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up storage
	set, err := fixtures.Load(conf.Storage.FixturesDir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading fixtures: %v", err), err)
	}
	repos, err := setUpStorage(ctx, conf, set)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	if repos.db != nil {
		defer func() {
			if err = repos.db.Close(); err != nil {
				logger.Error("closing database", err)
			}
		}()
	}

	sessions, err := setUpSessions(ctx, conf, repos.db, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up session store: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var blogSrc blog.Source = blog.NewStaticSource(set.Blog.Posts, set.Blog.Categories)
	if conf.Blog.APIURL != "" {
		blogSrc = blog.NewRemoteSource(conf.Blog.APIURL, conf.Blog.Timeout)
	}

	stSvc := student.NewService(repos.students)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage.Driver)
	expvar.NewString("sessions").Set(conf.Session.Store)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		conf.Server.Host,
		nil, /* shutdown */
		&echoapi.Deps{
			Logger:     logger,
			Sessions:   sessions,
			Portal:     session.NewPortal(stSvc, logger),
			StudentSvc: stSvc,
			CourseSvc:  course.NewService(repos.courses),
			BlogSvc:    blog.NewService(blogSrc, conf.Blog.PageSize),
			Library:    library.NewCatalog(set.Books),
			ContactSvc: contact.NewService(mailSvc),
		},
	)
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpStorage returns the student and course repositories for the configured driver.
func setUpStorage(ctx context.Context, conf *core.Config, set *fixtures.Set) (repositories, error) {
	switch conf.Storage.Driver {
	case "", "fixtures":
		db := inmemdb.Open()
		repos := repositories{
			students: inmemdb.NewStudentRepository(db),
			courses:  inmemdb.NewCourseRepository(db),
		}
		if _, err := fixtures.Seed(ctx, set.Aula, repos.students, repos.courses); err != nil {
			return repositories{}, errors.Wrap(err, "seeding fixtures")
		}
		return repos, nil

	case "postgres":
		db, err := setUpDB(conf)
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			students: sqlxrepos.NewStudentRepository(db),
			courses:  sqlxrepos.NewCourseRepository(db),
			db:       db,
		}, nil
	}
	return repositories{}, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Connect(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB, "up"); err != nil {
		return nil, err
	}
	return db, nil
}

// setUpSessions returns the portal session backend and starts purging expired values.
func setUpSessions(ctx context.Context, conf *core.Config, db *sqlx.DB, logger core.Logger) (session.Backend, error) {
	switch conf.Session.Store {
	case "", "memory":
		mem := kv.NewMemory(conf.Session.TTL)
		go purgeEvery(ctx, purgeInterval, mem.Purge)
		return mem, nil

	case "redis":
		rdb, err := kv.DialRedis(conf)
		if err != nil {
			return nil, err
		}
		go func() {
			<-ctx.Done()
			if err := rdb.Close(); err != nil {
				logger.Warn("closing redis", err)
			}
		}()
		// redis expires the keys itself
		return kv.NewRedis(rdb, conf.Session.KeyPrefix, conf.Session.TTL), nil

	case "postgres":
		if db == nil {
			var err error
			if db, err = setUpDB(conf); err != nil {
				return nil, err
			}
		}
		backend := sqlxrepos.NewSessionBackend(db, conf.Session.TTL)
		go purgeEvery(ctx, purgeInterval, func() {
			n, err := backend.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purging expired session values", err)
				return
			}
			logger.Debug(fmt.Sprintf("purged %d expired session values", n))
		})
		return backend, nil
	}
	return nil, errors.Errorf("unknown session store %q", conf.Session.Store)
}

func purgeEvery(ctx context.Context, d time.Duration, purge func()) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
