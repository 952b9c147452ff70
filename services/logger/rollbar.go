package logsvc

import (
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/session"
)

// RollbarLogger reports to rollbar and mirrors every entry to a local zap logger.
type RollbarLogger struct {
	zap *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewZap builds the local logger: human readable in debug, JSON otherwise.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToUpper(conf.Env) {
	case "QA", "PROD":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	if conf.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build(zap.AddCallerSkip(1))
}

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{zap: zl.Sugar()}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

func (l RollbarLogger) Sync() {
	_ = l.zap.Sync()
}

// expected fmt: msg | error, map[string]interface{}, *session.Session
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var personSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		// set logged in student
		if s, ok := arg.(*session.Session); ok {
			if !personSet && s != nil { // only set one person
				rollbar.SetPerson(s.Username, s.Name, s.Email)
				personSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !personSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

// fields turns the args into zap key/value pairs.
func (l RollbarLogger) fields(args []interface{}) []interface{} {
	kvs := make([]interface{}, 0, 2*len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			kvs = append(kvs, "error", v)
		case map[string]interface{}:
			for k, val := range v {
				kvs = append(kvs, k, val)
			}
		case *session.Session:
			if v != nil {
				kvs = append(kvs, "student", v.Username)
			}
		default:
			kvs = append(kvs, "extra", v)
		}
	}
	return kvs
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.zap.Debugw(msg, l.fields(args)...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.zap.Infow(msg, l.fields(args)...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.zap.Warnw(msg, l.fields(args)...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.zap.Errorw(msg, l.fields(args)...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.zap.Fatalw(msg, l.fields(args)...)
}
