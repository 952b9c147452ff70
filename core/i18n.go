package core

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shared across packages.
const (
	MsgCourseAccessDenied = "You do not have access to this course."
	MsgBadCredentials     = "Incorrect username or password"
	MsgContactReceived    = "Thanks %s, we will contact you soon."
)

var (
	// Lang is the language user facing messages are printed in.
	Lang = language.Spanish

	printerMu sync.Mutex
	printers  = make(map[language.Tag]*message.Printer)
)

func init() {
	RegisterMessages(language.Spanish, map[string]string{
		MsgCourseAccessDenied: "No tienes acceso a este curso.",
		MsgBadCredentials:     "Usuario o contraseña incorrectos",
		MsgContactReceived:    "Gracias %s, nos pondremos en contacto contigo pronto.",
	})
}

// RegisterMessages adds translations for `tag` to the default catalog.
func RegisterMessages(tag language.Tag, msgs map[string]string) {
	for key, msg := range msgs {
		_ = message.SetString(tag, key, msg)
	}
}

// T prints the message registered under `key` in Lang.
// Keys without a translation are printed as is.
func T(key string, args ...interface{}) string {
	printerMu.Lock()
	p, ok := printers[Lang]
	if !ok {
		p = message.NewPrinter(Lang)
		printers[Lang] = p
	}
	printerMu.Unlock()
	return p.Sprintf(key, args...)
}
