// Package contact handles the information requests sent from the site's contact form.
package contact

import (
	"net/mail"

	"github.com/ifcet/aula/core"
)

const (
	requestTemplate = "contact_request"
	ackTemplate     = "contact_ack"
)

type (
	Request struct {
		FullName string `json:"fullName" validate:"required,notblank,max=120"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone" validate:"omitempty,max=30"`
		Course   string `json:"course" validate:"omitempty,max=120"`
		Message  string `json:"message" validate:"required,notblank,max=5000"`
	}

	Service struct {
		mailer core.EmailService
	}
)

func (r *Request) Clean() {
	r.FullName = core.CleanString(r.FullName)
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Phone = core.CleanString(r.Phone)
	r.Course = core.CleanString(r.Course)
	r.Message = core.CleanString(r.Message)
}

func (r Request) Validate() error {
	return core.Validate.Struct(r)
}

func NewService(mailer core.EmailService) *Service {
	return &Service{mailer: mailer}
}

// Submit notifies the institute inbox and acknowledges the request to its sender.
// It returns the confirmation shown to the visitor.
func (svc *Service) Submit(req Request) (string, error) {
	req.Clean()
	if err := req.Validate(); err != nil {
		return "", err
	}

	sender := mail.Address{Name: req.FullName, Address: req.Email}
	svc.mailer.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{core.Conf.ContactAddress()},
			ReplyTo:      &sender,
			Subject:      "Nueva solicitud de informes",
			TemplateName: requestTemplate,
			TemplateData: req,
		},
		&core.EmailMessage{
			To:           []mail.Address{sender},
			Subject:      "Recibimos tu solicitud",
			TemplateName: ackTemplate,
			TemplateData: req,
		},
	)
	return core.T(core.MsgContactReceived, req.FullName), nil
}
