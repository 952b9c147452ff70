package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ifcet/aula/core/contact"
)

type contactApi struct {
	svc *contact.Service
}

func registerContactAPI(g *echo.Group, svc *contact.Service) {
	api := contactApi{svc: svc}
	// TODO: rate limit `/contact` per client IP
	g.POST("/contact", api.submit)
}

func (api *contactApi) submit(ctx echo.Context) error {
	var data contact.Request
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to contact.Request")
	}
	msg, err := api.svc.Submit(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ContactResponse{Message: msg})
}
