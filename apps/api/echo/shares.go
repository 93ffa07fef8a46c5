package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-ar/core"
	"github.com/trezcool/masomo-ar/core/sharecode"
)

const shareCodeEmailTemplate = "share-code"

type shareApi struct {
	conf       *core.Config
	svc        *sharecode.Service
	emailSvc   core.EmailService
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger
}

func registerShareAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := shareApi{
		conf:       deps.Conf,
		svc:        deps.CodeSvc,
		emailSvc:   deps.EmailSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
		logger:     deps.Logger,
	}

	sg := g.Group("/shares")

	// resolving a code is open: the second device is not logged in
	sg.GET("/:code", api.resolve)

	// issuing requires a platform-minted token
	sg.POST("", api.create, jwt)
}

// Handlers

func (api *shareApi) create(ctx echo.Context) error {
	var data sharecode.NewShare
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewShare")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	code, err := api.svc.Issue(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "issuing share code")
	}
	if claims, cErr := getContextClaims(ctx); cErr == nil {
		api.logger.Info(fmt.Sprintf("share code %s issued by %s", code.Code, claims.Username))
	}

	if data.Email != "" {
		api.emailCode(code, data.Email)
	}
	return ctx.JSON(http.StatusCreated, code)
}

func (api *shareApi) resolve(ctx echo.Context) error {
	code, err := api.svc.Resolve(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "resolving share code")
	}
	return ctx.JSON(http.StatusOK, code)
}

// emailCode sends the code to the given address; fire-and-forget.
func (api *shareApi) emailCode(code sharecode.Code, email string) {
	api.emailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: email}},
		Subject:      "Someone shared \"" + code.Payload.Title + "\" with you",
		TemplateName: shareCodeEmailTemplate,
		TemplateData: code,
	})
}
