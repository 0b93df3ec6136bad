package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hudumahq/huduma/core/company"
)

type companyApi struct {
	svc *company.Service
}

func registerCompanyAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *company.Service) {
	api := companyApi{svc: svc}

	cg := g.Group("/companies", jwt, staffMiddleware())
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
}

func (api *companyApi) create(ctx echo.Context) error {
	var data company.NewCompany
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCompany")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	cmp, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating company")
	}
	return ctx.JSON(http.StatusCreated, cmp)
}

func (api *companyApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	companies, err := api.svc.QueryAll(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "querying companies")
	}
	return ctx.JSON(http.StatusOK, companies)
}

func (api *companyApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	cmp, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cmp)
}

func (api *companyApi) update(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	orig, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	var data company.UpdateCompany
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCompany")
	}
	if err = data.Validate(ctx.Request().Context(), orig, api.svc); err != nil {
		return err
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	cmp, err := api.svc.Update(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return errors.Wrap(err, "updating company")
	}
	return ctx.JSON(http.StatusOK, cmp)
}
