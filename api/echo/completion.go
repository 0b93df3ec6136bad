package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hudumahq/huduma/core/access"
	"github.com/hudumahq/huduma/core/completion"
)

type completionApi struct {
	svc *completion.Service
}

func registerCompletionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *completion.Service) {
	api := completionApi{svc: svc}

	rg := g.Group("/completion-requests", jwt)
	rg.POST("", api.submit)
	rg.GET("", api.filter)
	rg.GET("/:id", api.retrieve)

	// staff review surface
	rg.GET("/pending", api.queryPending, staffMiddleware())
	rg.POST("/:id/approve", api.approve, staffMiddleware())
	rg.POST("/:id/reject", api.reject, staffMiddleware())
}

func (api *completionApi) submit(ctx echo.Context) error {
	var data completion.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	req, err := api.svc.Submit(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *completionApi) filter(ctx echo.Context) error {
	var filter completion.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	reqs, err := api.svc.Filter(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "filtering completion requests")
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *completionApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	req, err := api.svc.GetByID(ctx.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *completionApi) queryPending(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	reqs, err := api.svc.QueryPending(ctx.Request().Context(), actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reqs)
}

// DecisionRequest carries the optional reviewer note on approve/reject.
type DecisionRequest struct {
	Note string `json:"note"`
}

func (api *completionApi) approve(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Approve)
}

func (api *completionApi) reject(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Reject)
}

func (api *completionApi) decide(
	ctx echo.Context,
	do func(c context.Context, actor access.Actor, id int, note string) (completion.Request, error),
) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data DecisionRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DecisionRequest")
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	req, err := do(ctx.Request().Context(), actor, id, data.Note)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}
