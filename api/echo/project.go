package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hudumahq/huduma/core/project"
)

type projectApi struct {
	svc *project.Service
}

func registerProjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *project.Service) {
	api := projectApi{svc: svc}

	pg := g.Group("/projects", jwt)

	// staff + company
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.GET("/:id/tree", api.tree)
	pg.GET("/:id/companies/:companyID/tree", api.companyTree)

	// staff only
	pg.POST("", api.create, staffMiddleware())
	pg.PUT("/:id", api.update, staffMiddleware())
	pg.POST("/:id/sub-projects", api.createSubProject, staffMiddleware())
	pg.POST("/:id/tasks", api.createTask, staffMiddleware())

	sg := g.Group("/sub-projects", jwt, staffMiddleware())
	sg.PUT("/:id", api.updateSubProject)

	tg := g.Group("/tasks", jwt, staffMiddleware())
	tg.PUT("/:id", api.updateTask)

	g.GET("/leaderboard", api.leaderboard, jwt, staffMiddleware())
}

func (api *projectApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	projects, err := api.svc.QueryVisible(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	prj, err := api.svc.GetProject(ctx.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) tree(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	tree, err := api.svc.GetTree(ctx.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

// companyTree returns the tree as one company sees it, progress included.
// A company actor may only request its own perspective.
func (api *projectApi) companyTree(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	companyID, err := idParam(ctx, "companyID")
	if err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	tree, err := api.svc.GetCompanyTree(ctx.Request().Context(), actor, id, companyID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *projectApi) create(ctx echo.Context) error {
	var data project.NewProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	prj, err := api.svc.CreateProject(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating project")
	}
	return ctx.JSON(http.StatusCreated, prj)
}

func (api *projectApi) update(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	orig, err := api.svc.GetProject(ctx.Request().Context(), actor, id)
	if err != nil {
		return err
	}

	var data project.UpdateProject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProject")
	}
	if err = data.Validate(orig); err != nil {
		return err
	}

	prj, err := api.svc.UpdateProject(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return errors.Wrap(err, "updating project")
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) createSubProject(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data project.NewSubProject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubProject")
	}
	data.ProjectID = id
	if err = data.Validate(); err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.CreateSubProject(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *projectApi) createTask(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data project.NewTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	data.ProjectID = id
	if err = data.Validate(); err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	tsk, err := api.svc.CreateTask(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tsk)
}

func (api *projectApi) updateSubProject(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	orig, err := api.svc.GetSubProject(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	var data project.UpdateSubProject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubProject")
	}
	if err = data.Validate(orig); err != nil {
		return err
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.UpdateSubProject(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return errors.Wrap(err, "updating sub-project")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *projectApi) updateTask(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	orig, err := api.svc.GetTask(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	var data project.UpdateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err = data.Validate(orig); err != nil {
		return err
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	tsk, err := api.svc.UpdateTask(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *projectApi) leaderboard(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	entries, err := api.svc.Leaderboard(ctx.Request().Context(), actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entries)
}
