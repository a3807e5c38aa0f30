package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prodigyview/helium/internal/app"
	"github.com/prodigyview/helium/internal/orm/condition"
	"github.com/prodigyview/helium/internal/orm/model"
	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/validation"
	"github.com/prodigyview/helium/internal/registry"
	"github.com/prodigyview/helium/internal/web/controller"
	"github.com/prodigyview/helium/internal/web/response"
	"github.com/prodigyview/helium/internal/web/router"
)

func init() {
	app.Extend(demo{})
}

// demo registers the Post model and the index, error and posts controllers
type demo struct{}

func (demo) Name() string { return "demo" }

func (demo) Register(a *app.App) error {
	if err := a.RegisterModel(postDefinition()); err != nil {
		return err
	}
	controllers := map[string]controller.Factory{
		router.DefaultName:     newIndexController,
		router.ErrorController: newErrorController,
		"posts": func(reg *registry.Registry) controller.Controller {
			return newPostsController(a, reg)
		},
	}
	for name, factory := range controllers {
		if err := a.RegisterController(name, factory); err != nil {
			return err
		}
	}
	return nil
}

func postDefinition() *model.Definition {
	cfg := model.DefaultConfig()
	cfg.DisplayErrors = false
	return &model.Definition{
		Name: "Post",
		Schema: schema.New(
			schema.Field{Name: "id", Type: schema.TypeInteger, PrimaryKey: true, AutoIncrement: true},
			schema.Field{Name: "title", Type: schema.TypeString, Length: 200},
			schema.Field{Name: "body", Type: schema.TypeText, Default: ""},
			schema.Field{Name: "published", Type: schema.TypeBoolean, Default: false, Cast: schema.CastBoolean},
		),
		Validators: validation.Set{
			"title": {
				{Key: "notempty", Error: "A title is required"},
				{Key: "max_length", Options: map[string]any{"length": 200}, Error: "The title is too long"},
			},
		},
		Config: &cfg,
	}
}

func newIndexController(reg *registry.Registry) controller.Controller {
	c := controller.NewBase(reg)
	c.RenderView(controller.View{Extension: "md"})
	c.Handle("index", func(context.Context) (controller.Result, error) {
		return controller.Vars{"title": "Helium"}, nil
	})
	return c
}

func newErrorController(reg *registry.Registry) controller.Controller {
	c := controller.NewBase(reg)
	c.Handle("index", c.Error404)
	return c
}

type postsController struct {
	*controller.Base
	app *app.App
}

func newPostsController(a *app.App, reg *registry.Registry) controller.Controller {
	c := &postsController{Base: controller.NewBase(reg), app: a}
	c.Handle("index", c.index)
	c.Handle("view", c.view)
	c.Handle("create", c.create)
	return c
}

func (c *postsController) model() (*model.Model, error) {
	return c.app.NewModel("Post", model.WithRegistry(c.Registry()))
}

func (c *postsController) index(ctx context.Context) (controller.Result, error) {
	m, err := c.model()
	if err != nil {
		return nil, err
	}
	page, _ := strconv.Atoi(fmt.Sprint(c.Registry().Query()["page"]))
	results, err := m.Find(ctx, condition.Spec{
		OrderBy:        "id DESC",
		Paginate:       true,
		ResultsPerPage: 10,
		CurrentPage:    page,
	}, model.FindOptions{})
	if err != nil {
		return nil, err
	}
	return controller.Vars{"posts": results.Rows, "pagination": results.Pagination}, nil
}

func (c *postsController) view(ctx context.Context) (controller.Result, error) {
	m, err := c.model()
	if err != nil {
		return nil, err
	}
	found, err := m.First(ctx, condition.Spec{Conditions: map[string]any{"id": c.Registry().Route()["id"]}}, model.ReadOptions{})
	if err != nil {
		return nil, err
	}
	if !found {
		return c.Error404(ctx)
	}
	return controller.Vars{"post": m.Collection().Map()}, nil
}

func (c *postsController) create(ctx context.Context) (controller.Result, error) {
	if req := c.Registry().Request(); req == nil || req.Method != http.MethodPost {
		return controller.Vars{"post": map[string]any{}}, nil
	}

	m, err := c.model()
	if err != nil {
		return nil, err
	}
	form := c.Registry().Post()
	ok, err := m.Create(ctx, map[string]any{
		"title":     form["title"],
		"body":      form["body"],
		"published": form["published"] == "on",
	}, model.CreateOptions{})
	if err != nil {
		return nil, err
	}
	if !ok {
		if response.WantsJSON(c.Registry().Request()) {
			return nil, &response.ValidationError{Errors: m.ValidationErrors()}
		}
		return controller.Vars{"post": form, "errors": m.ValidationErrors()}, nil
	}
	return c.Redirect(fmt.Sprintf("/posts/view/%v", m.Get("id"))), nil
}
