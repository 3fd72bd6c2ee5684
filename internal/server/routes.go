package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"
	"github.com/berfenger/lowcarbon-sensors/internal/metrics"

	"github.com/carlmjohnson/versioninfo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

var errUnexpectedResponse = errors.New("unexpected actor response")

type sensorsPage struct {
	Fields []string
	View   domain.SensorView
}

type toggleBody struct {
	Value string `json:"value"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Renderer = newTemplateRenderer()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/version", s.VersionHandler)
	e.GET("/metrics", metrics.Handler())

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/sensors")
	})

	// HTML page, every post redirects back to the list
	e.GET("/sensors", s.SensorsPageHandler)
	e.POST("/sensors", s.pageAction(func(c echo.Context) any {
		return domain.AddSensorRequest{Values: formParams(c)}
	}))
	e.POST("/sensors/refresh", s.pageAction(func(c echo.Context) any {
		return domain.LoadAllRequest{}
	}))
	e.POST("/sensors/update", s.pageAction(func(c echo.Context) any {
		return domain.UpdateSensorRequest{Values: formParams(c)}
	}))
	e.POST("/sensors/reset", s.pageAction(func(c echo.Context) any {
		return domain.ResetFormRequest{}
	}))
	e.POST("/sensors/:id/edit", s.pageAction(func(c echo.Context) any {
		return domain.LoadFormRequest{Id: c.Param("id")}
	}))
	e.POST("/sensors/:id/delete", s.DeletePageHandler)

	api := e.Group("/api/sensors")
	api.GET("", s.apiAction(func(c echo.Context) (any, error) {
		return domain.GetSensorViewRequest{}, nil
	}))
	api.POST("/load", s.apiAction(func(c echo.Context) (any, error) {
		return domain.LoadAllRequest{}, nil
	}))
	api.POST("", s.apiAction(func(c echo.Context) (any, error) {
		values, err := jsonValues(c)
		return domain.AddSensorRequest{Values: values}, err
	}))
	api.PUT("", s.apiAction(func(c echo.Context) (any, error) {
		values, err := jsonValues(c)
		return domain.UpdateSensorRequest{Values: values}, err
	}))
	api.PUT("/current/:id", s.apiAction(func(c echo.Context) (any, error) {
		return domain.SetCurrentIdRequest{Id: c.Param("id")}, nil
	}))
	api.DELETE("/current", s.apiAction(func(c echo.Context) (any, error) {
		return domain.DeleteSensorRequest{}, nil
	}))
	api.GET("/:id/form", s.apiAction(func(c echo.Context) (any, error) {
		return domain.LoadFormRequest{Id: c.Param("id")}, nil
	}))
	api.PATCH("/form", s.apiAction(func(c echo.Context) (any, error) {
		values, err := jsonValues(c)
		return domain.PatchFormRequest{Values: values}, err
	}))
	api.DELETE("/form", s.apiAction(func(c echo.Context) (any, error) {
		return domain.ResetFormRequest{}, nil
	}))
	api.POST("/form/:name/toggle", s.apiAction(func(c echo.Context) (any, error) {
		var body toggleBody
		if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
			return nil, err
		}
		return domain.ToggleArrayValueRequest{Name: c.Param("name"), Value: body.Value}, nil
	}))
	api.GET("/form/:name/has", s.HasArrayValueHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, s.requestTimeout).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"version":  versioninfo.Short(),
		"revision": versioninfo.Revision,
	})
}

func (s *Server) SensorsPageHandler(c echo.Context) error {
	view, err := s.ask(domain.GetSensorViewRequest{})
	if err != nil {
		s.logger.Error("server: sensors page", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.Render(http.StatusOK, "sensors.html", sensorsPage{
		Fields: domain.SensorFields,
		View:   view,
	})
}

// DeletePageHandler selects and deletes the asset in a single command.
func (s *Server) DeletePageHandler(c echo.Context) error {
	if _, err := s.ask(domain.DeleteSensorRequest{Id: c.Param("id")}); err != nil {
		s.logger.Warn("server: delete", zap.Error(err))
	}
	return c.Redirect(http.StatusSeeOther, "/sensors")
}

func (s *Server) HasArrayValueHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.HasArrayValueRequest{
		Name:  c.Param("name"),
		Value: c.QueryParam("value"),
	}, s.requestTimeout).Result()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	resp, ok := res.(domain.HasArrayValueResponse)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, errUnexpectedResponse.Error())
	}
	if resp.HasResponseError() {
		return echo.NewHTTPError(http.StatusBadRequest, resp.GetResponseError().Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"present": resp.Present})
}

// pageAction sends the command and redirects to the list (post/redirect/get).
func (s *Server) pageAction(build func(c echo.Context) any) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := s.ask(build(c)); err != nil {
			s.logger.Warn("server: page action", zap.Error(err))
		}
		return c.Redirect(http.StatusSeeOther, "/sensors")
	}
}

// apiAction sends the command and answers with the resulting view.
func (s *Server) apiAction(build func(c echo.Context) (any, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := build(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		res, err := s.rootContext.RequestFuture(s.masterActor, req, s.requestTimeout).Result()
		if err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		resp, ok := res.(domain.SensorViewResponse)
		if !ok {
			return echo.NewHTTPError(http.StatusInternalServerError, errUnexpectedResponse.Error())
		}
		if resp.HasResponseError() {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error": resp.GetResponseError().Error(),
				"view":  resp.View,
			})
		}
		return c.JSON(http.StatusOK, resp.View)
	}
}

func (s *Server) ask(req any) (domain.SensorView, error) {
	res, err := s.rootContext.RequestFuture(s.masterActor, req, s.requestTimeout).Result()
	if err != nil {
		return domain.SensorView{}, err
	}
	resp, ok := res.(domain.SensorViewResponse)
	if !ok {
		return domain.SensorView{}, fmt.Errorf("%w: %T", errUnexpectedResponse, res)
	}
	return resp.View, resp.GetResponseError()
}

// formParams keeps the known Sensor fields of a url-encoded form. Repeated
// fields, and fields flagged by the list marker, become lists.
func formParams(c echo.Context) map[string]any {
	params, err := c.FormParams()
	if err != nil {
		return nil
	}
	lists := map[string]bool{}
	for _, name := range params[listMarker] {
		lists[name] = true
	}
	values := make(map[string]any)
	for _, name := range domain.SensorFields {
		v, ok := params[name]
		switch {
		case lists[name]:
			values[name] = append([]string{}, v...)
		case !ok:
			continue
		case len(v) == 0:
			values[name] = nil
		case len(v) == 1:
			values[name] = v[0]
		default:
			values[name] = v
		}
	}
	return values
}

// jsonValues decodes a JSON object of field values. Arrays become lists of
// strings, other scalars their text form.
func jsonValues(c echo.Context) (map[string]any, error) {
	raw := make(map[string]any)
	if err := (&echo.DefaultBinder{}).BindBody(c, &raw); err != nil {
		return nil, err
	}
	values := make(map[string]any, len(raw))
	for name, value := range raw {
		values[name] = normalizeValue(value)
	}
	return values, nil
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return v
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			list = append(list, fmt.Sprint(item))
		}
		return list
	default:
		return fmt.Sprint(v)
	}
}
