package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storetrack/storetrack/internal/auth"
	"github.com/storetrack/storetrack/internal/handlers"
)

type Deps struct {
	Tokens          *auth.TokenService
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	CartHandler     *handlers.CartHandler
	CheckoutHandler *handlers.CheckoutHandler
	OrderHandler    *handlers.OrderHandler
	AdminHandler    *handlers.AdminHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = errorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/logout", d.AuthHandler.Logout)

	api.GET("/products", d.ProductHandler.ListAvailable)
	api.GET("/products/:id", d.ProductHandler.Get)
	if d.SearchHandler != nil {
		api.GET("/search", d.SearchHandler.Search)
	}

	user := api.Group("", d.Tokens.RequireLogin)
	user.GET("/cart/:userID", d.CartHandler.GetCart)
	user.POST("/cart/add", d.CartHandler.AddItem)
	user.PUT("/cart/update", d.CartHandler.UpdateItem)
	user.POST("/checkout", d.CheckoutHandler.PlaceOrder)
	user.GET("/orders/:userID", d.OrderHandler.ListForUser)
	user.GET("/user/dashboard/:userID", d.OrderHandler.Dashboard)

	admin := api.Group("/admin", d.Tokens.AdminOnly)
	admin.GET("/products", d.ProductHandler.ListAll)
	admin.POST("/products", d.ProductHandler.Create)
	admin.PUT("/products/:id", d.ProductHandler.Update)
	admin.DELETE("/products/:id", d.ProductHandler.Delete)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.PUT("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.GET("/users", d.AdminHandler.ListUsers)
	admin.GET("/stats", d.AdminHandler.Stats)
}

// errorHandler renders every error as {"error": "..."} the way the browser
// clients expect.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}
