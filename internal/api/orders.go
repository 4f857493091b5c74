package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/cafeorder/internal/order"
	"github.com/talkincode/cafeorder/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPOST("/orders", createOrder)
	webserver.ApiPUT("/orders/:id", updateOrder)
	webserver.ApiDELETE("/orders/:id", deleteOrder)
}

func listOrders(c echo.Context) error {
	orders, err := webserver.GetOrderService(c).List(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, orders, "Orders retrieved successfully")
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid order ID")
	}
	ord, err := webserver.GetOrderService(c).Get(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, ord, "Order retrieved successfully")
}

func createOrder(c echo.Context) error {
	var req order.CreateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse order")
	}
	ord, err := webserver.GetOrderService(c).Create(c.Request().Context(), req)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, ord, "Order created successfully")
}

func updateOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid order ID")
	}
	var req order.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse order")
	}
	ord, err := webserver.GetOrderService(c).Update(c.Request().Context(), id, req)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, ord, "Order updated successfully")
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid order ID")
	}
	if err := webserver.GetOrderService(c).Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, nil, "Order deleted successfully")
}
