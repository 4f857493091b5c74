package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/cafeorder/internal/order"
	"github.com/talkincode/cafeorder/internal/webserver"
)

type orderDetailPayload struct {
	OrderID   *int64 `json:"order_id"`
	ProductID *int64 `json:"product_id"`
	Qty       *int   `json:"qty"`
	Message   string `json:"message"`
}

func registerOrderDetailRoutes() {
	webserver.ApiGET("/order-details", listOrderDetails)
	webserver.ApiGET("/order-details/:id", getOrderDetail)
	webserver.ApiPOST("/order-details", createOrderDetail)
}

func listOrderDetails(c echo.Context) error {
	details, err := webserver.GetOrderService(c).ListDetails(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, details, "Order details retrieved successfully")
}

func getOrderDetail(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid order detail ID")
	}
	detail, err := webserver.GetOrderService(c).GetDetail(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, detail, "Order detail retrieved successfully")
}

// createOrderDetail appends a single line to an existing order through the
// same reservation pipeline used for full orders.
func createOrderDetail(c echo.Context) error {
	var payload orderDetailPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse order detail")
	}
	if payload.OrderID == nil {
		return fail(c, http.StatusBadRequest, "Order ID is required")
	}

	line := order.LineRequest{
		ProductID: payload.ProductID,
		Qty:       payload.Qty,
		Message:   payload.Message,
	}
	detail, err := webserver.GetOrderService(c).AppendDetail(c.Request().Context(), *payload.OrderID, line)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, detail, "Order detail created successfully")
}
