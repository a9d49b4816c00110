package tools

const (
	toolOrderStatus = "get_order_status"
	argOrderID      = "order_id"
)

// OrderStatus is the canned status record for an order.
type OrderStatus struct {
	Status  string  `json:"status"`
	Carrier *string `json:"carrier"`
	ETA     *string `json:"eta"`
}

func strPtr(s string) *string { return &s }

var mockOrders = map[string]OrderStatus{
	"A1001": {Status: "Shipped", Carrier: strPtr("DHL"), ETA: strPtr("2-3 days")},
	"A1002": {Status: "Processing", Carrier: nil, ETA: strPtr("3-5 days")},
	"A1003": {Status: "Delivered", Carrier: strPtr("FedEx"), ETA: strPtr("Delivered yesterday")},
}

// LookupOrder returns the status for orderID, or a "Not found" record. It never fails.
func LookupOrder(orderID string) OrderStatus {
	if status, ok := mockOrders[orderID]; ok {
		return status
	}
	return OrderStatus{Status: "Not found"}
}

type orderStatusTool struct{}

func (orderStatusTool) Name() string {
	return toolOrderStatus
}

func (orderStatusTool) RequiredArgs() []string {
	return []string{argOrderID}
}

func (orderStatusTool) Instruction() string {
	return `{"tool":"get_order_status","order_id":"A1001"}`
}

func (orderStatusTool) Execute(call Call) (any, error) {
	return LookupOrder(call.OrderID()), nil
}
