package payment

import (
	"github.com/matzehuels/storekit/pkg/sales"
)

// Code is the method code of the free payment method.
const Code = "free"

// Configuration paths read by [LoadConfig].
const (
	PathActive        = "payment/free/active"
	PathOrderStatus   = "payment/free/order_status"
	PathPaymentAction = "payment/free/payment_action"
	PathTitle         = "payment/free/title"
	PathSortOrder     = "payment/free/sort_order"
)

// Payment actions.
const (
	ActionAuthorize        = "authorize"
	ActionAuthorizeCapture = "authorize_capture"
)

// DefaultTitle is shown at checkout when no title is configured.
const DefaultTitle = "No Payment Information Required"

// Capabilities are the gateway features the method declares.
type Capabilities struct {
	CanAuthorize   bool
	CanCapture     bool
	CanRefund      bool
	CanUseCheckout bool
	CanUseInternal bool
}

// FreeCapabilities are the capabilities of the free method: it authorizes
// (a no-op) and is usable from checkout and the admin order form.
var FreeCapabilities = Capabilities{
	CanAuthorize:   true,
	CanUseCheckout: true,
	CanUseInternal: true,
}

// Config is the resolved payment/free/* configuration for one store.
// The zero value is a disabled method.
type Config struct {
	Active        bool
	OrderStatus   string
	PaymentAction string
	Title         string
	SortOrder     int
}

// IsAvailableInConfig reports whether the method is enabled, ignoring
// cart state. Admin previews use it where no cart exists.
func IsAvailableInConfig(cfg Config) bool {
	return cfg.Active
}

// IsAvailable reports whether the method can be offered for cart: it must
// be enabled, the cart must exist, and the grand total must round to
// exactly zero in the cart currency.
func IsAvailable(cart *Cart, cfg Config) bool {
	if !IsAvailableInConfig(cfg) || cart == nil {
		return false
	}
	return cart.RoundedTotal().IsZero()
}

// ResolvePaymentAction returns the payment action to run for a new free
// order. When the configured new-order status is assigned to the "new"
// state and is not "processing", the action is suppressed so that no
// invoice or capture is triggered; ok is false in that case.
func ResolvePaymentAction(cfg Config, catalog sales.StatusCatalog) (action string, ok bool) {
	if catalog.Has(sales.StateNew, cfg.OrderStatus) && cfg.OrderStatus != sales.StatusProcessing {
		return "", false
	}
	return cfg.PaymentAction, true
}

// Method binds a store's configuration to the free method's descriptor.
type Method struct {
	Config       Config
	Capabilities Capabilities
	Catalog      sales.StatusCatalog
}

// NewMethod returns the free method for cfg using catalog for status lookups.
// A nil catalog uses [sales.DefaultCatalog].
func NewMethod(cfg Config, catalog sales.StatusCatalog) *Method {
	if catalog == nil {
		catalog = sales.DefaultCatalog()
	}
	return &Method{Config: cfg, Capabilities: FreeCapabilities, Catalog: catalog}
}

// Code returns the method code.
func (m *Method) Code() string { return Code }

// Title returns the checkout title.
func (m *Method) Title() string {
	if m.Config.Title == "" {
		return DefaultTitle
	}
	return m.Config.Title
}

// IsAvailable is [IsAvailable] for the bound configuration.
func (m *Method) IsAvailable(cart *Cart) bool { return IsAvailable(cart, m.Config) }

// IsAvailableInConfig is [IsAvailableInConfig] for the bound configuration.
func (m *Method) IsAvailableInConfig() bool { return IsAvailableInConfig(m.Config) }

// PaymentAction is [ResolvePaymentAction] for the bound configuration.
func (m *Method) PaymentAction() (string, bool) {
	return ResolvePaymentAction(m.Config, m.Catalog)
}
