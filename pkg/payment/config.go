package payment

import (
	"github.com/matzehuels/storekit/pkg/config"
)

// LoadConfig reads the free method settings for one store scope. Missing
// settings leave the method disabled. An unparsable sort order is an
// INVALID_CONFIG error.
func LoadConfig(src config.Scoped) (Config, error) {
	sortOrder, err := src.Int(PathSortOrder, 0)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Active:    src.Flag(PathActive),
		SortOrder: sortOrder,
	}
	cfg.OrderStatus, _ = src.Value(PathOrderStatus)
	cfg.PaymentAction, _ = src.Value(PathPaymentAction)
	cfg.Title, _ = src.Value(PathTitle)
	return cfg, nil
}
