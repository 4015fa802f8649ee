package transfer

import (
	"context"

	"github.com/offgrid-pay/offgridpay/internal/ledger"
)

// Store executes transfers against the durable store. Execute must commit the
// transfer record, the sender debit and the recipient credit as one atomic
// unit: on any failure nothing persists.
type Store interface {
	Execute(ctx context.Context, t Transfer) (Transfer, ledger.Entry, ledger.Entry, error)
}
