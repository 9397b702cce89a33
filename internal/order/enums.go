package order

// Order statuses as stored in orders.status.
const (
	StatusDraft              = "draft"
	StatusUnconfirmed        = "unconfirmed"
	StatusUnfulfilled        = "unfulfilled"
	StatusPartiallyFulfilled = "partially_fulfilled"
	StatusFulfilled          = "fulfilled"
	StatusCanceled           = "canceled"
)

// StatusFilter is a value of the OrderStatusFilter enum. Besides plain
// statuses it has two computed categories.
type StatusFilter string

const (
	ReadyToFulfill     StatusFilter = "ready_to_fulfill"
	ReadyToCapture     StatusFilter = "ready_to_capture"
	Unfulfilled        StatusFilter = StatusUnfulfilled
	Unconfirmed        StatusFilter = StatusUnconfirmed
	PartiallyFulfilled StatusFilter = StatusPartiallyFulfilled
	Fulfilled          StatusFilter = StatusFulfilled
	Canceled           StatusFilter = StatusCanceled
)

func (s StatusFilter) computed() bool {
	return s == ReadyToFulfill || s == ReadyToCapture
}

// ChargeStatus is a payment's charge state, stored in payments.charge_status.
type ChargeStatus string

const (
	ChargeNotCharged        ChargeStatus = "not-charged"
	ChargePending           ChargeStatus = "pending"
	ChargePartiallyCharged  ChargeStatus = "partially-charged"
	ChargeFullyCharged      ChargeStatus = "fully-charged"
	ChargePartiallyRefunded ChargeStatus = "partially-refunded"
	ChargeFullyRefunded     ChargeStatus = "fully-refunded"
	ChargeRefused           ChargeStatus = "refused"
	ChargeCancelled         ChargeStatus = "cancelled"
)
