package conversation

// Intent is the classified purpose of an inbound message, drawn from a
// closed set. Free text is normalised into one of these by the Resolver.
type Intent string

const (
	IntentPlaceOrder      Intent = "place_order"
	IntentContactStaff    Intent = "contact_staff"
	IntentEndStaffContact Intent = "end_staff_contact"
	IntentPhoneNumber     Intent = "phone_number"
	IntentAddOrderDetail  Intent = "add_order_detail"
	IntentFinishOrder     Intent = "finish_order"
	IntentConfirmOrder    Intent = "confirm_order"
	IntentCancelOrder     Intent = "cancel_order"
	IntentUnknown         Intent = "unknown"
)

// IsValid checks if the intent is one of the enumerated values.
func (i Intent) IsValid() bool {
	switch i {
	case IntentPlaceOrder, IntentContactStaff, IntentEndStaffContact,
		IntentPhoneNumber, IntentAddOrderDetail, IntentFinishOrder,
		IntentConfirmOrder, IntentCancelOrder, IntentUnknown:
		return true
	}
	return false
}

// String returns the string representation of the intent.
func (i Intent) String() string {
	return string(i)
}

// ParseIntent maps an external classifier label onto the closed intent set.
// Anything outside the set comes back as IntentUnknown with ok=false so the
// caller can decide whether to trust the classification.
func ParseIntent(label string) (Intent, bool) {
	it := Intent(label)
	if it.IsValid() {
		return it, true
	}
	return IntentUnknown, false
}
