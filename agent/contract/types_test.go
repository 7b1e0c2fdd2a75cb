package contract

import "testing"

func TestTriggerReasonRecognized(t *testing.T) {
	t.Parallel()

	if !TriggerLowStock.Recognized() || !TriggerPriceDisadvantage.Recognized() {
		t.Fatal("rule triggers must be recognized")
	}
	if TriggerGeneralCheck.Recognized() {
		t.Fatal("the general check must not unlock a rule branch")
	}
	if TriggerReason("Anything Else").Recognized() {
		t.Fatal("unknown triggers must not unlock a rule branch")
	}
}
