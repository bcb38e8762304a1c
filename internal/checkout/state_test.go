package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateDone, StateRejectedStock, StateRejectedPayment, StateRejectedDebitWithRefund} {
		require.True(t, s.Terminal(), s)
	}
	for _, s := range []State{StateStart, StateStockChecked, StatePriced, StateAuthorized, StateStockDebited} {
		require.False(t, s.Terminal(), s)
	}
}
