// File: kernel/key_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xskframe/xskframe/api"
)

func TestCompositeKeyIsUniquePerWorkerIface(t *testing.T) {
	seen := make(map[uint32]struct{})
	for w := 0; w < 8; w++ {
		for i := 0; i < api.MaxInterfaces; i++ {
			k := CompositeKey(w, i)
			_, dup := seen[k]
			require.Falsef(t, dup, "CompositeKey(%d,%d)=%d collides with a previous key", w, i, k)
			seen[k] = struct{}{}
		}
	}
}

func TestCompositeKeyMatchesFormula(t *testing.T) {
	require.Equal(t, uint32(2*api.MaxInterfaces+3), CompositeKey(2, 3))
}
