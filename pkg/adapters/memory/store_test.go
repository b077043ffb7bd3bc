package memory_test

import (
	"testing"

	"github.com/aretw0/acheron/pkg/adapters/memory"
	"github.com/aretw0/acheron/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunKVStoreContract(t, store)
}
