package ports_test

import (
	"testing"

	"github.com/Digitalmustiii/novaauthentication/internal/mocks"
	authmocks "github.com/Digitalmustiii/novaauthentication/internal/mocks/auth"
	"github.com/Digitalmustiii/novaauthentication/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.UserStore = (*mocks.MockUserStore)(nil)
	var _ ports.UserCache = (*mocks.MockUserCache)(nil)
	var _ ports.PasswordHasher = (*mocks.MockPasswordHasher)(nil)
	var _ ports.TokenCodec = (*mocks.MockTokenCodec)(nil)
	var _ ports.PasswordHasher = (*authmocks.FakeHasher)(nil)
	var _ ports.UserCache = (*authmocks.MemoryUserCache)(nil)
}
